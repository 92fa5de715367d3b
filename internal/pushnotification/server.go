package pushnotification

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/wetracker/internal/config"
	"github.com/kazz187/wetracker/internal/profile"
	"github.com/kazz187/wetracker/internal/pushsubscription"
	"github.com/kazz187/wetracker/pkg/cerr"
)

type Server struct {
	vapidEnv    *config.VAPIDEnv
	repo        pushsubscription.Repository
	profileRepo profile.Repository
}

func NewServer(vapidEnv *config.VAPIDEnv, repo pushsubscription.Repository, profileRepo profile.Repository) *Server {
	return &Server{
		vapidEnv:    vapidEnv,
		repo:        repo,
		profileRepo: profileRepo,
	}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/push/vapid-key", s.handleVapidKey)
	r.Post("/push/subscriptions", s.handleRegister)
	r.Delete("/push/subscriptions", s.handleUnregister)
}

type vapidKeyResponse struct {
	PublicKey string `json:"publicKey"`
}

func (s *Server) handleVapidKey(w http.ResponseWriter, r *http.Request) {
	if s.vapidEnv.VAPIDPublicKey == "" {
		cerr.SetNewJSONError(r.Context(), cerr.FailedPrecondition, "VAPID keys not configured", nil)
		return
	}
	cerr.SetJSONResponse(r.Context(), &vapidKeyResponse{PublicKey: s.vapidEnv.VAPIDPublicKey})
}

type registerRequest struct {
	ProfileID string `json:"profileId"`
	Endpoint  string `json:"endpoint"`
	P256dhKey string `json:"p256dhKey"`
	AuthKey   string `json:"authKey"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	switch {
	case req.ProfileID == "":
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "profileId is required", nil)
		return
	case req.Endpoint == "":
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "endpoint is required", nil)
		return
	case req.P256dhKey == "":
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "p256dhKey is required", nil)
		return
	case req.AuthKey == "":
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "authKey is required", nil)
		return
	}
	if _, err := s.profileRepo.Get(ctx, req.ProfileID); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	// Registering a known endpoint again refreshes its keys and owner.
	existing, err := s.repo.FindByEndpoint(ctx, req.Endpoint)
	if err == nil {
		existing.ProfileID = req.ProfileID
		existing.P256dhKey = req.P256dhKey
		existing.AuthKey = req.AuthKey
		if err := s.repo.Update(ctx, existing); err != nil {
			cerr.SetJSONError(ctx, err)
			return
		}
		cerr.SetJSONResponse(ctx, existing)
		return
	}
	if !cerr.IsCode(err, cerr.NotFound) {
		cerr.SetJSONError(ctx, err)
		return
	}

	sub := &pushsubscription.Subscription{
		ID:        ulid.Make().String(),
		ProfileID: req.ProfileID,
		Endpoint:  req.Endpoint,
		P256dhKey: req.P256dhKey,
		AuthKey:   req.AuthKey,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, sub)
}

type unregisterRequest struct {
	Endpoint string `json:"endpoint"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req unregisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Endpoint == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "endpoint is required", nil)
		return
	}

	sub, err := s.repo.FindByEndpoint(ctx, req.Endpoint)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.repo.Delete(ctx, sub.ID); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, &successResponse{Success: true})
}
