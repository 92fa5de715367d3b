package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/wetracker/internal/eventbus"
	"github.com/kazz187/wetracker/pkg/cerr"
)

type Planner interface {
	Plan(ctx context.Context, ev *Event) (*Plan, error)
}

// Server accepts notification requests. It plans synchronously so the caller
// gets a definite answer, then hands delivery to the Worker through the bus.
type Server struct {
	planner Planner
	bus     *eventbus.Bus[*Plan]
}

func NewServer(planner Planner, bus *eventbus.Bus[*Plan]) *Server {
	return &Server{
		planner: planner,
		bus:     bus,
	}
}

func (s *Server) Routes(r chi.Router) {
	r.Post("/notifications", s.handleNotify)
}

// failedMsg is the only detail a caller sees for anything but a missing task.
const failedMsg = "Failed to send notification"

type notifyResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var ev Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, failedMsg, fmt.Errorf("failed to decode notification request: %w", err))
		return
	}

	plan, err := s.planner.Plan(ctx, &ev)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			cerr.SetJSONError(ctx, err)
			return
		}
		cerr.SetNewJSONError(ctx, cerr.Internal, failedMsg, err)
		return
	}

	if s.bus.Publish(plan) == 0 {
		slog.WarnContext(ctx, "notification queue full, dropping dispatch",
			"dispatch_id", plan.ID,
			"recipients", len(plan.Messages),
		)
	}
	cerr.SetJSONResponse(ctx, &notifyResponse{Success: true})
}
