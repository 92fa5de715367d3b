package pushnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/kazz187/wetracker/internal/config"
	"github.com/kazz187/wetracker/internal/notification"
	"github.com/kazz187/wetracker/internal/pushsubscription"
)

const ttlSeconds = 86400

type NotificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

type sendFunc func(ctx context.Context, message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)

// Sender pushes notifications to every browser the recipient subscribed.
// Without VAPID keys it does nothing.
type Sender struct {
	vapidEnv *config.VAPIDEnv
	repo     pushsubscription.Repository
	appName  string
	send     sendFunc
}

var _ notification.Notifier = (*Sender)(nil)

func NewSender(vapidEnv *config.VAPIDEnv, repo pushsubscription.Repository, appName string) *Sender {
	return &Sender{
		vapidEnv: vapidEnv,
		repo:     repo,
		appName:  appName,
		send:     webpush.SendNotificationWithContext,
	}
}

func (s *Sender) Notify(ctx context.Context, m *notification.Message) error {
	if !s.vapidEnv.Configured() {
		return nil
	}

	subs, err := s.repo.ListByProfile(ctx, m.Recipient.ID)
	if err != nil {
		return fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	data, err := json.Marshal(&NotificationPayload{
		Title: s.appName,
		Body:  m.Content.Subject,
		URL:   m.TaskURL,
		Tag:   m.TaskID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	var errs []error
	for _, sub := range subs {
		if err := s.sendToSubscription(ctx, sub, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Sender) sendToSubscription(ctx context.Context, sub *pushsubscription.Subscription, data []byte) error {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}

	resp, err := s.send(ctx, data, wpSub, &webpush.Options{
		VAPIDPublicKey:  s.vapidEnv.VAPIDPublicKey,
		VAPIDPrivateKey: s.vapidEnv.VAPIDPrivateKey,
		Subscriber:      s.vapidEnv.VAPIDContact,
		TTL:             ttlSeconds,
	})
	if err != nil {
		return fmt.Errorf("failed to push to %s: %w", sub.Endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		slog.InfoContext(ctx, "push subscription expired, removing", "endpoint", sub.Endpoint)
		if err := s.repo.Delete(ctx, sub.ID); err != nil {
			slog.ErrorContext(ctx, "failed to delete expired push subscription", "id", sub.ID, "error", err)
		}
		return nil
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push to %s rejected with status %d", sub.Endpoint, resp.StatusCode)
	}
	return nil
}
