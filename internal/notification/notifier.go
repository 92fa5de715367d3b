package notification

import (
	"context"
	"errors"

	"github.com/kazz187/wetracker/internal/profile"
)

// Content is a rendered notification.
type Content struct {
	Subject string
	HTML    string
	Text    string
}

// Message is one rendered notification addressed to one recipient.
type Message struct {
	DispatchID string
	Kind       EventKind
	TaskID     string
	TaskURL    string
	Recipient  *profile.Profile
	Content    *Content
}

type Notifier interface {
	Notify(ctx context.Context, m *Message) error
}

// Notifiers delivers a message over every channel it holds. All channels are
// attempted; their errors are joined.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, m *Message) error {
	var errs []error
	for _, n := range ns {
		if err := n.Notify(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type NotifierFunc func(ctx context.Context, m *Message) error

func (f NotifierFunc) Notify(ctx context.Context, m *Message) error {
	return f(ctx, m)
}
