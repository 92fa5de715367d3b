package mail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/wetracker/internal/config"
	"github.com/kazz187/wetracker/internal/notification"
)

type sendFunc func(addr string, a sasl.Client, from string, to []string, r io.Reader) error

// Sender delivers notifications as email over SMTP. An unconfigured Sender
// logs what it would have sent and reports success.
type Sender struct {
	env  *config.MailEnv
	send sendFunc
	now  func() time.Time
}

var _ notification.Notifier = (*Sender)(nil)

func NewSender(env *config.MailEnv) *Sender {
	return &Sender{
		env:  env,
		send: smtp.SendMail,
		now:  time.Now,
	}
}

func (s *Sender) Notify(ctx context.Context, m *notification.Message) error {
	if !s.env.Configured() {
		slog.InfoContext(ctx, "email not configured, skipping",
			"to", m.Recipient.Email,
			"subject", m.Content.Subject,
		)
		return nil
	}
	if m.Recipient.Email == "" {
		return fmt.Errorf("profile %s has no email address", m.Recipient.ID)
	}

	from := &mail.Address{Name: s.env.FromName, Address: s.env.SMTPUser}
	to := &mail.Address{Name: m.Recipient.FullName, Address: m.Recipient.Email}
	msg, err := Compose(from, to, m.Content, s.now())
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.env.SMTPHost, s.env.SMTPPort)
	auth := sasl.NewPlainClient("", s.env.SMTPUser, s.env.SMTPPass)

	// The SMTP client has no context support; give up waiting when ctx ends.
	done := make(chan error, 1)
	go func() {
		done <- s.send(addr, auth, from.Address, []string{to.Address}, bytes.NewReader(msg))
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email to %s: %w", to.Address, err)
		}
	case <-ctx.Done():
		return fmt.Errorf("failed to send email to %s: %w", to.Address, ctx.Err())
	}

	slog.DebugContext(ctx, "email sent", "to", to.Address, "dispatch_id", m.DispatchID)
	return nil
}

// Compose builds a multipart/alternative message with a plain text and an
// HTML part.
func Compose(from, to *mail.Address, c *notification.Content, date time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", []*mail.Address{to})
	h.SetSubject(c.Subject)
	h.SetMessageID(ulid.Make().String() + "@wetracker")

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail writer: %w", err)
	}
	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("failed to create inline writer: %w", err)
	}
	if err := writePart(tw, "text/plain", c.Text); err != nil {
		return nil, err
	}
	if err := writePart(tw, "text/html", c.HTML); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close inline writer: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close mail writer: %w", err)
	}
	return buf.Bytes(), nil
}

func writePart(tw *mail.InlineWriter, contentType, body string) error {
	var ph mail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	w, err := tw.CreatePart(ph)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", contentType, err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return fmt.Errorf("failed to write %s part: %w", contentType, err)
	}
	return w.Close()
}
