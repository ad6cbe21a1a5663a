// Package notify delivers composed messages. The SMTP sender is the only
// production transport; the scheduler consumes it through a one-method
// interface so tests can substitute a fake.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// ErrSend wraps every transport failure. A failed send leaves the request
// untouched and is retried on the next scheduler run.
var ErrSend = errors.New("send failed")

// SMTPConfig holds the mail account settings
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	SenderMail string
	SenderName string
}

// SMTPSender sends mail through an authenticated STARTTLS session
type SMTPSender struct {
	client *mail.Client
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewSMTPSender builds the sender; it does not dial until the first send
func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) (*SMTPSender, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure smtp client: %w", err)
	}
	return &SMTPSender{client: client, cfg: cfg, logger: logger}, nil
}

// Send delivers one message to the recipient
func (s *SMTPSender) Send(ctx context.Context, recipient, subject, body string) error {
	msg := mail.NewMsg()
	if s.cfg.SenderName != "" {
		if err := msg.FromFormat(s.cfg.SenderName, s.cfg.SenderMail); err != nil {
			return fmt.Errorf("%w: invalid sender %q: %v", ErrSend, s.cfg.SenderMail, err)
		}
	} else if err := msg.From(s.cfg.SenderMail); err != nil {
		return fmt.Errorf("%w: invalid sender %q: %v", ErrSend, s.cfg.SenderMail, err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("%w: invalid recipient %q: %v", ErrSend, recipient, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	s.logger.Info("sending mail", "to", recipient, "subject", subject)
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	return nil
}

// Verify dials and authenticates without sending anything; used by the
// doctor command
func (s *SMTPSender) Verify(ctx context.Context) error {
	if err := s.client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp connection failed: %w", err)
	}
	return s.client.Close()
}
