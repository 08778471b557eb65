// Package email sends admin copies of routing notifications over SMTP.
package email

import (
	"context"
	"fmt"

	"leadrouter_backend/platform/config"
	"leadrouter_backend/platform/logger"

	"github.com/wneessen/go-mail"
)

// Sender delivers plain-text mail. A nil sender is a no-op, so callers can
// wire it unconditionally.
type Sender struct {
	cfg config.EmailConfig
	log *logger.Logger
}

// NewSender creates an SMTP sender, or nil when email is disabled.
func NewSender(cfg config.EmailConfig, log *logger.Logger) *Sender {
	if !cfg.GetEmailEnabled() {
		return nil
	}
	return &Sender{cfg: cfg, log: log}
}

// Send delivers one plain-text message.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if s == nil {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(s.cfg.GetEmailFromName(), s.cfg.GetEmailFromAddress()); err != nil {
		return fmt.Errorf("set mail sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set mail recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(s.cfg.GetSMTPHost(),
		mail.WithPort(s.cfg.GetSMTPPort()),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.GetSMTPUsername()),
		mail.WithPassword(s.cfg.GetSMTPPassword()),
	)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	s.log.Info("email sent", "to", to, "subject", subject)
	return nil
}
