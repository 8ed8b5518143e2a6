package notifier

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/noah-isme/forum-inscriptions-api/pkg/config"
)

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends plain-text mail through an SMTP relay.
type SMTPSender struct {
	from   string
	dialer mailDialer
}

func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		return nil, fmt.Errorf("smtp: %w", ErrNotConfigured)
	}
	return &SMTPSender{
		from:   cfg.SMTPFrom,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}, nil
}

// Send ignores ctx cancellation once the SMTP exchange has started.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if url := msg.Metadata["dashboard_url"]; url != "" {
		m.SetHeader("X-Dashboard-URL", url)
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}
