// Package notifier delivers the registration emails. Delivery is best
// effort: callers get a status, never a failed submission.
package notifier

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/forum-inscriptions-api/pkg/config"
)

// ErrNotConfigured is returned when a provider is selected without its credentials.
var ErrNotConfigured = errors.New("email provider not configured")

// Message is one outgoing email.
type Message struct {
	To       string
	Subject  string
	Body     string
	Metadata map[string]string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SimulatedSender logs messages instead of sending them.
type SimulatedSender struct {
	logger *zap.Logger
}

func NewSimulatedSender(logger *zap.Logger) *SimulatedSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedSender{logger: logger}
}

func (s *SimulatedSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email simulated", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// NewSender picks the provider named in cfg. A provider missing its
// credentials degrades to simulation with a warning.
func NewSender(cfg config.EmailConfig, logger *zap.Logger) Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case config.EmailProviderEmailJS:
		sender, err := NewEmailJSSender(cfg, nil)
		if err == nil {
			return sender
		}
		logger.Warn("emailjs not configured, simulating emails", zap.Error(err))
	case config.EmailProviderSMTP:
		sender, err := NewSMTPSender(cfg)
		if err == nil {
			return sender
		}
		logger.Warn("smtp not configured, simulating emails", zap.Error(err))
	}
	return NewSimulatedSender(logger)
}
