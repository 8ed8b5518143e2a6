package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/noah-isme/forum-inscriptions-api/pkg/config"
)

// EmailJSSender posts messages to the EmailJS REST endpoint.
type EmailJSSender struct {
	endpoint   string
	serviceID  string
	templateID string
	publicKey  string
	client     *http.Client
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func NewEmailJSSender(cfg config.EmailConfig, client *http.Client) (*EmailJSSender, error) {
	if cfg.EmailJSServiceID == "" || cfg.EmailJSTemplateID == "" || cfg.EmailJSPublicKey == "" {
		return nil, fmt.Errorf("emailjs: %w", ErrNotConfigured)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &EmailJSSender{
		endpoint:   cfg.EmailJSEndpoint,
		serviceID:  cfg.EmailJSServiceID,
		templateID: cfg.EmailJSTemplateID,
		publicKey:  cfg.EmailJSPublicKey,
		client:     client,
	}, nil
}

// Send maps the message onto the template variables subject, email,
// message and any metadata such as dashboard_url.
func (s *EmailJSSender) Send(ctx context.Context, msg Message) error {
	params := map[string]string{
		"subject": msg.Subject,
		"email":   msg.To,
		"message": msg.Body,
	}
	for k, v := range msg.Metadata {
		params[k] = v
	}
	payload, err := json.Marshal(emailJSRequest{
		ServiceID:      s.serviceID,
		TemplateID:     s.templateID,
		UserID:         s.publicKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("encode emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs send: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
