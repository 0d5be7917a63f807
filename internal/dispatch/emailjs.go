// internal/dispatch/emailjs.go
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	commonhttp "smarttender-engine/internal/common/http"
	"smarttender-engine/internal/common/logger"
)

// Sender delivers one resolved notification plan to the transactional
// email provider.
type Sender interface {
	Send(ctx context.Context, plan Plan) error
}

// EmailJSConfig identifies the provider account. The template id
// itself travels inside the Plan.
type EmailJSConfig struct {
	BaseURL   string
	ServiceID string
	APIKey    string
	Timeout   time.Duration
}

// EmailJSSender posts to the EmailJS REST API.
type EmailJSSender struct {
	config EmailJSConfig
	client *commonhttp.Client
	logger logger.Logger
}

// emailJSRequest is the provider's wire shape.
type emailJSRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams templateParams `json:"template_params"`
}

type templateParams struct {
	ToEmail       string `json:"to_email"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
	CandidateName string `json:"candidate_name"`
}

func NewEmailJSSender(config EmailJSConfig, log logger.Logger) *EmailJSSender {
	return &EmailJSSender{
		config: config,
		client: commonhttp.NewClient(config.Timeout),
		logger: log.WithFields(map[string]interface{}{"provider": "emailjs"}),
	}
}

func (s *EmailJSSender) Send(ctx context.Context, plan Plan) error {
	payload := emailJSRequest{
		ServiceID:  s.config.ServiceID,
		TemplateID: plan.TemplateID,
		UserID:     s.config.APIKey,
		TemplateParams: templateParams{
			ToEmail:       plan.Recipient,
			Status:        plan.Status,
			Reason:        plan.Reason,
			CandidateName: plan.CandidateName,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := s.config.BaseURL + "/api/v1.0/email/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs rejected send: status %d: %s", resp.StatusCode, string(detail))
	}

	s.logger.Debug("provider accepted send", map[string]interface{}{
		"templateId": plan.TemplateID,
	})
	return nil
}
