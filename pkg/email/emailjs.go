package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"inquiry-backend/config"
	"inquiry-backend/internal/domain"
)

// DefaultEmailJSEndpoint is the EmailJS REST send endpoint
const DefaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJSClient dispatches inquiries through an EmailJS template
type EmailJSClient struct {
	endpoint   string
	serviceID  string
	templateID string
	publicKey  string
	privateKey string
	httpClient *http.Client
}

type emailJSRequest struct {
	ServiceID      string                `json:"service_id"`
	TemplateID     string                `json:"template_id"`
	UserID         string                `json:"user_id"`
	AccessToken    string                `json:"accessToken,omitempty"`
	TemplateParams domain.TemplateParams `json:"template_params"`
}

// NewEmailJSClient creates a client from the EMAILJS_* settings
func NewEmailJSClient(cfg *config.Config, httpClient *http.Client) *EmailJSClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.DispatchTimeout}
	}
	endpoint := cfg.EmailJSEndpoint
	if endpoint == "" {
		endpoint = DefaultEmailJSEndpoint
	}
	return &EmailJSClient{
		endpoint:   endpoint,
		serviceID:  cfg.EmailJSServiceID,
		templateID: cfg.EmailJSTemplateID,
		publicKey:  strings.TrimSpace(cfg.EmailJSPublicKey),
		privateKey: cfg.EmailJSPrivateKey,
		httpClient: httpClient,
	}
}

// IsConfigured checks that service, template and public key are all set
func (c *EmailJSClient) IsConfigured() bool {
	return c.serviceID != "" && c.templateID != "" && c.publicKey != ""
}

// Dispatch sends one email. It is never retried here; a failure is reported to the caller.
func (c *EmailJSClient) Dispatch(ctx context.Context, params domain.TemplateParams) error {
	if !c.IsConfigured() {
		return &domain.DispatchError{Reason: "EmailJS public key, service or template is not configured", Err: domain.ErrDispatchUnconfigured}
	}

	body, err := json.Marshal(emailJSRequest{
		ServiceID:      c.serviceID,
		TemplateID:     c.templateID,
		UserID:         c.publicKey,
		AccessToken:    c.privateKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.DispatchError{Reason: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := strings.TrimSpace(string(text))
		if reason == "" {
			reason = resp.Status
		}
		return &domain.DispatchError{Reason: reason, Err: fmt.Errorf("emailjs returned %d after %s", resp.StatusCode, time.Since(start).Round(time.Millisecond))}
	}

	return nil
}
