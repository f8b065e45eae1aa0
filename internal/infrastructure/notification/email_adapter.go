package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// EmailConfig holds the transactional email provider settings
type EmailConfig struct {
	Endpoint       string
	APIKey         string
	From           string
	RequestTimeout time.Duration
}

// Validate checks the configuration
func (c *EmailConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("email endpoint is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("email API key is required")
	}
	if c.From == "" {
		return fmt.Errorf("email sender address is required")
	}
	return nil
}

// EmailAdapter sends transactional emails through an HTTP provider API
type EmailAdapter struct {
	config     *EmailConfig
	httpClient *http.Client
}

// NewEmailAdapter creates a new email adapter
func NewEmailAdapter(config *EmailConfig) (*EmailAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.RequestTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &EmailAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type emailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Send delivers an email to the given address
func (a *EmailAdapter) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("recipient address is required")
	}

	payload, err := json.Marshal(emailMessage{
		From:    a.config.From,
		To:      to,
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		return fmt.Errorf("email API returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
