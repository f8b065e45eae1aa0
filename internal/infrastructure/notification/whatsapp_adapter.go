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

// maxResponseSize limits response bodies read from providers
const maxResponseSize = 1 * 1024 * 1024

// WhatsAppConfig holds the WhatsApp Business API settings
type WhatsAppConfig struct {
	BaseURL        string
	Token          string
	RequestTimeout time.Duration
}

// Validate checks the configuration
func (c *WhatsAppConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("whatsapp base URL is required")
	}
	if c.Token == "" {
		return fmt.Errorf("whatsapp token is required")
	}
	return nil
}

// WhatsAppAdapter sends messages through a WhatsApp Business API endpoint
type WhatsAppAdapter struct {
	config     *WhatsAppConfig
	httpClient *http.Client
}

// NewWhatsAppAdapter creates a new WhatsApp adapter
func NewWhatsAppAdapter(config *WhatsAppConfig) (*WhatsAppAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.RequestTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &WhatsAppAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type whatsAppMessage struct {
	To   string           `json:"to"`
	Type string           `json:"type"`
	Text whatsAppBodyText `json:"text"`
}

type whatsAppBodyText struct {
	Body string `json:"body"`
}

// Send delivers a text message to the given phone number (E.164)
func (a *WhatsAppAdapter) Send(ctx context.Context, phone, body string) error {
	if phone == "" {
		return fmt.Errorf("phone number is required")
	}

	payload, err := json.Marshal(whatsAppMessage{
		To:   phone,
		Type: "text",
		Text: whatsAppBodyText{Body: body},
	})
	if err != nil {
		return fmt.Errorf("failed to encode whatsapp message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.Token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		return fmt.Errorf("whatsapp API returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
