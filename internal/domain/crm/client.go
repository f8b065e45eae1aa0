package crm

import (
	"strings"

	"github.com/eventos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Client represents a customer of the event business
type Client struct {
	shared.TenantAggregateRoot
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"` // E.164, used for WhatsApp notifications
	Notes string `json:"notes"`
}

// NewClient creates a new client
func NewClient(tenantID uuid.UUID, name, email, phone string) (*Client, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Client email is not valid")
	}
	if phone != "" && !strings.HasPrefix(phone, "+") {
		return nil, shared.NewDomainError("INVALID_PHONE", "Client phone must be in E.164 format")
	}

	c := &Client{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Email:               email,
		Phone:               phone,
	}

	c.AddDomainEvent(NewClientCreatedEvent(c))

	return c, nil
}

// Update updates the client's contact details
func (c *Client) Update(name, email, phone, notes string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if email != "" && !strings.Contains(email, "@") {
		return shared.NewDomainError("INVALID_EMAIL", "Client email is not valid")
	}
	if phone != "" && !strings.HasPrefix(phone, "+") {
		return shared.NewDomainError("INVALID_PHONE", "Client phone must be in E.164 format")
	}

	c.Name = name
	c.Email = email
	c.Phone = phone
	c.Notes = notes
	c.Touch()

	return nil
}

// CanReceiveEmail returns true if the client has an email address on file
func (c *Client) CanReceiveEmail() bool {
	return c.Email != ""
}

// CanReceiveWhatsApp returns true if the client has a phone number on file
func (c *Client) CanReceiveWhatsApp() bool {
	return c.Phone != ""
}
