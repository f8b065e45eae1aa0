package crm

import (
	"strings"
	"time"

	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus represents the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
	QuoteStatusExpired  QuoteStatus = "EXPIRED"
)

// IsValid checks if the status is a known value
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted,
		QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// IsTerminal checks if the status admits no further transitions
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusRejected || s == QuoteStatusExpired
}

// QuoteLineItem is a priced line within a quote
type QuoteLineItem struct {
	Description string            `json:"description"`
	Quantity    int               `json:"quantity"`
	UnitPrice   valueobject.Money `json:"unit_price"`
	Subtotal    valueobject.Money `json:"subtotal"`
}

// NewQuoteLineItem creates a line item and computes its subtotal
func NewQuoteLineItem(description string, quantity int, unitPrice valueobject.Money) (QuoteLineItem, error) {
	if strings.TrimSpace(description) == "" {
		return QuoteLineItem{}, shared.NewDomainError("INVALID_LINE_ITEM", "Line item description cannot be empty")
	}
	if quantity <= 0 {
		return QuoteLineItem{}, shared.NewDomainError("INVALID_LINE_ITEM", "Line item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return QuoteLineItem{}, shared.NewDomainError("INVALID_LINE_ITEM", "Line item unit price cannot be negative")
	}
	return QuoteLineItem{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Subtotal:    unitPrice.Multiply(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// Quote is the aggregate root for a priced proposal attached to an event.
// Only an ACCEPTED quote can receive payments.
type Quote struct {
	shared.TenantAggregateRoot
	EventID    uuid.UUID         `json:"event_id"`
	Status     QuoteStatus       `json:"status"`
	LineItems  []QuoteLineItem   `json:"line_items"`
	TotalPrice valueobject.Money `json:"total_price"`
	ValidUntil *time.Time        `json:"valid_until,omitempty"`
	Notes      string            `json:"notes"`
}

// NewQuote creates a new draft quote for an event
func NewQuote(tenantID, eventID uuid.UUID, items []QuoteLineItem) (*Quote, error) {
	if eventID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EVENT", "Quote must belong to an event")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_LINE_ITEM", "Quote must have at least one line item")
	}

	q := &Quote{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EventID:             eventID,
		Status:              QuoteStatusDraft,
		LineItems:           items,
		TotalPrice:          sumLineItems(items),
	}

	q.AddDomainEvent(NewQuoteCreatedEvent(q))

	return q, nil
}

// ReplaceLineItems replaces the line items and recomputes the total.
// Only draft quotes can be edited.
func (q *Quote) ReplaceLineItems(items []QuoteLineItem) error {
	if q.Status != QuoteStatusDraft {
		return shared.ErrInvalidState
	}
	if len(items) == 0 {
		return shared.NewDomainError("INVALID_LINE_ITEM", "Quote must have at least one line item")
	}
	q.LineItems = items
	q.TotalPrice = sumLineItems(items)
	q.Touch()
	return nil
}

// Send marks the quote as sent to the client
func (q *Quote) Send(validUntil time.Time) error {
	if q.Status != QuoteStatusDraft {
		return shared.ErrInvalidState
	}
	if !validUntil.IsZero() {
		q.ValidUntil = &validUntil
	}
	q.Status = QuoteStatusSent
	q.Touch()
	return nil
}

// Accept marks the quote as accepted by the client, opening it for payments
func (q *Quote) Accept() error {
	if q.Status != QuoteStatusSent {
		return shared.ErrInvalidState
	}
	if q.ValidUntil != nil && time.Now().After(*q.ValidUntil) {
		return shared.NewDomainError("QUOTE_EXPIRED", "Quote validity period has passed")
	}
	q.Status = QuoteStatusAccepted
	q.Touch()
	q.AddDomainEvent(NewQuoteAcceptedEvent(q))
	return nil
}

// Reject marks the quote as rejected by the client
func (q *Quote) Reject() error {
	if q.Status != QuoteStatusSent {
		return shared.ErrInvalidState
	}
	q.Status = QuoteStatusRejected
	q.Touch()
	return nil
}

// Expire marks a sent quote whose validity period has passed
func (q *Quote) Expire() error {
	if q.Status != QuoteStatusSent {
		return shared.ErrInvalidState
	}
	q.Status = QuoteStatusExpired
	q.Touch()
	return nil
}

// CanAcceptPayments reports whether payments may be registered against this quote
func (q *Quote) CanAcceptPayments() bool {
	return q.Status == QuoteStatusAccepted
}

func sumLineItems(items []QuoteLineItem) valueobject.Money {
	total := valueobject.ZeroMXN()
	for _, item := range items {
		total = total.MustAdd(item.Subtotal)
	}
	return total
}
