package billing

import (
	"github.com/eventos/backend/internal/domain/shared"
)

// Domain event names for the billing domain
const (
	PaymentRegisteredEventName = "billing.payment.registered"
	PaymentCancelledEventName  = "billing.payment.cancelled"
)

// PaymentRegisteredEvent is published after a payment is committed to the
// ledger. It carries the recomputed summary so downstream consumers do not
// have to reload the quote.
type PaymentRegisteredEvent struct {
	shared.BaseDomainEvent
	QuoteID       string `json:"quote_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Method        string `json:"method"`
	TotalPrice    string `json:"total_price"`
	TotalPaid     string `json:"total_paid"`
	BalanceDue    string `json:"balance_due"`
	PaymentsCount int    `json:"payments_count"`
}

// NewPaymentRegisteredEvent creates a payment registered event
func NewPaymentRegisteredEvent(p *Payment, summary PaymentSummary) *PaymentRegisteredEvent {
	return &PaymentRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(PaymentRegisteredEventName, "Payment", p.ID, p.TenantID),
		QuoteID:         p.QuoteID.String(),
		Amount:          p.Amount.Amount().String(),
		Currency:        string(p.Amount.Currency()),
		Method:          string(p.Method),
		TotalPrice:      summary.TotalPrice.Amount().String(),
		TotalPaid:       summary.TotalPaid.Amount().String(),
		BalanceDue:      summary.BalanceDue.Amount().String(),
		PaymentsCount:   summary.PaymentsCount,
	}
}

// PaymentCancelledEvent is published when a payment is voided
type PaymentCancelledEvent struct {
	shared.BaseDomainEvent
	QuoteID string `json:"quote_id"`
	Amount  string `json:"amount"`
	Reason  string `json:"reason"`
}

// NewPaymentCancelledEvent creates a payment cancelled event
func NewPaymentCancelledEvent(p *Payment) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(PaymentCancelledEventName, "Payment", p.ID, p.TenantID),
		QuoteID:         p.QuoteID.String(),
		Amount:          p.Amount.Amount().String(),
		Reason:          p.CancelReason,
	}
}
