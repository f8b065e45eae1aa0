package billing

import (
	"time"

	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodCheck    PaymentMethod = "CHECK"
	PaymentMethodOther    PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is a known value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard,
		PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is the aggregate root for a single payment registered against a
// quote. Payments are append-only: a mistaken payment is voided with Cancel,
// which keeps the row for audit, rather than edited in place.
type Payment struct {
	shared.TenantAggregateRoot
	QuoteID      uuid.UUID         `json:"quote_id"`
	Amount       valueobject.Money `json:"amount"`
	PaymentDate  time.Time         `json:"payment_date"`
	Method       PaymentMethod     `json:"method"`
	Reference    string            `json:"reference"`
	Notes        string            `json:"notes"`
	IsCancelled  bool              `json:"is_cancelled"`
	CancelledAt  *time.Time        `json:"cancelled_at,omitempty"`
	CancelReason string            `json:"cancel_reason,omitempty"`
}

// NewPayment creates a new payment record
func NewPayment(tenantID, quoteID uuid.UUID, amount valueobject.Money, paymentDate time.Time, method PaymentMethod, reference, notes string) (*Payment, error) {
	if quoteID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_QUOTE", "Payment must belong to a quote")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Payment date is required")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+string(method))
	}
	if len(reference) > 100 {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Payment reference cannot exceed 100 characters")
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		QuoteID:             quoteID,
		Amount:              amount,
		PaymentDate:         paymentDate,
		Method:              method,
		Reference:           reference,
		Notes:               notes,
	}

	return p, nil
}

// Cancel voids the payment so it no longer counts toward the quote balance
func (p *Payment) Cancel(reason string) error {
	if p.IsCancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "Payment is already cancelled")
	}
	now := time.Now()
	p.IsCancelled = true
	p.CancelledAt = &now
	p.CancelReason = reason
	p.Touch()
	p.AddDomainEvent(NewPaymentCancelledEvent(p))
	return nil
}

// CountsTowardBalance reports whether the payment contributes to the total paid
func (p *Payment) CountsTowardBalance() bool {
	return !p.IsCancelled
}
