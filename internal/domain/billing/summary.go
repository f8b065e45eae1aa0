package billing

import (
	"github.com/eventos/backend/internal/domain/shared/valueobject"
)

// PaymentSummary is the derived financial position of a quote. It is never
// stored: it is recomputed from the quote total and its payment rows so the
// ledger of payments stays the single source of truth.
type PaymentSummary struct {
	TotalPrice    valueobject.Money `json:"total_price"`
	TotalPaid     valueobject.Money `json:"total_paid"`
	BalanceDue    valueobject.Money `json:"balance_due"`
	PaymentsCount int               `json:"payments_count"`
}

// Summarize folds the payment rows into a summary. Cancelled payments are
// skipped. Balance due is clamped at zero so over-collection never shows a
// negative balance.
func Summarize(totalPrice valueobject.Money, payments []Payment) PaymentSummary {
	totalPaid := valueobject.Zero(totalPrice.Currency())
	count := 0
	for i := range payments {
		if !payments[i].CountsTowardBalance() {
			continue
		}
		totalPaid = totalPaid.MustAdd(payments[i].Amount)
		count++
	}

	balance := totalPrice.MustSubtract(totalPaid)
	if balance.IsNegative() {
		balance = valueobject.Zero(totalPrice.Currency())
	}

	return PaymentSummary{
		TotalPrice:    totalPrice,
		TotalPaid:     totalPaid,
		BalanceDue:    balance,
		PaymentsCount: count,
	}
}

// IsSettled reports whether the quote has been paid in full
func (s PaymentSummary) IsSettled() bool {
	return s.BalanceDue.IsZero() && s.TotalPaid.IsPositive()
}

// HasPayments reports whether any effective payment has been registered
func (s PaymentSummary) HasPayments() bool {
	return s.PaymentsCount > 0
}
