package billing

import (
	"github.com/eventos/backend/internal/domain/crm"
)

// FinancialStatus is the derived payment standing of an event's quote
type FinancialStatus string

const (
	FinancialStatusPending   FinancialStatus = "PENDING"
	FinancialStatusPartial   FinancialStatus = "PARTIAL"
	FinancialStatusPaid      FinancialStatus = "PAID"
	FinancialStatusCancelled FinancialStatus = "CANCELLED"
)

// IsValid checks if the status is a known value
func (s FinancialStatus) IsValid() bool {
	switch s {
	case FinancialStatusPending, FinancialStatusPartial,
		FinancialStatusPaid, FinancialStatusCancelled:
		return true
	}
	return false
}

// Classify derives the financial status from the event lifecycle and the
// payment summary. The event lifecycle wins: a cancelled or no-show event is
// financially CANCELLED no matter what was collected, so refunds are handled
// out of band.
func Classify(eventStatus crm.EventStatus, summary PaymentSummary) FinancialStatus {
	if eventStatus.IsCancelledLike() {
		return FinancialStatusCancelled
	}
	if !summary.TotalPaid.IsPositive() {
		return FinancialStatusPending
	}
	if summary.BalanceDue.IsPositive() {
		return FinancialStatusPartial
	}
	return FinancialStatusPaid
}
