package billing

import (
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultDepositPercent is the deposit required to confirm an event when the
// tenant has not configured its own percentage.
var DefaultDepositPercent = decimal.NewFromInt(30)

// DepositPolicy computes the up-front deposit required on a quote
type DepositPolicy struct {
	Percent decimal.Decimal
}

// NewDepositPolicy creates a deposit policy with the given percentage
func NewDepositPolicy(percent decimal.Decimal) (DepositPolicy, error) {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return DepositPolicy{}, shared.NewDomainError("INVALID_DEPOSIT_PERCENT", "Deposit percent must be between 0 and 100")
	}
	return DepositPolicy{Percent: percent}, nil
}

// DefaultDepositPolicy returns the standard deposit policy
func DefaultDepositPolicy() DepositPolicy {
	return DepositPolicy{Percent: DefaultDepositPercent}
}

// RequiredDeposit returns the deposit amount due on the given quote total,
// rounded to two decimal places
func (p DepositPolicy) RequiredDeposit(totalPrice valueobject.Money) valueobject.Money {
	return totalPrice.CalculatePercentage(p.Percent).Round(2)
}

// DepositDue returns the deposit still required on the quote: the full policy
// amount until the collected total reaches it, zero afterwards
func (p DepositPolicy) DepositDue(summary PaymentSummary) valueobject.Money {
	if p.IsDepositMet(summary) {
		return valueobject.Zero(summary.TotalPrice.Currency())
	}
	return p.RequiredDeposit(summary.TotalPrice)
}

// IsDepositMet reports whether the payments collected so far cover the deposit
func (p DepositPolicy) IsDepositMet(summary PaymentSummary) bool {
	required := p.RequiredDeposit(summary.TotalPrice)
	met, err := summary.TotalPaid.GreaterThanOrEqual(required)
	if err != nil {
		return false
	}
	return met
}
