package billing

import (
	"testing"

	"github.com/eventos/backend/internal/domain/crm"
	"github.com/eventos/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
)

func summaryOf(total, paid float64) PaymentSummary {
	totalMoney := valueobject.NewMoneyMXNFromFloat(total)
	balance := totalMoney.MustSubtract(valueobject.NewMoneyMXNFromFloat(paid))
	if balance.IsNegative() {
		balance = valueobject.ZeroMXN()
	}
	count := 0
	if paid > 0 {
		count = 1
	}
	return PaymentSummary{
		TotalPrice:    totalMoney,
		TotalPaid:     valueobject.NewMoneyMXNFromFloat(paid),
		BalanceDue:    balance,
		PaymentsCount: count,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		eventStatus crm.EventStatus
		total       float64
		paid        float64
		expected    FinancialStatus
	}{
		{"nothing paid", crm.EventStatusConfirmed, 10000, 0, FinancialStatusPending},
		{"partially paid", crm.EventStatusConfirmed, 10000, 3000, FinancialStatusPartial},
		{"fully paid", crm.EventStatusConfirmed, 10000, 10000, FinancialStatusPaid},
		{"overpaid counts as paid", crm.EventStatusConfirmed, 10000, 12000, FinancialStatusPaid},
		{"cancelled event beats full payment", crm.EventStatusCancelled, 10000, 10000, FinancialStatusCancelled},
		{"no show beats partial payment", crm.EventStatusNoShow, 10000, 3000, FinancialStatusCancelled},
		{"inquiry with nothing paid", crm.EventStatusInquiry, 10000, 0, FinancialStatusPending},
		{"completed event still paid", crm.EventStatusCompleted, 10000, 10000, FinancialStatusPaid},
		{"zero price quote is pending until touched", crm.EventStatusConfirmed, 0, 0, FinancialStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.eventStatus, summaryOf(tt.total, tt.paid))
			assert.Equal(t, tt.expected, got)
		})
	}
}
