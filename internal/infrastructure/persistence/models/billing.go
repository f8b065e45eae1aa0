package models

import (
	"fmt"
	"time"

	"github.com/eventos/backend/internal/domain/billing"
	"github.com/eventos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for billing.Payment
type PaymentModel struct {
	TenantAggregateModel
	QuoteID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency     string          `gorm:"type:varchar(3);not null;default:'MXN'"`
	PaymentDate  time.Time       `gorm:"not null;index"`
	Method       string          `gorm:"type:varchar(20);not null"`
	Reference    string          `gorm:"type:varchar(100)"`
	Notes        string          `gorm:"type:text"`
	IsCancelled  bool            `gorm:"not null;default:false;index"`
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
}

// TableName specifies the table name
func (PaymentModel) TableName() string {
	return "payments"
}

// FromDomain converts domain Payment to persistence model
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.QuoteID = p.QuoteID
	m.Amount = p.Amount.Amount()
	m.Currency = string(p.Amount.Currency())
	m.PaymentDate = p.PaymentDate
	m.Method = string(p.Method)
	m.Reference = p.Reference
	m.Notes = p.Notes
	m.IsCancelled = p.IsCancelled
	m.CancelledAt = p.CancelledAt
	m.CancelReason = p.CancelReason
}

// ToDomain converts persistence model to domain Payment
func (m *PaymentModel) ToDomain() (*billing.Payment, error) {
	amount, err := valueobject.NewMoney(m.Amount, valueobject.Currency(m.Currency))
	if err != nil {
		return nil, fmt.Errorf("invalid payment amount: %w", err)
	}

	return &billing.Payment{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		QuoteID:             m.QuoteID,
		Amount:              amount,
		PaymentDate:         m.PaymentDate,
		Method:              billing.PaymentMethod(m.Method),
		Reference:           m.Reference,
		Notes:               m.Notes,
		IsCancelled:         m.IsCancelled,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
	}, nil
}
