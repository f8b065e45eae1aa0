package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eventos/backend/internal/domain/crm"
	"github.com/eventos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientModel is the persistence model for crm.Client
type ClientModel struct {
	TenantAggregateModel
	Name  string `gorm:"type:varchar(200);not null"`
	Email string `gorm:"type:varchar(200);index"`
	Phone string `gorm:"type:varchar(20)"`
	Notes string `gorm:"type:text"`
}

// TableName specifies the table name
func (ClientModel) TableName() string {
	return "clients"
}

// FromDomain converts domain Client to persistence model
func (m *ClientModel) FromDomain(c *crm.Client) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Notes = c.Notes
}

// ToDomain converts persistence model to domain Client
func (m *ClientModel) ToDomain() *crm.Client {
	return &crm.Client{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Email:               m.Email,
		Phone:               m.Phone,
		Notes:               m.Notes,
	}
}

// EventModel is the persistence model for crm.Event
type EventModel struct {
	TenantAggregateModel
	ClientID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"type:varchar(200);not null"`
	Type         string    `gorm:"type:varchar(20);not null"`
	Status       string    `gorm:"type:varchar(20);not null;index"`
	EventDate    time.Time `gorm:"not null;index"`
	GuestCount   int       `gorm:"not null;default:0"`
	Venue        string    `gorm:"type:varchar(300)"`
	Notes        string    `gorm:"type:text"`
	CancelReason string    `gorm:"type:varchar(500)"`
}

// TableName specifies the table name
func (EventModel) TableName() string {
	return "events"
}

// FromDomain converts domain Event to persistence model
func (m *EventModel) FromDomain(e *crm.Event) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.ClientID = e.ClientID
	m.Name = e.Name
	m.Type = string(e.Type)
	m.Status = string(e.Status)
	m.EventDate = e.EventDate
	m.GuestCount = e.GuestCount
	m.Venue = e.Venue
	m.Notes = e.Notes
	m.CancelReason = e.CancelReason
}

// ToDomain converts persistence model to domain Event
func (m *EventModel) ToDomain() *crm.Event {
	return &crm.Event{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		ClientID:            m.ClientID,
		Name:                m.Name,
		Type:                crm.EventType(m.Type),
		Status:              crm.EventStatus(m.Status),
		EventDate:           m.EventDate,
		GuestCount:          m.GuestCount,
		Venue:               m.Venue,
		Notes:               m.Notes,
		CancelReason:        m.CancelReason,
	}
}

// lineItemRecord is the JSON shape of a quote line item inside the jsonb column
type lineItemRecord struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Currency    string          `json:"currency"`
}

// LineItems stores quote line items as a jsonb column
type LineItems []lineItemRecord

// Value implements driver.Valuer for jsonb storage
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for jsonb retrieval
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into LineItems", value)
	}
	return json.Unmarshal(b, l)
}

// QuoteModel is the persistence model for crm.Quote
type QuoteModel struct {
	TenantAggregateModel
	EventID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status     string          `gorm:"type:varchar(20);not null;index"`
	LineItems  LineItems       `gorm:"type:jsonb"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency   string          `gorm:"type:varchar(3);not null;default:'MXN'"`
	ValidUntil *time.Time
	Notes      string `gorm:"type:text"`
}

// TableName specifies the table name
func (QuoteModel) TableName() string {
	return "quotes"
}

// FromDomain converts domain Quote to persistence model
func (m *QuoteModel) FromDomain(q *crm.Quote) {
	m.FromDomainTenantAggregateRoot(q.TenantAggregateRoot)
	m.EventID = q.EventID
	m.Status = string(q.Status)
	m.LineItems = make(LineItems, 0, len(q.LineItems))
	for _, item := range q.LineItems {
		m.LineItems = append(m.LineItems, lineItemRecord{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Amount(),
			Subtotal:    item.Subtotal.Amount(),
			Currency:    string(item.UnitPrice.Currency()),
		})
	}
	m.TotalPrice = q.TotalPrice.Amount()
	m.Currency = string(q.TotalPrice.Currency())
	m.ValidUntil = q.ValidUntil
	m.Notes = q.Notes
}

// ToDomain converts persistence model to domain Quote
func (m *QuoteModel) ToDomain() (*crm.Quote, error) {
	items := make([]crm.QuoteLineItem, 0, len(m.LineItems))
	for _, rec := range m.LineItems {
		unitPrice, err := valueobject.NewMoney(rec.UnitPrice, valueobject.Currency(rec.Currency))
		if err != nil {
			return nil, fmt.Errorf("invalid line item price: %w", err)
		}
		subtotal, err := valueobject.NewMoney(rec.Subtotal, valueobject.Currency(rec.Currency))
		if err != nil {
			return nil, fmt.Errorf("invalid line item subtotal: %w", err)
		}
		items = append(items, crm.QuoteLineItem{
			Description: rec.Description,
			Quantity:    rec.Quantity,
			UnitPrice:   unitPrice,
			Subtotal:    subtotal,
		})
	}

	total, err := valueobject.NewMoney(m.TotalPrice, valueobject.Currency(m.Currency))
	if err != nil {
		return nil, fmt.Errorf("invalid quote total: %w", err)
	}

	return &crm.Quote{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		EventID:             m.EventID,
		Status:              crm.QuoteStatus(m.Status),
		LineItems:           items,
		TotalPrice:          total,
		ValidUntil:          m.ValidUntil,
		Notes:               m.Notes,
	}, nil
}
