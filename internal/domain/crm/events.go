package crm

import (
	"github.com/eventos/backend/internal/domain/shared"
)

// Domain event names for the CRM domain
const (
	ClientCreatedEventName      = "crm.client.created"
	EventCreatedEventName       = "crm.event.created"
	EventStatusChangedEventName = "crm.event.status_changed"
	EventCancelledEventName     = "crm.event.cancelled"
	QuoteCreatedEventName       = "crm.quote.created"
	QuoteAcceptedEventName      = "crm.quote.accepted"
)

// ClientCreatedEvent is published when a new client is registered
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewClientCreatedEvent creates a client created event
func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(ClientCreatedEventName, "Client", c.ID, c.TenantID),
		Name:            c.Name,
		Email:           c.Email,
	}
}

// EventCreatedEvent is published when a new event inquiry comes in
type EventCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
}

// NewEventCreatedEvent creates an event created event
func NewEventCreatedEvent(e *Event) *EventCreatedEvent {
	return &EventCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCreatedEventName, "Event", e.ID, e.TenantID),
		ClientID:        e.ClientID.String(),
		Name:            e.Name,
	}
}

// EventStatusChangedEvent is published on every event lifecycle transition
type EventStatusChangedEvent struct {
	shared.BaseDomainEvent
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// NewEventStatusChangedEvent creates an event status changed event
func NewEventStatusChangedEvent(e *Event, from, to EventStatus) *EventStatusChangedEvent {
	return &EventStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStatusChangedEventName, "Event", e.ID, e.TenantID),
		FromStatus:      string(from),
		ToStatus:        string(to),
	}
}

// EventCancelledEvent is published when an event is cancelled or marked no-show
type EventCancelledEvent struct {
	shared.BaseDomainEvent
	Reason string `json:"reason"`
}

// NewEventCancelledEvent creates an event cancelled event
func NewEventCancelledEvent(e *Event, reason string) *EventCancelledEvent {
	return &EventCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCancelledEventName, "Event", e.ID, e.TenantID),
		Reason:          reason,
	}
}

// QuoteCreatedEvent is published when a new quote is drafted.
// The owning event field must not be named EventID: that would shadow the
// promoted EventID method and break the DomainEvent contract.
type QuoteCreatedEvent struct {
	shared.BaseDomainEvent
	OwningEventID string `json:"event_id"`
	TotalPrice    string `json:"total_price"`
}

// NewQuoteCreatedEvent creates a quote created event
func NewQuoteCreatedEvent(q *Quote) *QuoteCreatedEvent {
	return &QuoteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(QuoteCreatedEventName, "Quote", q.ID, q.TenantID),
		OwningEventID:   q.EventID.String(),
		TotalPrice:      q.TotalPrice.String(),
	}
}

// QuoteAcceptedEvent is published when the client accepts a quote
type QuoteAcceptedEvent struct {
	shared.BaseDomainEvent
	OwningEventID string `json:"event_id"`
	TotalPrice    string `json:"total_price"`
}

// NewQuoteAcceptedEvent creates a quote accepted event
func NewQuoteAcceptedEvent(q *Quote) *QuoteAcceptedEvent {
	return &QuoteAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(QuoteAcceptedEventName, "Quote", q.ID, q.TenantID),
		OwningEventID:   q.EventID.String(),
		TotalPrice:      q.TotalPrice.String(),
	}
}
