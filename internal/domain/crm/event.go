package crm

import (
	"strings"
	"time"

	"github.com/eventos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EventStatus represents the lifecycle state of an event
type EventStatus string

const (
	EventStatusInquiry    EventStatus = "INQUIRY"
	EventStatusConfirmed  EventStatus = "CONFIRMED"
	EventStatusLogistics  EventStatus = "LOGISTICS"
	EventStatusInProgress EventStatus = "IN_PROGRESS"
	EventStatusCompleted  EventStatus = "COMPLETED"
	EventStatusCancelled  EventStatus = "CANCELLED"
	EventStatusNoShow     EventStatus = "NO_SHOW"
)

// IsValid checks if the status is a known value
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusInquiry, EventStatusConfirmed, EventStatusLogistics,
		EventStatusInProgress, EventStatusCompleted, EventStatusCancelled,
		EventStatusNoShow:
		return true
	}
	return false
}

// IsTerminal checks if the status admits no further transitions
func (s EventStatus) IsTerminal() bool {
	return s == EventStatusCompleted || s == EventStatusCancelled || s == EventStatusNoShow
}

// IsCancelledLike reports whether the event was called off, either
// explicitly or because the client never showed up
func (s EventStatus) IsCancelledLike() bool {
	return s == EventStatusCancelled || s == EventStatusNoShow
}

// eventTransitions maps each status to the statuses it may move to
var eventTransitions = map[EventStatus][]EventStatus{
	EventStatusInquiry:    {EventStatusConfirmed, EventStatusCancelled},
	EventStatusConfirmed:  {EventStatusLogistics, EventStatusCancelled, EventStatusNoShow},
	EventStatusLogistics:  {EventStatusInProgress, EventStatusCancelled, EventStatusNoShow},
	EventStatusInProgress: {EventStatusCompleted, EventStatusCancelled},
	EventStatusCompleted:  {},
	EventStatusCancelled:  {},
	EventStatusNoShow:     {},
}

// CanTransitionTo checks if a transition to the target status is allowed
func (s EventStatus) CanTransitionTo(target EventStatus) bool {
	for _, allowed := range eventTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// EventType classifies the kind of celebration being organized
type EventType string

const (
	EventTypeWedding   EventType = "WEDDING"
	EventTypeXVAnos    EventType = "XV_ANOS"
	EventTypeBaptism   EventType = "BAPTISM"
	EventTypeCorporate EventType = "CORPORATE"
	EventTypeBirthday  EventType = "BIRTHDAY"
	EventTypeOther     EventType = "OTHER"
)

// IsValid checks if the event type is a known value
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeWedding, EventTypeXVAnos, EventTypeBaptism,
		EventTypeCorporate, EventTypeBirthday, EventTypeOther:
		return true
	}
	return false
}

// Event is the aggregate root for a scheduled celebration
type Event struct {
	shared.TenantAggregateRoot
	ClientID     uuid.UUID   `json:"client_id"`
	Name         string      `json:"name"`
	Type         EventType   `json:"type"`
	Status       EventStatus `json:"status"`
	EventDate    time.Time   `json:"event_date"`
	GuestCount   int         `json:"guest_count"`
	Venue        string      `json:"venue"`
	Notes        string      `json:"notes"`
	CancelReason string      `json:"cancel_reason,omitempty"`
}

// NewEvent creates a new event in INQUIRY status
func NewEvent(tenantID, clientID uuid.UUID, name string, eventType EventType, eventDate time.Time, guestCount int) (*Event, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Event must belong to a client")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Event name cannot be empty")
	}
	if !eventType.IsValid() {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "Unknown event type: "+string(eventType))
	}
	if eventDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Event date is required")
	}
	if guestCount < 0 {
		return nil, shared.NewDomainError("INVALID_GUEST_COUNT", "Guest count cannot be negative")
	}

	e := &Event{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		Name:                name,
		Type:                eventType,
		Status:              EventStatusInquiry,
		EventDate:           eventDate,
		GuestCount:          guestCount,
	}

	e.AddDomainEvent(NewEventCreatedEvent(e))

	return e, nil
}

// Confirm moves the event from INQUIRY to CONFIRMED
func (e *Event) Confirm() error {
	return e.transitionTo(EventStatusConfirmed)
}

// StartLogistics moves the event into logistics planning
func (e *Event) StartLogistics() error {
	return e.transitionTo(EventStatusLogistics)
}

// Start marks the event as currently happening
func (e *Event) Start() error {
	return e.transitionTo(EventStatusInProgress)
}

// Complete marks the event as finished
func (e *Event) Complete() error {
	return e.transitionTo(EventStatusCompleted)
}

// Cancel cancels the event with a reason
func (e *Event) Cancel(reason string) error {
	if err := e.transitionTo(EventStatusCancelled); err != nil {
		return err
	}
	e.CancelReason = reason
	e.AddDomainEvent(NewEventCancelledEvent(e, reason))
	return nil
}

// MarkNoShow records that the client did not show up for the event
func (e *Event) MarkNoShow() error {
	if err := e.transitionTo(EventStatusNoShow); err != nil {
		return err
	}
	e.AddDomainEvent(NewEventCancelledEvent(e, "client did not show up"))
	return nil
}

// Reschedule changes the event date, allowed until the event is terminal
func (e *Event) Reschedule(newDate time.Time) error {
	if e.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	if newDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Event date is required")
	}
	e.EventDate = newDate
	e.Touch()
	return nil
}

// UpdateDetails updates mutable event fields, allowed until the event is terminal
func (e *Event) UpdateDetails(name, venue, notes string, guestCount int) error {
	if e.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Event name cannot be empty")
	}
	if guestCount < 0 {
		return shared.NewDomainError("INVALID_GUEST_COUNT", "Guest count cannot be negative")
	}
	e.Name = name
	e.Venue = venue
	e.Notes = notes
	e.GuestCount = guestCount
	e.Touch()
	return nil
}

func (e *Event) transitionTo(target EventStatus) error {
	if !e.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot transition event from "+string(e.Status)+" to "+string(target))
	}
	from := e.Status
	e.Status = target
	e.Touch()
	e.AddDomainEvent(NewEventStatusChangedEvent(e, from, target))
	return nil
}
