package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/eventos/backend/internal/domain/billing"
	"github.com/eventos/backend/internal/domain/crm"
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FinancialStatusResolver derives the financial status of an event from its
// quotes and payments
type FinancialStatusResolver interface {
	FinancialStatusForEvent(ctx context.Context, tenantID uuid.UUID, event *crm.Event) (billing.FinancialStatus, error)
}

// EventService handles event lifecycle management
type EventService struct {
	eventRepo  crm.EventRepository
	clientRepo crm.ClientRepository
	eventBus   shared.EventPublisher
	finances   FinancialStatusResolver
	logger     *zap.Logger
}

// NewEventService creates a new EventService
func NewEventService(
	eventRepo crm.EventRepository,
	clientRepo crm.ClientRepository,
	eventBus shared.EventPublisher,
	finances FinancialStatusResolver,
	logger *zap.Logger,
) *EventService {
	return &EventService{
		eventRepo:  eventRepo,
		clientRepo: clientRepo,
		eventBus:   eventBus,
		finances:   finances,
		logger:     logger,
	}
}

// CreateEventRequest represents a request to open a new event inquiry
type CreateEventRequest struct {
	TenantID   uuid.UUID
	ClientID   uuid.UUID
	Name       string
	Type       crm.EventType
	EventDate  time.Time
	GuestCount int
	Venue      string
	Notes      string
	CreatedBy  *uuid.UUID
}

// CreateEvent opens a new event inquiry for a client
func (s *EventService) CreateEvent(ctx context.Context, req CreateEventRequest) (*crm.Event, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "event", "create")
	defer span.End()

	client, err := s.clientRepo.FindByIDForTenant(ctx, req.TenantID, req.ClientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
	}

	event, err := crm.NewEvent(req.TenantID, req.ClientID, req.Name, req.Type, req.EventDate, req.GuestCount)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	event.Venue = req.Venue
	event.Notes = req.Notes
	if req.CreatedBy != nil {
		event.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.eventRepo.Save(ctx, event); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save event: %w", err)
	}

	s.publishEvents(ctx, event)
	s.logger.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("client_id", req.ClientID.String()))

	return event, nil
}

// TransitionEvent applies a lifecycle action to an event
func (s *EventService) TransitionEvent(ctx context.Context, tenantID, eventID uuid.UUID, action string, reason string) (*crm.Event, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "event", "transition")
	defer span.End()
	telemetry.SetAttributes(span, "event_id", eventID.String(), "action", action)

	event, err := s.getEvent(ctx, tenantID, eventID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	switch action {
	case "confirm":
		err = event.Confirm()
	case "start_logistics":
		err = event.StartLogistics()
	case "start":
		err = event.Start()
	case "complete":
		err = event.Complete()
	case "cancel":
		err = event.Cancel(reason)
	case "no_show":
		err = event.MarkNoShow()
	default:
		err = shared.NewDomainError("INVALID_ACTION", "Unknown event action: "+action)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.eventRepo.Save(ctx, event); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save event: %w", err)
	}

	s.publishEvents(ctx, event)
	return event, nil
}

// UpdateEventRequest represents a request to update event details
type UpdateEventRequest struct {
	TenantID   uuid.UUID
	EventID    uuid.UUID
	Name       string
	Venue      string
	Notes      string
	GuestCount int
	EventDate  *time.Time
}

// UpdateEvent updates the mutable details of an event
func (s *EventService) UpdateEvent(ctx context.Context, req UpdateEventRequest) (*crm.Event, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "event", "update")
	defer span.End()

	event, err := s.getEvent(ctx, req.TenantID, req.EventID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := event.UpdateDetails(req.Name, req.Venue, req.Notes, req.GuestCount); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.EventDate != nil {
		if err := event.Reschedule(*req.EventDate); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.eventRepo.Save(ctx, event); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save event: %w", err)
	}

	return event, nil
}

// GetEvent loads a single event
func (s *EventService) GetEvent(ctx context.Context, tenantID, eventID uuid.UUID) (*crm.Event, error) {
	return s.getEvent(ctx, tenantID, eventID)
}

// ListEvents returns a paginated event list
func (s *EventService) ListEvents(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[crm.Event], error) {
	return s.eventRepo.List(ctx, tenantID, filter)
}

// CalendarEntry is an event annotated with its payment standing, used to
// color calendar cells in clients
type CalendarEntry struct {
	Event           crm.Event               `json:"event"`
	FinancialStatus billing.FinancialStatus `json:"financial_status"`
}

// Calendar returns the events in a date range, each annotated with the
// financial status of its quote
func (s *EventService) Calendar(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]CalendarEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "event", "calendar")
	defer span.End()

	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_RANGE", "Calendar range end precedes start")
	}

	events, err := s.eventRepo.FindByDateRange(ctx, tenantID, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	entries := make([]CalendarEntry, 0, len(events))
	for i := range events {
		status, err := s.finances.FinancialStatusForEvent(ctx, tenantID, &events[i])
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to derive financial status: %w", err)
		}
		entries = append(entries, CalendarEntry{Event: events[i], FinancialStatus: status})
	}

	return entries, nil
}

func (s *EventService) getEvent(ctx context.Context, tenantID, eventID uuid.UUID) (*crm.Event, error) {
	event, err := s.eventRepo.FindByIDForTenant(ctx, tenantID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event == nil {
		return nil, shared.NewDomainError("EVENT_NOT_FOUND", "Event not found")
	}
	return event, nil
}

func (s *EventService) publishEvents(ctx context.Context, event *crm.Event) {
	pending := event.GetDomainEvents()
	if len(pending) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, pending...); err != nil {
		s.logger.Warn("Failed to publish event domain events",
			zap.String("event_id", event.ID.String()),
			zap.Error(err))
	}
	event.ClearDomainEvents()
}
