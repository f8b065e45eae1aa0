package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/eventos/backend/internal/domain/crm"
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/domain/shared/valueobject"
	"github.com/eventos/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteService handles quote management
type QuoteService struct {
	quoteRepo crm.QuoteRepository
	eventRepo crm.EventRepository
	eventBus  shared.EventPublisher
	logger    *zap.Logger
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	quoteRepo crm.QuoteRepository,
	eventRepo crm.EventRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo: quoteRepo,
		eventRepo: eventRepo,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// LineItemInput is one quote line as submitted by the caller
type LineItemInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateQuoteRequest represents a request to draft a quote for an event
type CreateQuoteRequest struct {
	TenantID  uuid.UUID
	EventID   uuid.UUID
	Items     []LineItemInput
	Notes     string
	CreatedBy *uuid.UUID
}

// CreateQuote drafts a new quote for an event
func (s *QuoteService) CreateQuote(ctx context.Context, req CreateQuoteRequest) (*crm.Quote, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quote", "create")
	defer span.End()

	event, err := s.eventRepo.FindByIDForTenant(ctx, req.TenantID, req.EventID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event == nil {
		return nil, shared.NewDomainError("EVENT_NOT_FOUND", "Event not found")
	}
	if event.Status.IsTerminal() {
		return nil, shared.NewDomainError("EVENT_CLOSED", "Cannot quote a closed event")
	}

	items, err := buildLineItems(req.Items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	quote, err := crm.NewQuote(req.TenantID, req.EventID, items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	quote.Notes = req.Notes
	if req.CreatedBy != nil {
		quote.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save quote: %w", err)
	}

	s.publishEvents(ctx, quote)
	s.logger.Info("Quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("event_id", req.EventID.String()),
		zap.String("total_price", quote.TotalPrice.Amount().String()))

	return quote, nil
}

// UpdateQuoteLines replaces the line items of a draft quote
func (s *QuoteService) UpdateQuoteLines(ctx context.Context, tenantID, quoteID uuid.UUID, lines []LineItemInput) (*crm.Quote, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quote", "update_lines")
	defer span.End()

	quote, err := s.getQuote(ctx, tenantID, quoteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	items, err := buildLineItems(lines)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := quote.ReplaceLineItems(items); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save quote: %w", err)
	}

	return quote, nil
}

// SendQuote marks a draft quote as sent with an optional validity deadline
func (s *QuoteService) SendQuote(ctx context.Context, tenantID, quoteID uuid.UUID, validUntil time.Time) (*crm.Quote, error) {
	return s.transition(ctx, tenantID, quoteID, "send", func(q *crm.Quote) error {
		return q.Send(validUntil)
	})
}

// AcceptQuote marks a sent quote as accepted, opening it for payments
func (s *QuoteService) AcceptQuote(ctx context.Context, tenantID, quoteID uuid.UUID) (*crm.Quote, error) {
	return s.transition(ctx, tenantID, quoteID, "accept", (*crm.Quote).Accept)
}

// RejectQuote marks a sent quote as rejected
func (s *QuoteService) RejectQuote(ctx context.Context, tenantID, quoteID uuid.UUID) (*crm.Quote, error) {
	return s.transition(ctx, tenantID, quoteID, "reject", (*crm.Quote).Reject)
}

// GetQuote loads a single quote
func (s *QuoteService) GetQuote(ctx context.Context, tenantID, quoteID uuid.UUID) (*crm.Quote, error) {
	return s.getQuote(ctx, tenantID, quoteID)
}

// ListQuotesByEvent returns all quotes attached to an event
func (s *QuoteService) ListQuotesByEvent(ctx context.Context, tenantID, eventID uuid.UUID) ([]crm.Quote, error) {
	quotes, err := s.quoteRepo.FindByEvent(ctx, tenantID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotes: %w", err)
	}
	return quotes, nil
}

func (s *QuoteService) transition(ctx context.Context, tenantID, quoteID uuid.UUID, name string, fn func(*crm.Quote) error) (*crm.Quote, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quote", name)
	defer span.End()
	telemetry.SetAttribute(span, "quote_id", quoteID.String())

	quote, err := s.getQuote(ctx, tenantID, quoteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := fn(quote); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save quote: %w", err)
	}

	s.publishEvents(ctx, quote)
	return quote, nil
}

func (s *QuoteService) getQuote(ctx context.Context, tenantID, quoteID uuid.UUID) (*crm.Quote, error) {
	quote, err := s.quoteRepo.FindByIDForTenant(ctx, tenantID, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quote: %w", err)
	}
	if quote == nil {
		return nil, shared.NewDomainError("QUOTE_NOT_FOUND", "Quote not found")
	}
	return quote, nil
}

func (s *QuoteService) publishEvents(ctx context.Context, quote *crm.Quote) {
	pending := quote.GetDomainEvents()
	if len(pending) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, pending...); err != nil {
		s.logger.Warn("Failed to publish quote domain events",
			zap.String("quote_id", quote.ID.String()),
			zap.Error(err))
	}
	quote.ClearDomainEvents()
}

func buildLineItems(inputs []LineItemInput) ([]crm.QuoteLineItem, error) {
	items := make([]crm.QuoteLineItem, 0, len(inputs))
	for _, in := range inputs {
		item, err := crm.NewQuoteLineItem(in.Description, in.Quantity, valueobject.NewMoneyMXN(in.UnitPrice))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
