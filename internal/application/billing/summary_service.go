package billing

import (
	"context"
	"fmt"

	"github.com/eventos/backend/internal/domain/billing"
	"github.com/eventos/backend/internal/domain/crm"
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/domain/shared/valueobject"
	"github.com/eventos/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// SummaryService computes the derived financial position of quotes
type SummaryService struct {
	quoteRepo     crm.QuoteRepository
	eventRepo     crm.EventRepository
	paymentRepo   billing.PaymentRepository
	depositPolicy billing.DepositPolicy
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(
	quoteRepo crm.QuoteRepository,
	eventRepo crm.EventRepository,
	paymentRepo billing.PaymentRepository,
	depositPolicy billing.DepositPolicy,
) *SummaryService {
	return &SummaryService{
		quoteRepo:     quoteRepo,
		eventRepo:     eventRepo,
		paymentRepo:   paymentRepo,
		depositPolicy: depositPolicy,
	}
}

// QuoteFinancials is the full derived financial view of a quote
type QuoteFinancials struct {
	Summary         billing.PaymentSummary  `json:"summary"`
	FinancialStatus billing.FinancialStatus `json:"financial_status"`
	RequiredDeposit valueobject.Money       `json:"required_deposit"`
	DepositMet      bool                    `json:"deposit_met"`
}

// GetQuoteFinancials recomputes the summary, financial status and deposit
// requirement for a quote. Nothing here is read from storage as a derived
// value; the payment rows are the source of truth.
func (s *SummaryService) GetQuoteFinancials(ctx context.Context, tenantID, quoteID uuid.UUID) (*QuoteFinancials, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "summary", "get_quote_financials")
	defer span.End()
	telemetry.SetAttribute(span, "quote_id", quoteID.String())

	quote, err := s.quoteRepo.FindByIDForTenant(ctx, tenantID, quoteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load quote: %w", err)
	}
	if quote == nil {
		return nil, shared.NewDomainError("QUOTE_NOT_FOUND", "Quote not found")
	}

	event, err := s.eventRepo.FindByIDForTenant(ctx, tenantID, quote.EventID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event == nil {
		return nil, shared.NewDomainError("EVENT_NOT_FOUND", "Event for quote not found")
	}

	payments, err := s.paymentRepo.FindByQuote(ctx, tenantID, quoteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	summary := billing.Summarize(quote.TotalPrice, payments)

	return &QuoteFinancials{
		Summary:         summary,
		FinancialStatus: billing.Classify(event.Status, summary),
		RequiredDeposit: s.depositPolicy.DepositDue(summary),
		DepositMet:      s.depositPolicy.IsDepositMet(summary),
	}, nil
}

// FinancialStatusForEvent derives the financial status of an event from its
// most recent accepted quote, falling back to the latest quote of any status.
// Events without a quote are PENDING unless their lifecycle was called off.
func (s *SummaryService) FinancialStatusForEvent(ctx context.Context, tenantID uuid.UUID, event *crm.Event) (billing.FinancialStatus, error) {
	if event.Status.IsCancelledLike() {
		return billing.FinancialStatusCancelled, nil
	}

	quotes, err := s.quoteRepo.FindByEvent(ctx, tenantID, event.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load quotes: %w", err)
	}

	quote := pickBillingQuote(quotes)
	if quote == nil {
		return billing.FinancialStatusPending, nil
	}

	payments, err := s.paymentRepo.FindByQuote(ctx, tenantID, quote.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load payments: %w", err)
	}

	return billing.Classify(event.Status, billing.Summarize(quote.TotalPrice, payments)), nil
}

// pickBillingQuote prefers the newest accepted quote, then the newest of any status
func pickBillingQuote(quotes []crm.Quote) *crm.Quote {
	var newest, newestAccepted *crm.Quote
	for i := range quotes {
		q := &quotes[i]
		if newest == nil || q.CreatedAt.After(newest.CreatedAt) {
			newest = q
		}
		if q.Status == crm.QuoteStatusAccepted &&
			(newestAccepted == nil || q.CreatedAt.After(newestAccepted.CreatedAt)) {
			newestAccepted = q
		}
	}
	if newestAccepted != nil {
		return newestAccepted
	}
	return newest
}
