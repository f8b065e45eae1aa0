package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/eventos/backend/internal/domain/billing"
	"github.com/eventos/backend/internal/domain/crm"
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/domain/shared/valueobject"
	"github.com/eventos/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService handles the payment registration workflow
type PaymentService struct {
	quoteRepo   crm.QuoteRepository
	eventRepo   crm.EventRepository
	paymentRepo billing.PaymentRepository
	txManager   shared.TxManager
	eventBus    shared.EventPublisher
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	quoteRepo crm.QuoteRepository,
	eventRepo crm.EventRepository,
	paymentRepo billing.PaymentRepository,
	txManager shared.TxManager,
	eventBus shared.EventPublisher,
	idempotency shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		quoteRepo:   quoteRepo,
		eventRepo:   eventRepo,
		paymentRepo: paymentRepo,
		txManager:   txManager,
		eventBus:    eventBus,
		idempotency: idempotency,
		idemConfig:  idemConfig,
		logger:      logger,
	}
}

// RegisterPaymentRequest represents a request to register a payment against a quote
type RegisterPaymentRequest struct {
	TenantID       uuid.UUID
	QuoteID        uuid.UUID
	Amount         decimal.Decimal
	PaymentDate    time.Time
	Method         billing.PaymentMethod
	Reference      string
	Notes          string
	IdempotencyKey string
	CreatedBy      *uuid.UUID
}

// RegisterPaymentResult is the created payment together with the fresh summary
type RegisterPaymentResult struct {
	Payment *billing.Payment       `json:"payment"`
	Summary billing.PaymentSummary `json:"summary"`
}

// RegisterPayment validates and records a payment against an accepted quote.
// The quote row is locked for the duration of the transaction so concurrent
// registrations serialize: the balance check and the insert see the same
// ledger state.
func (s *PaymentService) RegisterPayment(ctx context.Context, req RegisterPaymentRequest) (*RegisterPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "register")
	defer span.End()

	telemetry.SetAttributes(span,
		"quote_id", req.QuoteID.String(),
		"amount", req.Amount.String(),
		"method", string(req.Method),
	)

	if req.Amount.IsNegative() || req.Amount.IsZero() {
		err := shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var idemKey string
	if req.IdempotencyKey != "" && s.idempotency != nil && s.idemConfig.Enabled {
		key := fmt.Sprintf("payment:%s:%s", req.QuoteID, req.IdempotencyKey)
		fresh, err := s.idempotency.MarkProcessed(ctx, key, s.idemConfig.TTL)
		if err != nil {
			// The store being down should not block payment intake
			s.logger.Warn("Idempotency store unavailable, skipping duplicate check",
				zap.String("quote_id", req.QuoteID.String()),
				zap.Error(err))
		} else if !fresh {
			telemetry.RecordError(span, shared.ErrDuplicateRequest)
			return nil, shared.ErrDuplicateRequest
		} else {
			idemKey = key
		}
	}

	var result *RegisterPaymentResult
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		quote, err := s.quoteRepo.FindByIDForUpdate(txCtx, req.TenantID, req.QuoteID)
		if err != nil {
			return fmt.Errorf("failed to lock quote: %w", err)
		}
		if quote == nil {
			return shared.NewDomainError("QUOTE_NOT_FOUND", "Quote not found")
		}
		if !quote.CanAcceptPayments() {
			return shared.NewDomainError("QUOTE_NOT_PAYABLE", "Only accepted quotes can receive payments")
		}

		event, err := s.eventRepo.FindByIDForTenant(txCtx, req.TenantID, quote.EventID)
		if err != nil {
			return fmt.Errorf("failed to load event: %w", err)
		}
		if event == nil {
			return shared.NewDomainError("EVENT_NOT_FOUND", "Event for quote not found")
		}
		if event.Status.IsCancelledLike() {
			return shared.NewDomainError("EVENT_CANCELLED", "Cannot register payments on a cancelled event")
		}

		payments, err := s.paymentRepo.FindByQuote(txCtx, req.TenantID, req.QuoteID)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}

		summary := billing.Summarize(quote.TotalPrice, payments)
		amount := valueobject.NewMoneyMXN(req.Amount)
		exceeds, err := amount.GreaterThan(summary.BalanceDue)
		if err != nil {
			return fmt.Errorf("failed to compare amounts: %w", err)
		}
		if exceeds {
			return shared.ErrExceedsBalance
		}

		payment, err := billing.NewPayment(req.TenantID, req.QuoteID, amount,
			req.PaymentDate, req.Method, req.Reference, req.Notes)
		if err != nil {
			return err
		}
		if req.CreatedBy != nil {
			payment.SetCreatedBy(*req.CreatedBy)
		}

		if err := s.paymentRepo.Save(txCtx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		summary = billing.Summarize(quote.TotalPrice, append(payments, *payment))
		payment.AddDomainEvent(billing.NewPaymentRegisteredEvent(payment, summary))

		result = &RegisterPaymentResult{Payment: payment, Summary: summary}
		return nil
	})
	if err != nil {
		// A rejected registration must not consume the key; it stays
		// valid for a corrected retry
		if idemKey != "" {
			if relErr := s.idempotency.Release(ctx, idemKey); relErr != nil {
				s.logger.Warn("Failed to release idempotency key",
					zap.String("quote_id", req.QuoteID.String()),
					zap.Error(relErr))
			}
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, result.Payment)

	s.logger.Info("Payment registered",
		zap.String("payment_id", result.Payment.ID.String()),
		zap.String("quote_id", req.QuoteID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("balance_due", result.Summary.BalanceDue.Amount().String()))

	return result, nil
}

// CancelPayment voids a payment so it stops counting toward the quote balance
func (s *PaymentService) CancelPayment(ctx context.Context, tenantID, paymentID uuid.UUID, reason string) (*billing.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "cancel")
	defer span.End()
	telemetry.SetAttribute(span, "payment_id", paymentID.String())

	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}

	if err := payment.Cancel(reason); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	s.publishEvents(ctx, payment)

	s.logger.Info("Payment cancelled",
		zap.String("payment_id", paymentID.String()),
		zap.String("reason", reason))

	return payment, nil
}

// DeletePayment removes a payment row entirely. Meant for admin cleanup of
// bad data; normal voiding goes through CancelPayment.
func (s *PaymentService) DeletePayment(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete")
	defer span.End()
	telemetry.SetAttribute(span, "payment_id", paymentID.String())

	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}

	if err := s.paymentRepo.Delete(ctx, paymentID); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	s.logger.Info("Payment deleted",
		zap.String("payment_id", paymentID.String()),
		zap.String("quote_id", payment.QuoteID.String()))

	return nil
}

// ListPaymentsRequest filters the payment list for a quote
type ListPaymentsRequest struct {
	TenantID         uuid.UUID
	QuoteID          uuid.UUID
	Method           billing.PaymentMethod
	From             *time.Time
	To               *time.Time
	IncludeCancelled bool
}

// ListPayments returns the payments registered against a quote
func (s *PaymentService) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]billing.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "list")
	defer span.End()
	telemetry.SetAttribute(span, "quote_id", req.QuoteID.String())

	payments, err := s.paymentRepo.FindByQuote(ctx, req.TenantID, req.QuoteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	filtered := make([]billing.Payment, 0, len(payments))
	for _, p := range payments {
		if p.IsCancelled && !req.IncludeCancelled {
			continue
		}
		if req.Method != "" && p.Method != req.Method {
			continue
		}
		if req.From != nil && p.PaymentDate.Before(*req.From) {
			continue
		}
		if req.To != nil && p.PaymentDate.After(*req.To) {
			continue
		}
		filtered = append(filtered, p)
	}

	return filtered, nil
}

// publishEvents publishes the pending domain events of an aggregate.
// Publication is best-effort: the payment is already committed and a bus
// failure must not surface to the caller.
func (s *PaymentService) publishEvents(ctx context.Context, payment *billing.Payment) {
	events := payment.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish payment events",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err))
	}
	payment.ClearDomainEvents()
}
