package notification

import (
	"context"
	"fmt"

	"github.com/eventos/backend/internal/domain/billing"
	"github.com/eventos/backend/internal/domain/crm"
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EmailSender delivers an email through a provider API
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// WhatsAppSender delivers a WhatsApp message through a provider API
type WhatsAppSender interface {
	Send(ctx context.Context, phone, body string) error
}

// adminNotifyPercent: payments above this share of the quote total also ping
// the internal admin channel
var adminNotifyPercent = decimal.NewFromInt(10)

// Dispatcher reacts to payment events by sending client and admin
// notifications. Every send is best-effort: a provider failure is logged and
// swallowed so it can never affect the payment that triggered it.
type Dispatcher struct {
	quoteRepo  crm.QuoteRepository
	eventRepo  crm.EventRepository
	clientRepo crm.ClientRepository
	email      EmailSender
	whatsapp   WhatsAppSender
	adminPhone string
	logger     *zap.Logger
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(
	quoteRepo crm.QuoteRepository,
	eventRepo crm.EventRepository,
	clientRepo crm.ClientRepository,
	email EmailSender,
	whatsapp WhatsAppSender,
	adminPhone string,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		quoteRepo:  quoteRepo,
		eventRepo:  eventRepo,
		clientRepo: clientRepo,
		email:      email,
		whatsapp:   whatsapp,
		adminPhone: adminPhone,
		logger:     logger,
	}
}

// EventTypes returns the event types the dispatcher subscribes to
func (d *Dispatcher) EventTypes() []string {
	return []string{billing.PaymentRegisteredEventName}
}

// Handle processes a payment registered event. It always returns nil:
// notification failures must never propagate back to the bus.
func (d *Dispatcher) Handle(ctx context.Context, event shared.DomainEvent) error {
	registered, ok := event.(*billing.PaymentRegisteredEvent)
	if !ok {
		return nil
	}

	client, err := d.resolveClient(ctx, registered)
	if err != nil {
		d.logger.Warn("Cannot resolve client for payment notification",
			zap.String("payment_id", registered.AggregateID().String()),
			zap.Error(err))
		return nil
	}

	d.notifyClient(ctx, client, registered)
	d.notifyAdmin(ctx, registered)

	return nil
}

func (d *Dispatcher) resolveClient(ctx context.Context, registered *billing.PaymentRegisteredEvent) (*crm.Client, error) {
	quoteID, err := uuid.Parse(registered.QuoteID)
	if err != nil {
		return nil, fmt.Errorf("bad quote id in event: %w", err)
	}

	quote, err := d.quoteRepo.FindByIDForTenant(ctx, registered.TenantID(), quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quote: %w", err)
	}
	if quote == nil {
		return nil, fmt.Errorf("quote %s not found", quoteID)
	}

	event, err := d.eventRepo.FindByIDForTenant(ctx, registered.TenantID(), quote.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("event %s not found", quote.EventID)
	}

	client, err := d.clientRepo.FindByIDForTenant(ctx, registered.TenantID(), event.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("client %s not found", event.ClientID)
	}

	return client, nil
}

func (d *Dispatcher) notifyClient(ctx context.Context, client *crm.Client, registered *billing.PaymentRegisteredEvent) {
	body := fmt.Sprintf(
		"Hola %s, recibimos tu pago de $%s %s. Saldo pendiente: $%s. ¡Gracias!",
		client.Name, registered.Amount, registered.Currency, registered.BalanceDue)

	if client.CanReceiveEmail() {
		if err := d.email.Send(ctx, client.Email, "Pago recibido", body); err != nil {
			d.logger.Warn("Payment email failed",
				zap.String("client_id", client.ID.String()),
				zap.Error(err))
		}
	}

	if client.CanReceiveWhatsApp() {
		if err := d.whatsapp.Send(ctx, client.Phone, body); err != nil {
			d.logger.Warn("Payment WhatsApp failed",
				zap.String("client_id", client.ID.String()),
				zap.Error(err))
		}
	}
}

func (d *Dispatcher) notifyAdmin(ctx context.Context, registered *billing.PaymentRegisteredEvent) {
	if d.adminPhone == "" {
		return
	}

	amount, err := decimal.NewFromString(registered.Amount)
	if err != nil {
		return
	}
	total, err := decimal.NewFromString(registered.TotalPrice)
	if err != nil || total.IsZero() {
		return
	}

	threshold := total.Mul(adminNotifyPercent).Div(decimal.NewFromInt(100))
	if !amount.GreaterThan(threshold) {
		return
	}

	body := fmt.Sprintf("Pago importante: $%s %s (%s) sobre cotización %s, saldo $%s",
		registered.Amount, registered.Currency, registered.Method,
		registered.QuoteID, registered.BalanceDue)
	if err := d.whatsapp.Send(ctx, d.adminPhone, body); err != nil {
		d.logger.Warn("Admin WhatsApp failed",
			zap.String("quote_id", registered.QuoteID),
			zap.Error(err))
	}
}
