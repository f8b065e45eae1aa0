package billing

import (
	"context"
	"testing"
	"time"

	domainbilling "github.com/eventos/backend/internal/domain/billing"
	"github.com/eventos/backend/internal/domain/crm"
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockQuoteRepository is a mock implementation of crm.QuoteRepository
type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Quote), args.Error(1)
}

func (m *MockQuoteRepository) Save(ctx context.Context, quote *crm.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Quote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Quote), args.Error(1)
}

func (m *MockQuoteRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[crm.Quote], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[crm.Quote]), args.Error(1)
}

func (m *MockQuoteRepository) FindByEvent(ctx context.Context, tenantID, eventID uuid.UUID) ([]crm.Quote, error) {
	args := m.Called(ctx, tenantID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.Quote), args.Error(1)
}

func (m *MockQuoteRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*crm.Quote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Quote), args.Error(1)
}

// MockEventRepository is a mock implementation of crm.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Event), args.Error(1)
}

func (m *MockEventRepository) Save(ctx context.Context, event *crm.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Event, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Event), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[crm.Event], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[crm.Event]), args.Error(1)
}

func (m *MockEventRepository) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]crm.Event, error) {
	args := m.Called(ctx, tenantID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.Event), args.Error(1)
}

func (m *MockEventRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]crm.Event, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.Event), args.Error(1)
}

// MockPaymentRepository is a mock implementation of billing.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainbilling.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainbilling.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *domainbilling.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*domainbilling.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainbilling.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByQuote(ctx context.Context, tenantID, quoteID uuid.UUID) ([]domainbilling.Payment, error) {
	args := m.Called(ctx, tenantID, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainbilling.Payment), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[domainbilling.Payment], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[domainbilling.Payment]), args.Error(1)
}

// MockEventBus is a mock implementation of shared.EventPublisher
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// fakeTxManager runs the unit of work without a real transaction
type fakeTxManager struct{}

func (fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type paymentServiceFixture struct {
	service     *PaymentService
	quoteRepo   *MockQuoteRepository
	eventRepo   *MockEventRepository
	paymentRepo *MockPaymentRepository
	eventBus    *MockEventBus
	idemStore   *MockIdempotencyStore

	tenantID uuid.UUID
	quote    *crm.Quote
	event    *crm.Event
}

func newPaymentServiceFixture(t *testing.T, totalPrice float64) *paymentServiceFixture {
	t.Helper()

	tenantID := uuid.New()
	clientID := uuid.New()

	event, err := crm.NewEvent(tenantID, clientID, "Boda García", crm.EventTypeWedding,
		time.Date(2026, 11, 14, 18, 0, 0, 0, time.UTC), 150)
	require.NoError(t, err)
	require.NoError(t, event.Confirm())

	item, err := crm.NewQuoteLineItem("Paquete completo", 1, valueobject.NewMoneyMXNFromFloat(totalPrice))
	require.NoError(t, err)
	quote, err := crm.NewQuote(tenantID, event.ID, []crm.QuoteLineItem{item})
	require.NoError(t, err)
	require.NoError(t, quote.Send(time.Now().AddDate(0, 0, 15)))
	require.NoError(t, quote.Accept())

	f := &paymentServiceFixture{
		quoteRepo:   new(MockQuoteRepository),
		eventRepo:   new(MockEventRepository),
		paymentRepo: new(MockPaymentRepository),
		eventBus:    new(MockEventBus),
		idemStore:   new(MockIdempotencyStore),
		tenantID:    tenantID,
		quote:       quote,
		event:       event,
	}
	f.service = NewPaymentService(f.quoteRepo, f.eventRepo, f.paymentRepo,
		fakeTxManager{}, f.eventBus, f.idemStore, shared.DefaultIdempotencyConfig(), zap.NewNop())
	return f
}

func existingPayment(t *testing.T, tenantID, quoteID uuid.UUID, amount float64) domainbilling.Payment {
	t.Helper()
	p, err := domainbilling.NewPayment(tenantID, quoteID,
		valueobject.NewMoneyMXNFromFloat(amount),
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		domainbilling.PaymentMethodCash, "", "")
	require.NoError(t, err)
	return *p
}

func TestRegisterPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("registers payment within balance", func(t *testing.T) {
		f := newPaymentServiceFixture(t, 10000)
		existing := []domainbilling.Payment{existingPayment(t, f.tenantID, f.quote.ID, 3000)}

		f.quoteRepo.On("FindByIDForUpdate", mock.Anything, f.tenantID, f.quote.ID).Return(f.quote, nil)
		f.eventRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.event.ID).Return(f.event, nil)
		f.paymentRepo.On("FindByQuote", mock.Anything, f.tenantID, f.quote.ID).Return(existing, nil)
		f.paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)
		f.eventBus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.RegisterPayment(ctx, RegisterPaymentRequest{
			TenantID:    f.tenantID,
			QuoteID:     f.quote.ID,
			Amount:      decimal.NewFromInt(7000),
			PaymentDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Method:      domainbilling.PaymentMethodTransfer,
			Reference:   "SPEI-998877",
		})

		require.NoError(t, err)
		assert.Equal(t, "10000", result.Summary.TotalPaid.Amount().String())
		assert.True(t, result.Summary.BalanceDue.IsZero())
		assert.Equal(t, 2, result.Summary.PaymentsCount)
		f.paymentRepo.AssertExpectations(t)
		f.eventBus.AssertExpectations(t)
	})

	t.Run("rejects amount above balance", func(t *testing.T) {
		f := newPaymentServiceFixture(t, 5000)

		f.quoteRepo.On("FindByIDForUpdate", mock.Anything, f.tenantID, f.quote.ID).Return(f.quote, nil)
		f.eventRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.event.ID).Return(f.event, nil)
		f.paymentRepo.On("FindByQuote", mock.Anything, f.tenantID, f.quote.ID).Return([]domainbilling.Payment{}, nil)

		_, err := f.service.RegisterPayment(ctx, RegisterPaymentRequest{
			TenantID:    f.tenantID,
			QuoteID:     f.quote.ID,
			Amount:      decimal.NewFromInt(6000),
			PaymentDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Method:      domainbilling.PaymentMethodCash,
		})

		assert.ErrorIs(t, err, shared.ErrExceedsBalance)
		f.paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects non positive amount before touching storage", func(t *testing.T) {
		f := newPaymentServiceFixture(t, 5000)

		_, err := f.service.RegisterPayment(ctx, RegisterPaymentRequest{
			TenantID: f.tenantID,
			QuoteID:  f.quote.ID,
			Amount:   decimal.Zero,
			Method:   domainbilling.PaymentMethodCash,
		})

		assert.Error(t, err)
		f.quoteRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects quote that is not accepted", func(t *testing.T) {
		f := newPaymentServiceFixture(t, 5000)
		item, err := crm.NewQuoteLineItem("Paquete", 1, valueobject.NewMoneyMXNFromFloat(5000))
		require.NoError(t, err)
		draft, err := crm.NewQuote(f.tenantID, f.event.ID, []crm.QuoteLineItem{item})
		require.NoError(t, err)

		f.quoteRepo.On("FindByIDForUpdate", mock.Anything, f.tenantID, draft.ID).Return(draft, nil)

		_, err = f.service.RegisterPayment(ctx, RegisterPaymentRequest{
			TenantID:    f.tenantID,
			QuoteID:     draft.ID,
			Amount:      decimal.NewFromInt(1000),
			PaymentDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Method:      domainbilling.PaymentMethodCash,
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "QUOTE_NOT_PAYABLE", domainErr.Code)
	})

	t.Run("rejects payment on cancelled event", func(t *testing.T) {
		f := newPaymentServiceFixture(t, 5000)
		require.NoError(t, f.event.Cancel("client cancelled"))

		f.quoteRepo.On("FindByIDForUpdate", mock.Anything, f.tenantID, f.quote.ID).Return(f.quote, nil)
		f.eventRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.event.ID).Return(f.event, nil)

		_, err := f.service.RegisterPayment(ctx, RegisterPaymentRequest{
			TenantID:    f.tenantID,
			QuoteID:     f.quote.ID,
			Amount:      decimal.NewFromInt(1000),
			PaymentDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Method:      domainbilling.PaymentMethodCash,
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EVENT_CANCELLED", domainErr.Code)
	})

	t.Run("missing quote is not found", func(t *testing.T) {
		f := newPaymentServiceFixture(t, 5000)
		unknown := uuid.New()

		f.quoteRepo.On("FindByIDForUpdate", mock.Anything, f.tenantID, unknown).Return(nil, nil)

		_, err := f.service.RegisterPayment(ctx, RegisterPaymentRequest{
			TenantID:    f.tenantID,
			QuoteID:     unknown,
			Amount:      decimal.NewFromInt(1000),
			PaymentDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Method:      domainbilling.PaymentMethodCash,
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "QUOTE_NOT_FOUND", domainErr.Code)
	})

	t.Run("duplicate idempotency key is rejected", func(t *testing.T) {
		f := newPaymentServiceFixture(t, 5000)

		f.idemStore.On("MarkProcessed", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(false, nil)

		_, err := f.service.RegisterPayment(ctx, RegisterPaymentRequest{
			TenantID:       f.tenantID,
			QuoteID:        f.quote.ID,
			Amount:         decimal.NewFromInt(1000),
			PaymentDate:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Method:         domainbilling.PaymentMethodCash,
			IdempotencyKey: "ui-submit-42",
		})

		assert.ErrorIs(t, err, shared.ErrDuplicateRequest)
		f.quoteRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejected registration releases the idempotency key", func(t *testing.T) {
		f := newPaymentServiceFixture(t, 5000)

		key := "payment:" + f.quote.ID.String() + ":ui-submit-44"
		f.idemStore.On("MarkProcessed", mock.Anything, key, mock.Anything).Return(true, nil)
		f.idemStore.On("Release", mock.Anything, key).Return(nil)
		f.quoteRepo.On("FindByIDForUpdate", mock.Anything, f.tenantID, f.quote.ID).Return(f.quote, nil)
		f.eventRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.event.ID).Return(f.event, nil)
		f.paymentRepo.On("FindByQuote", mock.Anything, f.tenantID, f.quote.ID).Return([]domainbilling.Payment{}, nil)

		_, err := f.service.RegisterPayment(ctx, RegisterPaymentRequest{
			TenantID:       f.tenantID,
			QuoteID:        f.quote.ID,
			Amount:         decimal.NewFromInt(6000),
			PaymentDate:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Method:         domainbilling.PaymentMethodCash,
			IdempotencyKey: "ui-submit-44",
		})

		assert.ErrorIs(t, err, shared.ErrExceedsBalance)
		f.idemStore.AssertCalled(t, "Release", mock.Anything, key)
	})

	t.Run("idempotency store outage does not block payment", func(t *testing.T) {
		f := newPaymentServiceFixture(t, 5000)

		f.idemStore.On("MarkProcessed", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
			Return(false, assert.AnError)
		f.quoteRepo.On("FindByIDForUpdate", mock.Anything, f.tenantID, f.quote.ID).Return(f.quote, nil)
		f.eventRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.event.ID).Return(f.event, nil)
		f.paymentRepo.On("FindByQuote", mock.Anything, f.tenantID, f.quote.ID).Return([]domainbilling.Payment{}, nil)
		f.paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)
		f.eventBus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.RegisterPayment(ctx, RegisterPaymentRequest{
			TenantID:       f.tenantID,
			QuoteID:        f.quote.ID,
			Amount:         decimal.NewFromInt(1000),
			PaymentDate:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Method:         domainbilling.PaymentMethodCash,
			IdempotencyKey: "ui-submit-43",
		})

		require.NoError(t, err)
		assert.Equal(t, "1000", result.Summary.TotalPaid.Amount().String())
	})

	t.Run("event bus failure does not surface", func(t *testing.T) {
		f := newPaymentServiceFixture(t, 5000)

		f.quoteRepo.On("FindByIDForUpdate", mock.Anything, f.tenantID, f.quote.ID).Return(f.quote, nil)
		f.eventRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.event.ID).Return(f.event, nil)
		f.paymentRepo.On("FindByQuote", mock.Anything, f.tenantID, f.quote.ID).Return([]domainbilling.Payment{}, nil)
		f.paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)
		f.eventBus.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)

		_, err := f.service.RegisterPayment(ctx, RegisterPaymentRequest{
			TenantID:    f.tenantID,
			QuoteID:     f.quote.ID,
			Amount:      decimal.NewFromInt(1000),
			PaymentDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Method:      domainbilling.PaymentMethodCash,
		})

		assert.NoError(t, err)
	})
}

func TestCancelPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels a live payment", func(t *testing.T) {
		f := newPaymentServiceFixture(t, 5000)
		p := existingPayment(t, f.tenantID, f.quote.ID, 2000)

		f.paymentRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(&p, nil)
		f.paymentRepo.On("Save", mock.Anything, &p).Return(nil)
		f.eventBus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		cancelled, err := f.service.CancelPayment(ctx, f.tenantID, p.ID, "duplicate entry")
		require.NoError(t, err)
		assert.True(t, cancelled.IsCancelled)
		assert.Equal(t, "duplicate entry", cancelled.CancelReason)
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		f := newPaymentServiceFixture(t, 5000)
		p := existingPayment(t, f.tenantID, f.quote.ID, 2000)
		require.NoError(t, p.Cancel("first"))

		f.paymentRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(&p, nil)

		_, err := f.service.CancelPayment(ctx, f.tenantID, p.ID, "second")
		assert.Error(t, err)
		f.paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown payment", func(t *testing.T) {
		f := newPaymentServiceFixture(t, 5000)
		id := uuid.New()

		f.paymentRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, id).Return(nil, nil)

		_, err := f.service.CancelPayment(ctx, f.tenantID, id, "whatever")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PAYMENT_NOT_FOUND", domainErr.Code)
	})
}

func TestListPayments(t *testing.T) {
	ctx := context.Background()
	f := newPaymentServiceFixture(t, 10000)

	cash := existingPayment(t, f.tenantID, f.quote.ID, 1000)
	transfer := existingPayment(t, f.tenantID, f.quote.ID, 2000)
	transfer.Method = domainbilling.PaymentMethodTransfer
	voided := existingPayment(t, f.tenantID, f.quote.ID, 3000)
	require.NoError(t, voided.Cancel("typo"))

	all := []domainbilling.Payment{cash, transfer, voided}
	f.paymentRepo.On("FindByQuote", mock.Anything, f.tenantID, f.quote.ID).Return(all, nil)

	t.Run("hides cancelled by default", func(t *testing.T) {
		got, err := f.service.ListPayments(ctx, ListPaymentsRequest{TenantID: f.tenantID, QuoteID: f.quote.ID})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("includes cancelled on request", func(t *testing.T) {
		got, err := f.service.ListPayments(ctx, ListPaymentsRequest{
			TenantID: f.tenantID, QuoteID: f.quote.ID, IncludeCancelled: true,
		})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("filters by method", func(t *testing.T) {
		got, err := f.service.ListPayments(ctx, ListPaymentsRequest{
			TenantID: f.tenantID, QuoteID: f.quote.ID, Method: domainbilling.PaymentMethodTransfer,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "2000", got[0].Amount.Amount().String())
	})
}
