package crm

import (
	"context"
	"testing"
	"time"

	"github.com/eventos/backend/internal/domain/billing"
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

// MockEventBus is a mock implementation of shared.EventPublisher
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockFinancialResolver is a mock implementation of FinancialStatusResolver
type MockFinancialResolver struct {
	mock.Mock
}

func (m *MockFinancialResolver) FinancialStatusForEvent(ctx context.Context, tenantID uuid.UUID, event *crm.Event) (billing.FinancialStatus, error) {
	args := m.Called(ctx, tenantID, event)
	return args.Get(0).(billing.FinancialStatus), args.Error(1)
}

func confirmedEvent(t *testing.T, tenantID uuid.UUID) *crm.Event {
	t.Helper()
	e, err := crm.NewEvent(tenantID, uuid.New(), "XV Años Valeria", crm.EventTypeXVAnos,
		time.Date(2026, 10, 3, 19, 0, 0, 0, time.UTC), 120)
	require.NoError(t, err)
	require.NoError(t, e.Confirm())
	return e
}

func TestCreateQuote(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	lines := []LineItemInput{
		{Description: "Salón y mobiliario", Quantity: 1, UnitPrice: decimal.NewFromInt(25000)},
		{Description: "Cena tres tiempos", Quantity: 120, UnitPrice: decimal.NewFromInt(420)},
	}

	t.Run("drafts quote with computed total", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		eventRepo := new(MockEventRepository)
		bus := new(MockEventBus)
		event := confirmedEvent(t, tenantID)

		eventRepo.On("FindByIDForTenant", mock.Anything, tenantID, event.ID).Return(event, nil)
		quoteRepo.On("Save", mock.Anything, mock.AnythingOfType("*crm.Quote")).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		service := NewQuoteService(quoteRepo, eventRepo, bus, zap.NewNop())
		quote, err := service.CreateQuote(ctx, CreateQuoteRequest{
			TenantID: tenantID,
			EventID:  event.ID,
			Items:    lines,
		})

		require.NoError(t, err)
		assert.Equal(t, crm.QuoteStatusDraft, quote.Status)
		assert.Equal(t, "75400", quote.TotalPrice.Amount().String())
		quoteRepo.AssertExpectations(t)
	})

	t.Run("rejects quote on closed event", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		eventRepo := new(MockEventRepository)
		event := confirmedEvent(t, tenantID)
		require.NoError(t, event.Cancel("venue flooded"))

		eventRepo.On("FindByIDForTenant", mock.Anything, tenantID, event.ID).Return(event, nil)

		service := NewQuoteService(quoteRepo, eventRepo, new(MockEventBus), zap.NewNop())
		_, err := service.CreateQuote(ctx, CreateQuoteRequest{
			TenantID: tenantID,
			EventID:  event.ID,
			Items:    lines,
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EVENT_CLOSED", domainErr.Code)
	})

	t.Run("rejects invalid line item", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		eventRepo := new(MockEventRepository)
		event := confirmedEvent(t, tenantID)

		eventRepo.On("FindByIDForTenant", mock.Anything, tenantID, event.ID).Return(event, nil)

		service := NewQuoteService(quoteRepo, eventRepo, new(MockEventBus), zap.NewNop())
		_, err := service.CreateQuote(ctx, CreateQuoteRequest{
			TenantID: tenantID,
			EventID:  event.ID,
			Items:    []LineItemInput{{Description: "DJ", Quantity: 0, UnitPrice: decimal.NewFromInt(100)}},
		})

		assert.Error(t, err)
		quoteRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestQuoteTransitions(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	newDraft := func(t *testing.T) *crm.Quote {
		item, err := crm.NewQuoteLineItem("Paquete", 1, newMXN(5000))
		require.NoError(t, err)
		q, err := crm.NewQuote(tenantID, uuid.New(), []crm.QuoteLineItem{item})
		require.NoError(t, err)
		q.ClearDomainEvents()
		return q
	}

	t.Run("send then accept", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		bus := new(MockEventBus)
		quote := newDraft(t)

		quoteRepo.On("FindByIDForTenant", mock.Anything, tenantID, quote.ID).Return(quote, nil)
		quoteRepo.On("Save", mock.Anything, quote).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything).Return(nil)

		service := NewQuoteService(quoteRepo, new(MockEventRepository), bus, zap.NewNop())

		sent, err := service.SendQuote(ctx, tenantID, quote.ID, time.Now().AddDate(0, 0, 15))
		require.NoError(t, err)
		assert.Equal(t, crm.QuoteStatusSent, sent.Status)

		accepted, err := service.AcceptQuote(ctx, tenantID, quote.ID)
		require.NoError(t, err)
		assert.True(t, accepted.CanAcceptPayments())
	})

	t.Run("accepting a draft fails", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		quote := newDraft(t)

		quoteRepo.On("FindByIDForTenant", mock.Anything, tenantID, quote.ID).Return(quote, nil)

		service := NewQuoteService(quoteRepo, new(MockEventRepository), new(MockEventBus), zap.NewNop())
		_, err := service.AcceptQuote(ctx, tenantID, quote.ID)
		assert.Error(t, err)
		quoteRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCalendar(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)

	t.Run("annotates events with financial status", func(t *testing.T) {
		eventRepo := new(MockEventRepository)
		resolver := new(MockFinancialResolver)
		event := confirmedEvent(t, tenantID)
		event.ClearDomainEvents()

		eventRepo.On("FindByDateRange", mock.Anything, tenantID, from, to).Return([]crm.Event{*event}, nil)
		resolver.On("FinancialStatusForEvent", mock.Anything, tenantID, mock.AnythingOfType("*crm.Event")).
			Return(billing.FinancialStatusPartial, nil)

		service := NewEventService(eventRepo, nil, new(MockEventBus), resolver, zap.NewNop())
		entries, err := service.Calendar(ctx, tenantID, from, to)

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, billing.FinancialStatusPartial, entries[0].FinancialStatus)
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		service := NewEventService(new(MockEventRepository), nil, new(MockEventBus), new(MockFinancialResolver), zap.NewNop())
		_, err := service.Calendar(ctx, tenantID, to, from)
		assert.Error(t, err)
	})
}

func newMXN(amount int64) valueobject.Money {
	return valueobject.NewMoneyMXN(decimal.NewFromInt(amount))
}
