package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/eventos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	mu       sync.Mutex
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	h.received = append(h.received, evt)
	h.mu.Unlock()
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func newTestEvent(eventType string) shared.DomainEvent {
	evt := shared.NewBaseDomainEvent(eventType, "Payment", uuid.New(), uuid.New())
	return &evt
}

func newStartedBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	return bus
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to matching handler", func(t *testing.T) {
		bus := newStartedBus(t)
		handler := &recordingHandler{types: []string{"billing.payment.registered"}}
		bus.Subscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent("billing.payment.registered"))

		require.NoError(t, err)
		assert.Equal(t, 1, handler.count())
	})

	t.Run("skips non-matching handler", func(t *testing.T) {
		bus := newStartedBus(t)
		handler := &recordingHandler{types: []string{"billing.payment.registered"}}
		bus.Subscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent("crm.client.created"))

		require.NoError(t, err)
		assert.Equal(t, 0, handler.count())
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := newStartedBus(t)
		handler := &recordingHandler{}
		bus.Subscribe(handler)

		err := bus.Publish(context.Background(),
			newTestEvent("billing.payment.registered"),
			newTestEvent("crm.client.created"),
		)

		require.NoError(t, err)
		assert.Equal(t, 2, handler.count())
	})

	t.Run("handler error does not block other handlers", func(t *testing.T) {
		bus := newStartedBus(t)
		failing := &recordingHandler{types: []string{"billing.payment.registered"}, err: errors.New("smtp down")}
		healthy := &recordingHandler{types: []string{"billing.payment.registered"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(context.Background(), newTestEvent("billing.payment.registered"))

		require.NoError(t, err)
		assert.Equal(t, 1, healthy.count())
	})

	t.Run("handler panic is contained", func(t *testing.T) {
		bus := newStartedBus(t)
		panicking := &recordingHandler{types: []string{"billing.payment.registered"}, panics: true}
		healthy := &recordingHandler{types: []string{"billing.payment.registered"}}
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		assert.NotPanics(t, func() {
			err := bus.Publish(context.Background(), newTestEvent("billing.payment.registered"))
			require.NoError(t, err)
		})
		assert.Equal(t, 1, healthy.count())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	t.Run("unsubscribed handler stops receiving", func(t *testing.T) {
		bus := newStartedBus(t)
		handler := &recordingHandler{types: []string{"billing.payment.registered"}}
		bus.Subscribe(handler)
		bus.Unsubscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent("billing.payment.registered"))

		require.NoError(t, err)
		assert.Equal(t, 0, handler.count())
	})
}

func TestInMemoryEventBus_Lifecycle(t *testing.T) {
	t.Run("start and stop", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		assert.NoError(t, bus.Start(context.Background()))
		assert.NoError(t, bus.Stop(context.Background()))
	})

	t.Run("publish before start drops the event", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"billing.payment.registered"}}
		bus.Subscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent("billing.payment.registered"))

		require.NoError(t, err)
		assert.Equal(t, 0, handler.count())
	})

	t.Run("publish after stop drops the event", func(t *testing.T) {
		bus := newStartedBus(t)
		handler := &recordingHandler{types: []string{"billing.payment.registered"}}
		bus.Subscribe(handler)
		require.NoError(t, bus.Stop(context.Background()))

		err := bus.Publish(context.Background(), newTestEvent("billing.payment.registered"))

		require.NoError(t, err)
		assert.Equal(t, 0, handler.count())
	})
}
