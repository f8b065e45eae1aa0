package crm

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvent(t *testing.T) *Event {
	t.Helper()
	e, err := NewEvent(uuid.New(), uuid.New(), "Boda García", EventTypeWedding,
		time.Date(2026, 11, 14, 18, 0, 0, 0, time.UTC), 150)
	require.NoError(t, err)
	return e
}

func TestNewEvent(t *testing.T) {
	tenantID := uuid.New()
	clientID := uuid.New()
	date := time.Date(2026, 11, 14, 18, 0, 0, 0, time.UTC)

	t.Run("creates event in inquiry status", func(t *testing.T) {
		e, err := NewEvent(tenantID, clientID, "Boda García", EventTypeWedding, date, 150)
		require.NoError(t, err)
		assert.Equal(t, EventStatusInquiry, e.Status)
		assert.Equal(t, clientID, e.ClientID)
		assert.Equal(t, 150, e.GuestCount)
		assert.Len(t, e.GetDomainEvents(), 1)
	})

	t.Run("rejects nil client", func(t *testing.T) {
		_, err := NewEvent(tenantID, uuid.Nil, "Boda", EventTypeWedding, date, 10)
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewEvent(tenantID, clientID, "  ", EventTypeWedding, date, 10)
		assert.Error(t, err)
	})

	t.Run("rejects unknown event type", func(t *testing.T) {
		_, err := NewEvent(tenantID, clientID, "Boda", EventType("GALA"), date, 10)
		assert.Error(t, err)
	})

	t.Run("rejects negative guest count", func(t *testing.T) {
		_, err := NewEvent(tenantID, clientID, "Boda", EventTypeWedding, date, -1)
		assert.Error(t, err)
	})
}

func TestEventLifecycle(t *testing.T) {
	t.Run("happy path to completed", func(t *testing.T) {
		e := newTestEvent(t)
		require.NoError(t, e.Confirm())
		require.NoError(t, e.StartLogistics())
		require.NoError(t, e.Start())
		require.NoError(t, e.Complete())
		assert.Equal(t, EventStatusCompleted, e.Status)
		assert.True(t, e.Status.IsTerminal())
	})

	t.Run("cannot skip confirmation", func(t *testing.T) {
		e := newTestEvent(t)
		assert.Error(t, e.StartLogistics())
		assert.Error(t, e.Start())
		assert.Error(t, e.Complete())
	})

	t.Run("cancel from inquiry", func(t *testing.T) {
		e := newTestEvent(t)
		require.NoError(t, e.Cancel("client went elsewhere"))
		assert.Equal(t, EventStatusCancelled, e.Status)
		assert.Equal(t, "client went elsewhere", e.CancelReason)
	})

	t.Run("no show only after confirmation", func(t *testing.T) {
		e := newTestEvent(t)
		assert.Error(t, e.MarkNoShow())

		require.NoError(t, e.Confirm())
		require.NoError(t, e.MarkNoShow())
		assert.Equal(t, EventStatusNoShow, e.Status)
	})

	t.Run("no transitions out of terminal states", func(t *testing.T) {
		e := newTestEvent(t)
		require.NoError(t, e.Cancel("double booking"))
		assert.Error(t, e.Confirm())
		assert.Error(t, e.Cancel("again"))
	})

	t.Run("no show not allowed while in progress", func(t *testing.T) {
		e := newTestEvent(t)
		require.NoError(t, e.Confirm())
		require.NoError(t, e.StartLogistics())
		require.NoError(t, e.Start())
		assert.Error(t, e.MarkNoShow())
	})
}

func TestEventStatusIsCancelledLike(t *testing.T) {
	assert.True(t, EventStatusCancelled.IsCancelledLike())
	assert.True(t, EventStatusNoShow.IsCancelledLike())
	assert.False(t, EventStatusCompleted.IsCancelledLike())
	assert.False(t, EventStatusInquiry.IsCancelledLike())
}

func TestEventReschedule(t *testing.T) {
	e := newTestEvent(t)
	newDate := e.EventDate.AddDate(0, 1, 0)
	require.NoError(t, e.Reschedule(newDate))
	assert.Equal(t, newDate, e.EventDate)

	require.NoError(t, e.Cancel("postponed indefinitely"))
	assert.Error(t, e.Reschedule(newDate.AddDate(0, 1, 0)))
}

func TestEventUpdateDetails(t *testing.T) {
	e := newTestEvent(t)
	require.NoError(t, e.UpdateDetails("Boda García-López", "Hacienda San Miguel", "ceremonia al aire libre", 180))
	assert.Equal(t, "Hacienda San Miguel", e.Venue)
	assert.Equal(t, 180, e.GuestCount)

	assert.Error(t, e.UpdateDetails("", "", "", 180))
	assert.Error(t, e.UpdateDetails("Boda", "", "", -5))
}
