package crm

import (
	"context"
	"time"

	"github.com/eventos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository is the repository interface for clients
type ClientRepository interface {
	shared.TenantRepository[Client]
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[Client], error)
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Client, error)
}

// EventRepository is the repository interface for events
type EventRepository interface {
	shared.TenantRepository[Event]
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[Event], error)
	FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]Event, error)
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Event, error)
}

// QuoteRepository is the repository interface for quotes
type QuoteRepository interface {
	shared.TenantRepository[Quote]
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[Quote], error)
	FindByEvent(ctx context.Context, tenantID, eventID uuid.UUID) ([]Quote, error)

	// FindByIDForUpdate loads a quote inside a transaction with a row-level
	// lock, so that concurrent payment registrations serialize on the quote
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Quote, error)
}
