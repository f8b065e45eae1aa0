package billing

import (
	"context"

	"github.com/eventos/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentRepository is the repository interface for payments
type PaymentRepository interface {
	shared.TenantRepository[Payment]

	// FindByQuote returns all payments for a quote, cancelled ones included,
	// ordered by payment date then creation time
	FindByQuote(ctx context.Context, tenantID, quoteID uuid.UUID) ([]Payment, error)

	// List returns a paginated view of payments for a tenant
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[Payment], error)
}
