package persistence

import (
	"context"
	"errors"

	"github.com/eventos/backend/internal/domain/billing"
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *Database) *GormPaymentRepository {
	return &GormPaymentRepository{db: db.DB}
}

func (r *GormPaymentRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByIDForTenant finds a payment by ID for a specific tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.conn(ctx).First(&model, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByQuote returns every payment registered against a quote, cancelled
// rows included, ordered by payment date then creation time
func (r *GormPaymentRepository) FindByQuote(ctx context.Context, tenantID, quoteID uuid.UUID) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND quote_id = ?", tenantID, quoteID).
		Order("payment_date ASC, created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels)
}

// List returns a paginated list of payments for a tenant
func (r *GormPaymentRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[billing.Payment], error) {
	query := r.conn(ctx).Model(&models.PaymentModel{}).Where("tenant_id = ?", tenantID)

	if method, ok := filter.Filters["method"].(string); ok && method != "" {
		query = query.Where("method = ?", method)
	}
	if quoteID, ok := filter.Filters["quote_id"].(uuid.UUID); ok {
		query = query.Where("quote_id = ?", quoteID)
	}
	if includeCancelled, ok := filter.Filters["include_cancelled"].(bool); !ok || !includeCancelled {
		query = query.Where("is_cancelled = false")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[billing.Payment]{}, err
	}

	var paymentModels []models.PaymentModel
	if err := applyPagination(query, filter).Find(&paymentModels).Error; err != nil {
		return shared.Paginated[billing.Payment]{}, err
	}

	payments, err := toDomainPayments(paymentModels)
	if err != nil {
		return shared.Paginated[billing.Payment]{}, err
	}
	return shared.NewPaginated(payments, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	var model models.PaymentModel
	model.FromDomain(payment)
	return r.conn(ctx).Save(&model).Error
}

// Delete permanently removes a payment row
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).Delete(&models.PaymentModel{}, "id = ?", id).Error
}

func toDomainPayments(paymentModels []models.PaymentModel) ([]billing.Payment, error) {
	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payment, err := model.ToDomain()
		if err != nil {
			return nil, err
		}
		payments[i] = *payment
	}
	return payments, nil
}

var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
