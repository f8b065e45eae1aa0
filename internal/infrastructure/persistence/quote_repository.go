package persistence

import (
	"context"
	"errors"

	"github.com/eventos/backend/internal/domain/crm"
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormQuoteRepository implements crm.QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *Database) *GormQuoteRepository {
	return &GormQuoteRepository{db: db.DB}
}

func (r *GormQuoteRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a quote by ID
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Quote, error) {
	var model models.QuoteModel
	if err := r.conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByIDForTenant finds a quote by ID for a specific tenant
func (r *GormQuoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Quote, error) {
	var model models.QuoteModel
	if err := r.conn(ctx).First(&model, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByIDForUpdate loads a quote with a FOR UPDATE row lock. Callers must
// run inside a transaction or the lock is released immediately.
func (r *GormQuoteRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*crm.Quote, error) {
	var model models.QuoteModel
	if err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByEvent returns all quotes attached to an event, newest first
func (r *GormQuoteRepository) FindByEvent(ctx context.Context, tenantID, eventID uuid.UUID) ([]crm.Quote, error) {
	var quoteModels []models.QuoteModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND event_id = ?", tenantID, eventID).
		Order("created_at DESC").
		Find(&quoteModels).Error; err != nil {
		return nil, err
	}
	return toDomainQuotes(quoteModels)
}

// List returns a paginated list of quotes for a tenant
func (r *GormQuoteRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[crm.Quote], error) {
	query := r.conn(ctx).Model(&models.QuoteModel{}).Where("tenant_id = ?", tenantID)

	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if eventID, ok := filter.Filters["event_id"].(uuid.UUID); ok {
		query = query.Where("event_id = ?", eventID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[crm.Quote]{}, err
	}

	var quoteModels []models.QuoteModel
	if err := applyPagination(query, filter).Find(&quoteModels).Error; err != nil {
		return shared.Paginated[crm.Quote]{}, err
	}

	quotes, err := toDomainQuotes(quoteModels)
	if err != nil {
		return shared.Paginated[crm.Quote]{}, err
	}
	return shared.NewPaginated(quotes, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a quote
func (r *GormQuoteRepository) Save(ctx context.Context, quote *crm.Quote) error {
	var model models.QuoteModel
	model.FromDomain(quote)
	return r.conn(ctx).Save(&model).Error
}

// Delete removes a quote
func (r *GormQuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).Delete(&models.QuoteModel{}, "id = ?", id).Error
}

func toDomainQuotes(quoteModels []models.QuoteModel) ([]crm.Quote, error) {
	quotes := make([]crm.Quote, len(quoteModels))
	for i, model := range quoteModels {
		quote, err := model.ToDomain()
		if err != nil {
			return nil, err
		}
		quotes[i] = *quote
	}
	return quotes, nil
}

var _ crm.QuoteRepository = (*GormQuoteRepository)(nil)
