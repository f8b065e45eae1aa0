package persistence

import (
	"context"
	"errors"

	"github.com/eventos/backend/internal/domain/crm"
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements crm.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *Database) *GormClientRepository {
	return &GormClientRepository{db: db.DB}
}

func (r *GormClientRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a client by ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Client, error) {
	var model models.ClientModel
	if err := r.conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a client by ID for a specific tenant
func (r *GormClientRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Client, error) {
	var model models.ClientModel
	if err := r.conn(ctx).First(&model, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a client by email for a tenant
func (r *GormClientRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*crm.Client, error) {
	var model models.ClientModel
	if err := r.conn(ctx).First(&model, "email = ? AND tenant_id = ?", email, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a paginated list of clients for a tenant
func (r *GormClientRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[crm.Client], error) {
	query := r.conn(ctx).Model(&models.ClientModel{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[crm.Client]{}, err
	}

	var clientModels []models.ClientModel
	if err := applyPagination(query, filter).Find(&clientModels).Error; err != nil {
		return shared.Paginated[crm.Client]{}, err
	}

	clients := make([]crm.Client, len(clientModels))
	for i, model := range clientModels {
		clients[i] = *model.ToDomain()
	}
	return shared.NewPaginated(clients, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *crm.Client) error {
	var model models.ClientModel
	model.FromDomain(client)
	return r.conn(ctx).Save(&model).Error
}

// Delete removes a client
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).Delete(&models.ClientModel{}, "id = ?", id).Error
}

var _ crm.ClientRepository = (*GormClientRepository)(nil)
