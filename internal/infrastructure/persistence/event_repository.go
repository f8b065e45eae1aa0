package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/eventos/backend/internal/domain/crm"
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEventRepository implements crm.EventRepository using GORM
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GormEventRepository
func NewGormEventRepository(db *Database) *GormEventRepository {
	return &GormEventRepository{db: db.DB}
}

func (r *GormEventRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an event by ID
func (r *GormEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Event, error) {
	var model models.EventModel
	if err := r.conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an event by ID for a specific tenant
func (r *GormEventRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Event, error) {
	var model models.EventModel
	if err := r.conn(ctx).First(&model, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClient returns all events for a client ordered by event date
func (r *GormEventRepository) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]crm.Event, error) {
	var eventModels []models.EventModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Order("event_date ASC").
		Find(&eventModels).Error; err != nil {
		return nil, err
	}
	return toDomainEvents(eventModels), nil
}

// FindByDateRange returns events whose date falls inside [from, to]
func (r *GormEventRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]crm.Event, error) {
	var eventModels []models.EventModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND event_date >= ? AND event_date <= ?", tenantID, from, to).
		Order("event_date ASC").
		Find(&eventModels).Error; err != nil {
		return nil, err
	}
	return toDomainEvents(eventModels), nil
}

// List returns a paginated list of events for a tenant
func (r *GormEventRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[crm.Event], error) {
	query := r.conn(ctx).Model(&models.EventModel{}).Where("tenant_id = ?", tenantID)

	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID, ok := filter.Filters["client_id"].(uuid.UUID); ok {
		query = query.Where("client_id = ?", clientID)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[crm.Event]{}, err
	}

	var eventModels []models.EventModel
	if err := applyPagination(query, filter).Find(&eventModels).Error; err != nil {
		return shared.Paginated[crm.Event]{}, err
	}

	return shared.NewPaginated(toDomainEvents(eventModels), total, filter.Page, filter.PageSize), nil
}

// Save creates or updates an event
func (r *GormEventRepository) Save(ctx context.Context, event *crm.Event) error {
	var model models.EventModel
	model.FromDomain(event)
	return r.conn(ctx).Save(&model).Error
}

// Delete removes an event
func (r *GormEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).Delete(&models.EventModel{}, "id = ?", id).Error
}

func toDomainEvents(eventModels []models.EventModel) []crm.Event {
	events := make([]crm.Event, len(eventModels))
	for i, model := range eventModels {
		events[i] = *model.ToDomain()
	}
	return events
}

var _ crm.EventRepository = (*GormEventRepository)(nil)
