package persistence

import (
	"github.com/eventos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// orderColumns whitelists the columns callers may sort by
var orderColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"status":       true,
	"event_date":   true,
	"payment_date": true,
}

// applyPagination applies ordering, limit and offset from the filter.
// Unknown order columns fall back to created_at to keep the query safe.
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if !orderColumns[orderBy] {
		orderBy = "created_at"
	}
	dir := "DESC"
	if filter.OrderDir == "asc" {
		dir = "ASC"
	}
	query = query.Order(orderBy + " " + dir)

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}
	return query
}
