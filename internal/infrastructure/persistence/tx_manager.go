package persistence

import (
	"context"

	"github.com/eventos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// GormTxManager implements shared.TxManager using GORM transactions.
// The transactional *gorm.DB travels in the context so that repositories
// called inside the callback join the same transaction and row locks taken
// with FindByIDForUpdate hold until commit.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a transaction manager backed by the given connection
func NewGormTxManager(db *Database) *GormTxManager {
	return &GormTxManager{db: db.DB}
}

// WithinTransaction runs fn inside a database transaction. Any error returned
// by fn rolls the transaction back.
func (m *GormTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

var _ shared.TxManager = (*GormTxManager)(nil)

// dbFromContext returns the transactional connection carried in ctx, or the
// fallback connection when no transaction is active.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
