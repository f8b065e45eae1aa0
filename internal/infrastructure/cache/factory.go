package cache

import (
	"fmt"

	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore creates the idempotency store selected by configuration.
// Backend "memory" always uses the in-process store. Backend "redis" tries
// Redis first and falls back to in-memory with a warning, so that a Redis
// outage never prevents the API from accepting payments.
func NewIdempotencyStore(cfg *config.Config, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.Idempotency.Backend {
	case "memory":
		logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	case "redis":
		store, err := NewRedisIdempotencyStore(RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err == nil {
			logger.Info("using Redis idempotency store")
			return store, nil
		}
		logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
			"Duplicate payment submissions will only be caught within this instance.",
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Idempotency.Backend)
	}
}
