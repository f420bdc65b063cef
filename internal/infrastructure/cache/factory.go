package cache

import (
	"github.com/redis/go-redis/v9"
	"github.com/restaurant/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis-backed store when a client is given
// and the process-local store otherwise.
func NewIdempotencyStore(client redis.UniversalClient, logger *zap.Logger) shared.IdempotencyStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client != nil {
		logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(client, "")
	}
	logger.Warn("Redis disabled, using in-memory idempotency store; payment retries are only deduplicated per instance")
	return NewInMemoryIdempotencyStore()
}
