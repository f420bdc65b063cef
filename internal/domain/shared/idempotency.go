package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client request keys so a retried request is
// not applied twice.
type IdempotencyStore interface {
	// Claim marks key as in use for ttl.
	// Returns true if the key was newly claimed, false if it was already taken.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees a claimed key, used when the guarded operation failed
	Release(ctx context.Context, key string) error

	Close() error
}

// IdempotencyConfig holds configuration for request key handling
type IdempotencyConfig struct {
	// TTL is how long a key stays claimed after a successful request
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
