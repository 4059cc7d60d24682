package shared

import (
	"context"
	"time"
)

// IdempotencyStore deduplicates client submissions carrying an Idempotency-Key.
//
// A key moves through two phases: Reserve claims it for an in-flight request,
// Complete records the resulting resource id. Release drops a reservation
// whose request failed so the client may retry with the same key.
type IdempotencyStore interface {
	// Reserve claims key for ttl. It returns reserved=false when the key is
	// already held, together with the recorded result (empty while in flight).
	Reserve(ctx context.Context, key string, ttl time.Duration) (reserved bool, result string, err error)

	// Complete records the result for a reserved key
	Complete(ctx context.Context, key, result string, ttl time.Duration) error

	// Release removes a reservation
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key (and its result) is remembered.
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	// Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
