// Package cache holds the ephemeral state of the storefront: carts, checkout
// sessions and idempotency keys. Every store is written against KV, which is
// backed by Redis in deployments and by an in-process map otherwise.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by KV.Get for absent or expired keys
var ErrKeyNotFound = errors.New("cache: key not found")

// KV is a minimal expiring key-value store. A ttl of zero means no expiry.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX sets key only if it is absent and reports whether it did
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key prefixes
const (
	keyPrefix            = "agromart:"
	cartKeyPrefix        = keyPrefix + "cart:"
	checkoutKeyPrefix    = keyPrefix + "checkout:"
	idempotencyKeyPrefix = keyPrefix + "idempotency:"
)
