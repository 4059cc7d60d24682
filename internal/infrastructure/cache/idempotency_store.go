package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agromart/backend/internal/domain/shared"
)

// IdempotencyStore implements shared.IdempotencyStore on a KV. A reserved
// key holds an empty value until Complete stores the result.
type IdempotencyStore struct {
	kv KV
}

// NewIdempotencyStore creates a store over kv
func NewIdempotencyStore(kv KV) *IdempotencyStore {
	return &IdempotencyStore{kv: kv}
}

func (s *IdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	if key == "" {
		return false, "", shared.NewDomainError("INVALID_IDEMPOTENCY_KEY", "Idempotency key cannot be empty")
	}
	k := idempotencyKeyPrefix + key

	ok, err := s.kv.SetNX(ctx, k, nil, ttl)
	if err != nil {
		return false, "", fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return true, "", nil
	}

	result, err := s.kv.Get(ctx, k)
	if errors.Is(err, ErrKeyNotFound) {
		// expired between the two calls; let the caller retry
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("failed to read idempotency key: %w", err)
	}
	return false, string(result), nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key, result string, ttl time.Duration) error {
	if err := s.kv.Set(ctx, idempotencyKeyPrefix+key, []byte(result), ttl); err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, idempotencyKeyPrefix+key)
}

func (s *IdempotencyStore) Close() error {
	return s.kv.Close()
}

var _ shared.IdempotencyStore = (*IdempotencyStore)(nil)
