package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agromart/backend/internal/domain/cart"
)

// DefaultCartTTL is how long an untouched cart is kept
const DefaultCartTTL = 30 * 24 * time.Hour

// CartStore implements cart.Store as JSON values on a KV
type CartStore struct {
	kv  KV
	ttl time.Duration
}

// NewCartStore creates a cart store. A zero ttl uses DefaultCartTTL.
func NewCartStore(kv KV, ttl time.Duration) *CartStore {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &CartStore{kv: kv, ttl: ttl}
}

func (s *CartStore) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	data, err := s.kv.Get(ctx, cartKeyPrefix+userID)
	if errors.Is(err, ErrKeyNotFound) {
		return cart.New(userID), nil
	}
	if err != nil {
		return nil, err
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	c.UserID = userID
	return &c, nil
}

func (s *CartStore) Save(ctx context.Context, c *cart.Cart) error {
	c.UpdatedAt = time.Now()
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return s.kv.Set(ctx, cartKeyPrefix+c.UserID, data, s.ttl)
}

func (s *CartStore) Clear(ctx context.Context, userID string) error {
	return s.kv.Delete(ctx, cartKeyPrefix+userID)
}

var _ cart.Store = (*CartStore)(nil)
