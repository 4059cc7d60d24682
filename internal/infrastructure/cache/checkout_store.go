package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agromart/backend/internal/domain/checkout"
	"github.com/agromart/backend/internal/domain/shared"
)

// DefaultCheckoutTTL bounds how long an abandoned checkout session lives
const DefaultCheckoutTTL = 2 * time.Hour

// CheckoutSessionStore implements checkout.SessionStore on a KV
type CheckoutSessionStore struct {
	kv  KV
	ttl time.Duration
}

// NewCheckoutSessionStore creates a session store. A zero ttl uses
// DefaultCheckoutTTL.
func NewCheckoutSessionStore(kv KV, ttl time.Duration) *CheckoutSessionStore {
	if ttl <= 0 {
		ttl = DefaultCheckoutTTL
	}
	return &CheckoutSessionStore{kv: kv, ttl: ttl}
}

// Get returns the user's session or shared.ErrNotFound
func (s *CheckoutSessionStore) Get(ctx context.Context, userID string) (*checkout.Session, error) {
	data, err := s.kv.Get(ctx, checkoutKeyPrefix+userID)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var session checkout.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &session, nil
}

func (s *CheckoutSessionStore) Save(ctx context.Context, session *checkout.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}
	return s.kv.Set(ctx, checkoutKeyPrefix+session.UserID, data, s.ttl)
}

func (s *CheckoutSessionStore) Delete(ctx context.Context, userID string) error {
	return s.kv.Delete(ctx, checkoutKeyPrefix+userID)
}

var _ checkout.SessionStore = (*CheckoutSessionStore)(nil)
