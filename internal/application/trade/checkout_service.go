package trade

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/agromart/backend/internal/domain/cart"
	"github.com/agromart/backend/internal/domain/checkout"
	"github.com/agromart/backend/internal/domain/order"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/payment"
	"github.com/agromart/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Checkout submission results reported to Metrics
const (
	SubmitConfirmed = "confirmed"
	SubmitFailed    = "failed"
	SubmitRejected  = "rejected"
)

// SubmitResult is the outcome of a successful submission
type SubmitResult struct {
	Session  *checkout.Session
	Order    *order.Order
	Replayed bool
}

// ErrIdempotencyMismatch is returned when a checkout Idempotency-Key is
// replayed but the cart no longer matches the order it produced
var ErrIdempotencyMismatch = shared.NewDomainError("CONFLICT", "Idempotency-Key reused with a different cart")

// CheckoutService drives a user's checkout session from cart to order
type CheckoutService struct {
	sessions checkout.SessionStore
	carts    cart.Store
	gateway  payment.Gateway
	orders   *OrderService
	metrics  Metrics
	logger   *zap.Logger

	// submitting holds a mutex per user while a submission runs in this process
	submitting sync.Map
}

// NewCheckoutService creates a checkout service
func NewCheckoutService(
	sessions checkout.SessionStore,
	carts cart.Store,
	gateway payment.Gateway,
	orders *OrderService,
	metrics Metrics,
	logger *zap.Logger,
) *CheckoutService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &CheckoutService{
		sessions: sessions,
		carts:    carts,
		gateway:  gateway,
		orders:   orders,
		metrics:  metrics,
		logger:   logger,
	}
}

// Start opens a new session and moves it to SELECTING_METHOD. An empty cart
// is rejected. A session that is mid-submission cannot be restarted.
func (s *CheckoutService) Start(ctx context.Context, userID string) (*checkout.Session, error) {
	existing, err := s.sessions.Get(ctx, userID)
	switch {
	case err == nil && existing.State == checkout.StateSubmitting:
		return nil, checkout.ErrSubmitting
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		return nil, storeError(err)
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	sess := checkout.NewSession(userID)
	if err := sess.Proceed(c.IsEmpty()); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, storeError(err)
	}
	return sess, nil
}

// Get returns the user's active session
func (s *CheckoutService) Get(ctx context.Context, userID string) (*checkout.Session, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "No checkout in progress")
		}
		return nil, storeError(err)
	}
	return sess, nil
}

// SelectMethod records the payment method
func (s *CheckoutService) SelectMethod(ctx context.Context, userID, method string) (*checkout.Session, error) {
	return s.update(ctx, userID, func(sess *checkout.Session) error {
		return sess.SelectMethod(method)
	})
}

// EnterCard records the card details
func (s *CheckoutService) EnterCard(ctx context.Context, userID string, card checkout.CardDetails) (*checkout.Session, error) {
	return s.update(ctx, userID, func(sess *checkout.Session) error {
		return sess.EnterCard(card)
	})
}

// Cancel drops the user's session. The cart is untouched.
func (s *CheckoutService) Cancel(ctx context.Context, userID string) error {
	existing, err := s.sessions.Get(ctx, userID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return nil
	case err != nil:
		return storeError(err)
	case existing.State == checkout.StateSubmitting:
		return checkout.ErrSubmitting
	}
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *CheckoutService) update(ctx context.Context, userID string, fn func(*checkout.Session) error) (*checkout.Session, error) {
	sess, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, storeError(err)
	}
	return sess, nil
}

// Submit charges the card and persists the order built from a snapshot of
// the cart.
//
// The cart is cleared and the session CONFIRMED only after the order write
// succeeds. Any failure leaves the cart as it was and moves the session to
// FAILED, from which the user may retry without re-entering the card.
//
// Idempotency-Keys are scoped to the session. A replayed key confirms the
// stored order only when it matches the current cart (or the cart is already
// empty); otherwise ErrIdempotencyMismatch is returned and the cart is kept.
func (s *CheckoutService) Submit(ctx context.Context, userID, idempotencyKey string) (*SubmitResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "submit", "user_id", userID)
	defer span.End()

	mu, _ := s.submitting.LoadOrStore(userID, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	if !lock.TryLock() {
		s.metrics.CheckoutSubmitted(SubmitRejected)
		return nil, checkout.ErrSubmitting
	}
	defer lock.Unlock()

	sess, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := sess.BeginSubmit(); err != nil {
		s.metrics.CheckoutSubmitted(SubmitRejected)
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, storeError(err)
	}

	result, err := s.orders.Place(ctx, userID, checkoutKey(sess, idempotencyKey), func(ctx context.Context) (*order.Order, error) {
		return s.chargeCart(ctx, sess)
	})
	if err == nil && result.Replayed {
		err = s.matchReplay(ctx, userID, result.Order)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		s.fail(ctx, sess, err)
		return nil, err
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.Warn("Order saved but cart could not be cleared",
			zap.String("user_id", userID),
			zap.String("order_id", result.Order.ID.String()),
			zap.Error(err))
	}
	if err := sess.Confirm(result.Order.ID); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.logger.Warn("Failed to save confirmed checkout session", zap.Error(err))
	}

	s.metrics.CheckoutSubmitted(SubmitConfirmed)
	s.logger.Info("Checkout confirmed",
		zap.String("user_id", userID),
		zap.String("order_id", result.Order.ID.String()),
		zap.Bool("replayed", result.Replayed),
	)
	return &SubmitResult{Session: sess, Order: result.Order, Replayed: result.Replayed}, nil
}

// matchReplay accepts a replayed order only if the cart still holds exactly
// its items or has already been cleared
func (s *CheckoutService) matchReplay(ctx context.Context, userID string, o *order.Order) error {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return storeError(err)
	}
	if c.IsEmpty() || order.SameItems(c.Snapshot(), o.Items) {
		return nil
	}
	s.logger.Warn("Idempotency-Key replayed against a different cart",
		zap.String("user_id", userID),
		zap.String("order_id", o.ID.String()))
	return ErrIdempotencyMismatch
}

// checkoutKey namespaces a client key by checkout session so it never
// collides with keys sent to the order endpoint or used in an earlier checkout
func checkoutKey(sess *checkout.Session, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return "checkout:" + sess.ID.String() + ":" + key
}

// chargeCart snapshots the cart into a new order and charges it
func (s *CheckoutService) chargeCart(ctx context.Context, sess *checkout.Session) (*order.Order, error) {
	c, err := s.carts.Get(ctx, sess.UserID)
	if err != nil {
		return nil, storeError(err)
	}
	if c.IsEmpty() {
		return nil, checkout.ErrEmptyCart
	}

	o, err := order.NewOrder(sess.UserID, c.Snapshot(), order.StatusPending)
	if err != nil {
		return nil, err
	}

	charge, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		OrderID:   o.ID.String(),
		Amount:    o.Total,
		Method:    string(sess.Method),
		CardLast4: sess.Card.Last4,
	})
	if err != nil {
		var de *shared.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, shared.WrapDomainError("PAYMENT_FAILED", "Payment could not be processed", err)
	}
	o.Status = charge.Status
	o.PaymentRef = charge.Reference
	return o, nil
}

func (s *CheckoutService) fail(ctx context.Context, sess *checkout.Session, cause error) {
	s.metrics.CheckoutSubmitted(SubmitFailed)
	if err := sess.Fail(cause); err != nil {
		return
	}
	if err := s.sessions.Save(context.WithoutCancel(ctx), sess); err != nil {
		s.logger.Error("Failed to save failed checkout session", zap.Error(err))
	}
	s.logger.Warn("Checkout failed",
		zap.String("user_id", sess.UserID),
		zap.Int("attempt", sess.Attempts),
		zap.Error(cause))
}

func storeError(err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return shared.WrapDomainError("INTERNAL_ERROR", "Checkout storage is unavailable", err)
}
