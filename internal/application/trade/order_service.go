// Package trade orchestrates the cart, checkout and order use cases.
package trade

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agromart/backend/internal/domain/order"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDuplicateSubmission is returned while a request with the same
// Idempotency-Key is still being processed
var ErrDuplicateSubmission = shared.NewDomainError("CONFLICT", "A request with this Idempotency-Key is already in progress")

// CreateOrderInput is the input for a direct order creation
type CreateOrderInput struct {
	OwnerID        string
	Items          []order.Item
	PaymentRef     string
	IdempotencyKey string
}

// PlaceResult is a persisted order. Replayed is set when the order was
// created by an earlier request with the same Idempotency-Key.
type PlaceResult struct {
	Order    *order.Order
	Replayed bool
}

// OrderService creates and queries orders
type OrderService struct {
	repo    order.Repository
	idem    shared.IdempotencyStore
	idemTTL time.Duration
	metrics Metrics
	logger  *zap.Logger
}

// NewOrderService creates an order service. idem may be nil, in which case
// Idempotency-Keys are ignored.
func NewOrderService(repo order.Repository, idem shared.IdempotencyStore, idemTTL time.Duration, metrics Metrics, logger *zap.Logger) *OrderService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if idemTTL <= 0 {
		idemTTL = shared.DefaultIdempotencyConfig().TTL
	}
	return &OrderService{
		repo:    repo,
		idem:    idem,
		idemTTL: idemTTL,
		metrics: metrics,
		logger:  logger,
	}
}

// Create validates the items and persists a new PENDING order
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*PlaceResult, error) {
	if len(in.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	return s.Place(ctx, in.OwnerID, in.IdempotencyKey, func(ctx context.Context) (*order.Order, error) {
		o, err := order.NewOrder(in.OwnerID, in.Items, order.DefaultStatus)
		if err != nil {
			return nil, err
		}
		o.PaymentRef = in.PaymentRef
		return o, nil
	})
}

// Place runs build and writes the resulting order in one repository call.
//
// With an idempotency key the key is reserved before build runs, so build
// (which may charge a card) executes at most once per key. A replay returns
// the stored order; a concurrent duplicate gets ErrDuplicateSubmission. A
// failed build or write releases the key so the client can retry.
func (s *OrderService) Place(ctx context.Context, ownerID, idempotencyKey string, build func(context.Context) (*order.Order, error)) (*PlaceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "place", "owner_id", ownerID)
	defer span.End()

	key := scopedKey(ownerID, idempotencyKey)
	if key != "" && s.idem != nil {
		reserved, result, err := s.idem.Reserve(ctx, key, s.idemTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to check Idempotency-Key", err)
		}
		if !reserved {
			return s.replay(ctx, ownerID, result)
		}
	}

	o, err := build(ctx)
	if err == nil {
		err = s.repo.Create(ctx, o)
		if err != nil {
			s.logger.Error("Failed to persist order",
				zap.String("owner_id", ownerID),
				zap.Error(err))
			err = persistError(err, "Failed to save order")
		}
	}
	if err != nil {
		telemetry.RecordError(span, err)
		s.release(ctx, key)
		return nil, err
	}

	if key != "" && s.idem != nil {
		if cerr := s.idem.Complete(ctx, key, o.ID.String(), s.idemTTL); cerr != nil {
			s.logger.Warn("Failed to record Idempotency-Key result",
				zap.String("order_id", o.ID.String()),
				zap.Error(cerr))
		}
	}

	s.metrics.OrderCreated(string(o.Status))
	telemetry.SetAttributes(span, "order_id", o.ID.String(), "status", string(o.Status))
	s.logger.Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("owner_id", o.OwnerID),
		zap.String("status", string(o.Status)),
		zap.String("total", o.Total.StringFixed(2)),
		zap.Int("items", len(o.Items)),
	)
	return &PlaceResult{Order: o}, nil
}

func (s *OrderService) replay(ctx context.Context, ownerID, result string) (*PlaceResult, error) {
	if result == "" {
		return nil, ErrDuplicateSubmission
	}
	id, err := uuid.Parse(result)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Stored Idempotency-Key result is invalid", err)
	}
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != ownerID {
		return nil, shared.ErrNotFound
	}
	s.logger.Info("Replayed order for Idempotency-Key", zap.String("order_id", o.ID.String()))
	return &PlaceResult{Order: o, Replayed: true}, nil
}

func (s *OrderService) release(ctx context.Context, key string) {
	if key == "" || s.idem == nil {
		return
	}
	if err := s.idem.Release(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("Failed to release Idempotency-Key", zap.Error(err))
	}
}

// List returns the owner's orders, newest first
func (s *OrderService) List(ctx context.Context, ownerID string, filter shared.Filter) ([]order.Order, error) {
	if filter.Filters == nil {
		filter.Filters = make(map[string]any)
	}
	filter.Filters["owner_id"] = ownerID
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, persistError(err, "Failed to load orders")
	}
	if orders == nil {
		orders = []order.Order{}
	}
	return orders, nil
}

// Get returns one of the owner's orders
func (s *OrderService) Get(ctx context.Context, ownerID string, id uuid.UUID) (*order.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != ownerID {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

// UpdateStatus moves one of the owner's orders to a new status
func (s *OrderService) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, rawStatus string) (*order.Order, error) {
	status, ok := order.ParseStatus(rawStatus)
	if !ok {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invalid order status: "+rawStatus)
	}
	o, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if err := o.TransitionTo(status); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, o.ID, o.Status); err != nil {
		return nil, persistError(err, "Failed to update order")
	}
	s.logger.Info("Order status changed",
		zap.String("order_id", o.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(o.Status)),
	)
	return o, nil
}

// scopedKey namespaces a client key by owner so keys never collide across users
func scopedKey(ownerID, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return ownerID + ":" + key
}

// persistError keeps domain errors and wraps storage failures as internal
func persistError(err error, message string) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return shared.WrapDomainError("INTERNAL_ERROR", message, err)
}
