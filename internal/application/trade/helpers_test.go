package trade

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/agromart/backend/internal/domain/order"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/cache"
	"github.com/agromart/backend/internal/infrastructure/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// memoryOrderRepository is an in-memory order.Repository. createErr, when
// set, fails every Create.
type memoryOrderRepository struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]order.Order
	creates   int
	createErr error
}

func newMemoryOrderRepository() *memoryOrderRepository {
	return &memoryOrderRepository{orders: make(map[uuid.UUID]order.Order)}
}

func (r *memoryOrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.orders[o.ID]; ok {
		return shared.ErrAlreadyExists
	}
	cp := *o
	cp.Items = order.CopyItems(o.Items)
	r.orders[o.ID] = cp
	return nil
}

func (r *memoryOrderRepository) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &o, nil
}

func (r *memoryOrderRepository) List(_ context.Context, filter shared.Filter) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, _ := filter.Filters["owner_id"].(string)
	var out []order.Order
	for _, o := range r.orders {
		if owner == "" || o.OwnerID == owner {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryOrderRepository) UpdateStatus(_ context.Context, id uuid.UUID, status order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.Status = status
	r.orders[id] = o
	return nil
}

func (r *memoryOrderRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

// MockGateway is a mock payment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ChargeResult), args.Error(1)
}

type recordingMetrics struct {
	mu       sync.Mutex
	created  []string
	checkout []string
}

func (m *recordingMetrics) OrderCreated(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, status)
}

func (m *recordingMetrics) CheckoutSubmitted(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkout = append(m.checkout, result)
}

type fixture struct {
	repo     *memoryOrderRepository
	carts    *cache.CartStore
	sessions *cache.CheckoutSessionStore
	idem     *cache.IdempotencyStore
	metrics  *recordingMetrics
	orders   *OrderService
	cartSvc  *CartService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := cache.NewMemoryKV()
	t.Cleanup(func() { _ = kv.Close() })

	f := &fixture{
		repo:     newMemoryOrderRepository(),
		carts:    cache.NewCartStore(kv, 0),
		sessions: cache.NewCheckoutSessionStore(kv, 0),
		idem:     cache.NewIdempotencyStore(kv),
		metrics:  &recordingMetrics{},
	}
	f.orders = NewOrderService(f.repo, f.idem, 0, f.metrics, zap.NewNop())
	f.cartSvc = NewCartService(f.carts, nil, zap.NewNop())
	return f
}

func (f *fixture) checkout(gateway payment.Gateway) *CheckoutService {
	return NewCheckoutService(f.sessions, f.carts, gateway, f.orders, f.metrics, zap.NewNop())
}

func wheatSeed() order.Item {
	return order.Item{
		Name:     "Wheat Seed",
		Quantity: 2,
		Price:    decimal.NewFromInt(100),
		Discount: decimal.Zero,
	}
}
