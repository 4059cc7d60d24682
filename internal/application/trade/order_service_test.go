package trade

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/agromart/backend/internal/domain/order"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.orders.Create(ctx, CreateOrderInput{
		OwnerID: "user-1",
		Items:   []order.Item{wheatSeed()},
	})
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, order.StatusPending, res.Order.Status)
	assert.True(t, decimal.NewFromInt(200).Equal(res.Order.Total))
	assert.Equal(t, 1, f.repo.count())
	assert.Equal(t, []string{"PENDING"}, f.metrics.created)
}

func TestOrderService_Create_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orders.Create(ctx, CreateOrderInput{OwnerID: "user-1"})
	assert.ErrorContains(t, err, "at least one item")

	bad := wheatSeed()
	bad.Quantity = 0
	_, err = f.orders.Create(ctx, CreateOrderInput{OwnerID: "user-1", Items: []order.Item{bad}})
	assert.Error(t, err)
	assert.Equal(t, 0, f.repo.count())
}

func TestOrderService_Create_PersistenceFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.repo.createErr = errors.New("connection reset")

	in := CreateOrderInput{OwnerID: "user-1", Items: []order.Item{wheatSeed()}, IdempotencyKey: "key-1"}
	_, err := f.orders.Create(ctx, in)
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)

	// The key was released, so the same key succeeds once storage recovers
	f.repo.createErr = nil
	res, err := f.orders.Create(ctx, in)
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, 1, f.repo.count())
}

func TestOrderService_Create_IdempotentReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := CreateOrderInput{OwnerID: "user-1", Items: []order.Item{wheatSeed()}, IdempotencyKey: "abc"}

	first, err := f.orders.Create(ctx, in)
	require.NoError(t, err)
	second, err := f.orders.Create(ctx, in)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, 1, f.repo.count())

	// Keys are scoped per owner
	other, err := f.orders.Create(ctx, CreateOrderInput{OwnerID: "user-2", Items: []order.Item{wheatSeed()}, IdempotencyKey: "abc"})
	require.NoError(t, err)
	assert.False(t, other.Replayed)
	assert.Equal(t, 2, f.repo.count())
}

func TestOrderService_Place_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.orders.Place(ctx, "user-1", "dup", func(context.Context) (*order.Order, error) {
			close(started)
			<-release
			return order.NewOrder("user-1", []order.Item{wheatSeed()}, "")
		})
		assert.NoError(t, err)
	}()

	<-started
	_, err := f.orders.Place(ctx, "user-1", "dup", func(context.Context) (*order.Order, error) {
		t.Fatal("build must not run for an in-flight key")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	close(release)
	wg.Wait()
	assert.Equal(t, 1, f.repo.count())
}

func TestOrderService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	orders, err := f.orders.List(ctx, "nobody", shared.DefaultFilter())
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)

	_, err = f.orders.Create(ctx, CreateOrderInput{OwnerID: "user-1", Items: []order.Item{wheatSeed()}})
	require.NoError(t, err)
	_, err = f.orders.Create(ctx, CreateOrderInput{OwnerID: "user-2", Items: []order.Item{wheatSeed()}})
	require.NoError(t, err)

	orders, err = f.orders.List(ctx, "user-1", shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "user-1", orders[0].OwnerID)
}

func TestOrderService_GetAndUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.orders.Create(ctx, CreateOrderInput{OwnerID: "user-1", Items: []order.Item{wheatSeed()}})
	require.NoError(t, err)
	id := res.Order.ID

	_, err = f.orders.Get(ctx, "user-2", id)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.orders.Get(ctx, "user-1", uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	updated, err := f.orders.UpdateStatus(ctx, "user-1", id, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, updated.Status)

	_, err = f.orders.UpdateStatus(ctx, "user-1", id, "SHIPPED")
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = f.orders.UpdateStatus(ctx, "user-1", id, "teleported")
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATUS", de.Code)
}
