package firestore

import (
	"context"
	"errors"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/agromart/backend/internal/domain/catalog"
	"github.com/agromart/backend/internal/domain/order"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestOrderDocRoundTrip(t *testing.T) {
	pid := uuid.New()
	o, err := order.NewOrder("user-1", []order.Item{
		{ProductID: &pid, Name: "Wheat Seed", Quantity: 2, Price: decimal.NewFromInt(100)},
		{Name: "Sickle", Quantity: 1, Price: decimal.RequireFromString("12.50"), Discount: decimal.RequireFromString("0.2")},
	}, order.StatusSuccess)
	require.NoError(t, err)
	o.PaymentRef = "mock_123"

	back, err := fromOrderDoc(o.ID.String(), toOrderDoc(o))
	require.NoError(t, err)

	assert.Equal(t, o.ID, back.ID)
	assert.Equal(t, order.StatusSuccess, back.Status)
	assert.Equal(t, "mock_123", back.PaymentRef)
	assert.True(t, o.Total.Equal(back.Total))
	require.Len(t, back.Items, 2)
	assert.Equal(t, &pid, back.Items[0].ProductID)
	assert.Nil(t, back.Items[1].ProductID)
	assert.True(t, back.Items[1].Discount.Equal(decimal.RequireFromString("0.2")))
}

func TestFromOrderDoc_Invalid(t *testing.T) {
	_, err := fromOrderDoc("not-a-uuid", orderDoc{})
	assert.Error(t, err)

	_, err = fromOrderDoc(uuid.NewString(), orderDoc{Total: "abc"})
	assert.Error(t, err)
}

func TestMatchesSearch(t *testing.T) {
	p, err := catalog.NewProduct("Wheat Seed", "seeds", decimal.NewFromInt(100))
	require.NoError(t, err)
	p.Description = "Drought tolerant variety"

	assert.True(t, matchesSearch(p, ""))
	assert.True(t, matchesSearch(p, "wheat"))
	assert.True(t, matchesSearch(p, "drought"))
	assert.False(t, matchesSearch(p, "rice"))
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil))
	assert.ErrorIs(t, translateError(status.Error(codes.NotFound, "missing")), shared.ErrNotFound)
	assert.ErrorIs(t, translateError(status.Error(codes.AlreadyExists, "dup")), shared.ErrAlreadyExists)

	other := errors.New("boom")
	assert.Equal(t, other, translateError(other))
}

func TestClientHandle_RetriesDial(t *testing.T) {
	attempts := 0
	handle := NewClientHandleWithDialer(func(ctx context.Context) (*firestore.Client, error) {
		attempts++
		return nil, errors.New("no credentials")
	})

	_, err := handle.Client(context.Background())
	require.Error(t, err)
	_, err = handle.Client(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, attempts)

	require.NoError(t, handle.Close())
	_, err = handle.Client(context.Background())
	assert.ErrorIs(t, err, ErrClientClosed)
}

// TestOrderRepository_Emulator runs against the firestore emulator when
// FIRESTORE_EMULATOR_HOST is set.
func TestOrderRepository_Emulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	handle := NewClientHandleWithDialer(func(ctx context.Context) (*firestore.Client, error) {
		return firestore.NewClient(ctx, "agromart-test")
	})
	defer handle.Close()
	repo := NewOrderRepository(handle)

	o, err := order.NewOrder("emulator-user", []order.Item{
		{Name: "Wheat Seed", Quantity: 2, Price: decimal.NewFromInt(100)},
	}, "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, o))
	assert.ErrorIs(t, repo.Create(ctx, o), shared.ErrAlreadyExists)

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(found.Total))

	require.NoError(t, repo.UpdateStatus(ctx, o.ID, order.StatusCancelled))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), order.StatusCancelled), shared.ErrNotFound)
}
