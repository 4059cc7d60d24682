package customer

import (
	"context"
	"errors"
	"testing"

	"github.com/agromart/backend/internal/domain/customer"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAddressRepository is a mock implementation of customer.AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) Insert(ctx context.Context, addr *customer.Address) (string, error) {
	args := m.Called(ctx, addr)
	return args.String(0), args.Error(1)
}

func (m *MockAddressRepository) ListByUser(ctx context.Context, userID string) ([]customer.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]customer.Address), args.Error(1)
}

func validAddress() SaveAddressRequest {
	return SaveAddressRequest{
		FullName:   "Asha Farmer",
		Line1:      "12 Mill Road",
		City:       "Nashik",
		PostalCode: "422001",
		Country:    "IN",
	}
}

func TestAddressService_Save(t *testing.T) {
	t.Run("returns inserted id", func(t *testing.T) {
		repo := new(MockAddressRepository)
		svc := NewAddressService(repo, zap.NewNop())
		repo.On("Insert", mock.Anything, mock.MatchedBy(func(a *customer.Address) bool {
			return a.UserID == "user-1" && a.City == "Nashik"
		})).Return("addr-1", nil)

		id, err := svc.Save(context.Background(), "user-1", validAddress())
		require.NoError(t, err)
		assert.Equal(t, "addr-1", id)
		repo.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		repo := new(MockAddressRepository)
		svc := NewAddressService(repo, zap.NewNop())
		req := validAddress()
		req.City = " "

		_, err := svc.Save(context.Background(), "user-1", req)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_ADDRESS", de.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := new(MockAddressRepository)
		svc := NewAddressService(repo, zap.NewNop())
		repo.On("Insert", mock.Anything, mock.Anything).Return("", errors.New("unavailable"))

		_, err := svc.Save(context.Background(), "user-1", validAddress())
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INTERNAL_ERROR", de.Code)
	})
}

func TestAddressService_List(t *testing.T) {
	repo := new(MockAddressRepository)
	svc := NewAddressService(repo, zap.NewNop())
	repo.On("ListByUser", mock.Anything, "user-1").Return(nil, nil)

	addrs, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, addrs)
	assert.Empty(t, addrs)
}
