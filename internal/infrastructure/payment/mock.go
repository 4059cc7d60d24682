package payment

import (
	"context"
	"strings"

	"github.com/agromart/backend/internal/domain/order"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MockGateway approves every charge. It is the default provider outside
// production.
type MockGateway struct {
	currency string
}

func NewMockGateway(currency string) *MockGateway {
	if currency == "" {
		currency = "usd"
	}
	return &MockGateway{currency: strings.ToLower(currency)}
}

func (g *MockGateway) Name() string { return "mock" }

// Charge always succeeds
func (g *MockGateway) Charge(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Charge amount must be positive")
	}
	return &ChargeResult{
		Reference: "mock_" + uuid.NewString(),
		Status:    order.StatusSuccess,
	}, nil
}

func (g *MockGateway) CreateIntent(_ context.Context, amountMinor int64, currency string) (*Intent, error) {
	if amountMinor <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be a positive integer")
	}
	if currency == "" {
		currency = g.currency
	}
	id := "pi_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return &Intent{
		ID:           id,
		ClientSecret: id + "_secret_mock",
		Amount:       amountMinor,
		Currency:     strings.ToLower(currency),
		Status:       "requires_payment_method",
	}, nil
}
