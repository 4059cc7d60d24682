// Package payment charges orders and creates client-side payment intents.
package payment

import (
	"context"
	"fmt"

	"github.com/agromart/backend/internal/domain/order"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ChargeRequest describes a charge for one order
type ChargeRequest struct {
	OrderID   string
	Amount    decimal.Decimal
	Currency  string
	Method    string
	CardLast4 string
}

// ChargeResult is the gateway outcome. Status is the order status the
// charge implies.
type ChargeResult struct {
	Reference string
	Status    order.Status
}

// Intent is a payment intent the browser completes with a client secret
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Gateway charges an order
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// IntentCreator creates payment intents for an amount in minor units
type IntentCreator interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string) (*Intent, error)
}

// Provider is a gateway that can also create intents
type Provider interface {
	Gateway
	IntentCreator
	Name() string
}

// ErrNotConfigured is returned when the selected provider lacks credentials
var ErrNotConfigured = shared.NewDomainError(shared.ErrUnavailable.Code, "Payment provider is not configured")

// NewProvider returns the provider selected by configuration
func NewProvider(cfg config.PaymentConfig, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case config.PaymentProviderStripe:
		gw, err := NewStripeGateway(cfg.StripeSecretKey, cfg.Currency, logger)
		if err != nil {
			return nil, err
		}
		return gw, nil
	case config.PaymentProviderMock, "":
		return NewMockGateway(cfg.Currency), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
	}
}

// ToMinorUnits converts a decimal amount to the currency's minor units
// (cents), rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Unconfigured stands in for a provider whose credentials are missing so
// the server can start; every call fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Name() string { return "unconfigured" }

func (Unconfigured) Charge(context.Context, ChargeRequest) (*ChargeResult, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) CreateIntent(context.Context, int64, string) (*Intent, error) {
	return nil, ErrNotConfigured
}
