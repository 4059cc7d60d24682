package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/agromart/backend/internal/domain/order"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"go.uber.org/zap"
)

// StripeGateway creates Stripe PaymentIntents. A charge leaves the order
// PROCESSING until the browser confirms the intent.
type StripeGateway struct {
	intents  paymentintent.Client
	currency string
	logger   *zap.Logger
}

// NewStripeGateway creates a gateway using secretKey. An empty key is a
// configuration error.
func NewStripeGateway(secretKey, currency string, logger *zap.Logger) (*StripeGateway, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, ErrNotConfigured
	}
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{
		intents:  paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		currency: strings.ToLower(currency),
		logger:   logger,
	}, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	amount := ToMinorUnits(req.Amount)
	if amount <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Charge amount must be positive")
	}

	params := g.intentParams(ctx, amount, req.Currency)
	params.AddMetadata("order_id", req.OrderID)
	if req.Method != "" {
		params.AddMetadata("card_type", req.Method)
	}

	pi, err := g.intents.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe payment intent",
			zap.String("order_id", req.OrderID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	g.logger.Info("Created Stripe payment intent",
		zap.String("order_id", req.OrderID),
		zap.String("payment_intent_id", pi.ID))

	return &ChargeResult{Reference: pi.ID, Status: order.StatusProcessing}, nil
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string) (*Intent, error) {
	if amountMinor <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be a positive integer")
	}

	pi, err := g.intents.New(g.intentParams(ctx, amountMinor, currency))
	if err != nil {
		g.logger.Error("Failed to create Stripe payment intent", zap.Int64("amount", amountMinor), zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

func (g *StripeGateway) intentParams(ctx context.Context, amount int64, currency string) *stripe.PaymentIntentParams {
	if currency == "" {
		currency = g.currency
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	return params
}
