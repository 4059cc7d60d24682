package handler

import (
	"time"

	"github.com/agromart/backend/internal/domain/cart"
	"github.com/agromart/backend/internal/domain/checkout"
	"github.com/agromart/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderResponse is the API view of an order
type OrderResponse struct {
	ID         uuid.UUID       `json:"id"`
	Owner      string          `json:"owner"`
	Items      []order.Item    `json:"items"`
	Status     order.Status    `json:"status"`
	Total      decimal.Decimal `json:"total"`
	PaymentRef string          `json:"payment_ref,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:         o.ID,
		Owner:      o.OwnerID,
		Items:      o.Items,
		Status:     o.Status,
		Total:      o.Total,
		PaymentRef: o.PaymentRef,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func toOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	return out
}

// CartResponse is the API view of a cart
type CartResponse struct {
	Items     []cart.LineItem `json:"items"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toCartResponse(c *cart.Cart) CartResponse {
	items := c.Items
	if items == nil {
		items = []cart.LineItem{}
	}
	return CartResponse{Items: items, Total: c.Total(), UpdatedAt: c.UpdatedAt}
}

// SubmitResponse is returned when a checkout is confirmed
type SubmitResponse struct {
	Session checkout.View `json:"session"`
	Order   OrderResponse `json:"order"`
}
