// Package order holds the durable order record created at checkout.
package order

import (
	"strings"

	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one purchased line, copied from the cart at submission time
type Item struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
}

// Amount returns quantity × price × (1 − discount)
func (i Item) Amount() decimal.Decimal {
	return decimal.NewFromInt(int64(i.Quantity)).
		Mul(i.Price).
		Mul(decimal.NewFromInt(1).Sub(i.Discount))
}

// Validate checks the item invariants
func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return shared.NewDomainError("INVALID_ITEM", "Item name cannot be empty")
	}
	if i.Quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be at least 1")
	}
	if i.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Item price cannot be negative")
	}
	if i.Discount.IsNegative() || i.Discount.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Item discount must be between 0 and 1")
	}
	return nil
}

// Order is a persisted purchase. Items are an immutable snapshot.
type Order struct {
	shared.BaseEntity
	OwnerID    string
	Items      []Item
	Status     Status
	Total      decimal.Decimal
	PaymentRef string
}

// NewOrder creates an order from a copy of items. An empty status defaults
// to PENDING.
func NewOrder(ownerID string, items []Item, status Status) (*Order, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	if status == "" {
		status = DefaultStatus
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invalid order status: "+string(status))
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}

	snapshot := CopyItems(items)
	return &Order{
		BaseEntity: shared.NewBaseEntity(),
		OwnerID:    strings.TrimSpace(ownerID),
		Items:      snapshot,
		Status:     status,
		Total:      CalculateTotal(snapshot),
	}, nil
}

// CalculateTotal sums quantity × price × (1 − discount) over items
func CalculateTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount())
	}
	return total.Round(2)
}

// CopyItems returns a deep copy of items
func CopyItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = item
		if item.ProductID != nil {
			id := *item.ProductID
			out[i].ProductID = &id
		}
	}
	return out
}

// SameItems reports whether a and b hold the same lines in the same order.
// Decimals compare by value.
func SameItems(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if (x.ProductID == nil) != (y.ProductID == nil) {
			return false
		}
		if x.ProductID != nil && *x.ProductID != *y.ProductID {
			return false
		}
		if x.Name != y.Name || x.Quantity != y.Quantity ||
			!x.Price.Equal(y.Price) || !x.Discount.Equal(y.Discount) {
			return false
		}
	}
	return true
}

// TransitionTo moves the order to target if the lifecycle allows it
func (o *Order) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid order status: "+string(target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot change order status from "+string(o.Status)+" to "+string(target))
	}
	o.Status = target
	o.Touch()
	return nil
}

// ItemCount returns the total number of units in the order
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
