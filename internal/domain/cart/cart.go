// Package cart models the pre-purchase list of items owned by one user.
package cart

import (
	"context"
	"time"

	"github.com/agromart/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// LineItem is a cart entry. It has the same shape as an order item so the
// cart can be snapshotted into an order without conversion.
type LineItem = order.Item

// Cart is the ephemeral, user-owned list of line items
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// New returns an empty cart for userID
func New(userID string) *Cart {
	return &Cart{UserID: userID, Items: []LineItem{}, UpdatedAt: time.Now()}
}

// IsEmpty reports whether the cart has no items
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Add appends an item after validating it. An item with the same product
// (or, without a product, the same name and price) increases the quantity.
func (c *Cart) Add(item LineItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	for i := range c.Items {
		if sameLine(c.Items[i], item) {
			c.Items[i].Quantity += item.Quantity
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	c.Items = append(c.Items, order.CopyItems([]LineItem{item})...)
	c.UpdatedAt = time.Now()
	return nil
}

// SetItems replaces the cart contents
func (c *Cart) SetItems(items []LineItem) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	c.Items = order.CopyItems(items)
	c.UpdatedAt = time.Now()
	return nil
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.UpdatedAt = time.Now()
}

// Total returns the discounted total of the cart
func (c *Cart) Total() decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	return order.CalculateTotal(c.Items)
}

// Snapshot returns a deep copy of the items, safe to hand to an order
func (c *Cart) Snapshot() []LineItem {
	if c == nil {
		return nil
	}
	return order.CopyItems(c.Items)
}

func sameLine(a, b LineItem) bool {
	if a.ProductID != nil && b.ProductID != nil {
		return *a.ProductID == *b.ProductID && a.Discount.Equal(b.Discount)
	}
	return a.ProductID == nil && b.ProductID == nil &&
		a.Name == b.Name && a.Price.Equal(b.Price) && a.Discount.Equal(b.Discount)
}

// Store keeps one cart per user
type Store interface {
	// Get returns the user's cart, or an empty cart when none is stored
	Get(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Clear(ctx context.Context, userID string) error
}
