package trade

import (
	"context"

	"github.com/agromart/backend/internal/domain/cart"
	"github.com/agromart/backend/internal/domain/catalog"
	"github.com/agromart/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CartService manages the caller's cart
type CartService struct {
	store    cart.Store
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewCartService creates a cart service. products is used to fill in
// name and price for items that only name a product id; it may be nil.
func NewCartService(store cart.Store, products catalog.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{store: store, products: products, logger: logger}
}

// Get returns the user's cart
func (s *CartService) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	c, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load cart", err)
	}
	return c, nil
}

// Replace overwrites the cart contents
func (s *CartService) Replace(ctx context.Context, userID string, items []cart.LineItem) (*cart.Cart, error) {
	resolved := make([]cart.LineItem, 0, len(items))
	for _, item := range items {
		item, err := s.resolve(ctx, item)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, item)
	}

	c := cart.New(userID)
	if err := c.SetItems(resolved); err != nil {
		return nil, err
	}
	return c, s.save(ctx, c)
}

// AddItem appends one item
func (s *CartService) AddItem(ctx context.Context, userID string, item cart.LineItem) (*cart.Cart, error) {
	item, err := s.resolve(ctx, item)
	if err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.Add(item); err != nil {
		return nil, err
	}
	return c, s.save(ctx, c)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.store.Clear(ctx, userID); err != nil {
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to clear cart", err)
	}
	return nil
}

func (s *CartService) save(ctx context.Context, c *cart.Cart) error {
	if err := s.store.Save(ctx, c); err != nil {
		s.logger.Error("Failed to save cart", zap.String("user_id", c.UserID), zap.Error(err))
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to save cart", err)
	}
	return nil
}

// resolve fills a product-only item from the catalog
func (s *CartService) resolve(ctx context.Context, item cart.LineItem) (cart.LineItem, error) {
	if item.ProductID == nil || item.Name != "" || s.products == nil {
		return item, nil
	}
	p, err := s.products.FindByID(ctx, *item.ProductID)
	if err != nil {
		return item, err
	}
	item.Name = p.Name
	item.Price = p.Price
	item.Discount = p.Discount
	return item, nil
}
