package catalog

import (
	"strings"

	"github.com/agromart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a marketplace listing
type Product struct {
	shared.BaseEntity
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Stock       int
	ImageURL    string
	SellerID    string
}

// NewProduct creates a new product listing
func NewProduct(name, category string, price decimal.Decimal) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Category:   strings.ToLower(strings.TrimSpace(category)),
		Price:      price,
		Discount:   decimal.Zero,
	}, nil
}

// SetDiscount sets the fractional discount (0 to 1)
func (p *Product) SetDiscount(discount decimal.Decimal) error {
	if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount must be between 0 and 1")
	}
	p.Discount = discount
	p.Touch()
	return nil
}

// SetStock sets the available quantity
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	p.Stock = stock
	p.Touch()
	return nil
}

// EffectivePrice returns the unit price after discount
func (p *Product) EffectivePrice() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(1).Sub(p.Discount)).Round(2)
}

// InStock reports whether at least one unit is available
func (p *Product) InStock() bool {
	return p.Stock > 0
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
