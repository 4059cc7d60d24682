// Package customer holds buyer-owned records such as shipping addresses.
package customer

import (
	"context"
	"strings"

	"github.com/agromart/backend/internal/domain/shared"
)

// Address is a saved shipping address
type Address struct {
	shared.BaseEntity
	UserID     string
	FullName   string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
}

// NewAddress validates and creates an address owned by userID
func NewAddress(userID string, a Address) (*Address, error) {
	addr := &Address{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		FullName:   strings.TrimSpace(a.FullName),
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
		Phone:      strings.TrimSpace(a.Phone),
	}
	required := []struct{ field, value string }{
		{"full_name", addr.FullName},
		{"line1", addr.Line1},
		{"city", addr.City},
		{"postal_code", addr.PostalCode},
		{"country", addr.Country},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, shared.NewDomainError("INVALID_ADDRESS", "Address field "+r.field+" is required")
		}
	}
	return addr, nil
}

// AddressRepository persists addresses in their own collection
type AddressRepository interface {
	// Insert stores the address and returns the inserted id
	Insert(ctx context.Context, addr *Address) (string, error)
	ListByUser(ctx context.Context, userID string) ([]Address, error)
}
