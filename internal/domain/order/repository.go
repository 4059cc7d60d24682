package order

import (
	"context"

	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists orders
type Repository interface {
	// Create inserts a new order in a single write
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// List returns orders sorted by recency (newest first). An owner filter
	// is applied when filter.Filters["owner_id"] is set.
	List(ctx context.Context, filter shared.Filter) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}
