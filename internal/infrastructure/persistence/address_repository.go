package persistence

import (
	"context"

	"github.com/agromart/backend/internal/domain/customer"
	"github.com/agromart/backend/internal/infrastructure/persistence/models"
)

// GormAddressRepository implements customer.AddressRepository using GORM
type GormAddressRepository struct {
	handle *Handle
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(handle *Handle) *GormAddressRepository {
	return &GormAddressRepository{handle: handle}
}

// Insert stores the address and returns its id
func (r *GormAddressRepository) Insert(ctx context.Context, addr *customer.Address) (string, error) {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return "", err
	}

	var model models.AddressModel
	model.FromDomain(addr)
	if err := db.Create(&model).Error; err != nil {
		return "", err
	}
	return model.ID.String(), nil
}

func (r *GormAddressRepository) ListByUser(ctx context.Context, userID string) ([]customer.Address, error) {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return nil, err
	}

	var rows []models.AddressModel
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	addresses := make([]customer.Address, len(rows))
	for i := range rows {
		addresses[i] = *rows[i].ToDomain()
	}
	return addresses, nil
}
