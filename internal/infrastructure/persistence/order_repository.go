package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/agromart/backend/internal/domain/order"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	handle *Handle
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(handle *Handle) *GormOrderRepository {
	return &GormOrderRepository{handle: handle}
}

// Create inserts the order and its item snapshot in one transaction
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.handle.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return nil, err
	}

	var model models.OrderModel
	if err := db.Preload("Items", orderItemsByPosition).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns orders newest first
func (r *GormOrderRepository) List(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&models.OrderModel{})
	if owner := stringFilter(filter, "owner_id"); owner != "" {
		query = query.Where("owner_id = ?", owner)
	}
	if status := stringFilter(filter, "status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []models.OrderModel
	if err := paginate(query, filter, orderSortFields).Preload("Items", orderItemsByPosition).Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// UpdateStatus sets the status of an existing order
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) error {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&models.OrderModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func orderItemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
