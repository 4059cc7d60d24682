package persistence

import (
	"context"
	"errors"

	"github.com/agromart/backend/internal/domain/catalog"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	handle *Handle
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(handle *Handle) *GormProductRepository {
	return &GormProductRepository{handle: handle}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return nil, err
	}

	var model models.ProductModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return nil, err
	}

	var rows []models.ProductModel
	query := r.applyFilter(db.Model(&models.ProductModel{}), filter)
	if err := paginate(query, filter, productSortFields).Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.applyFilter(db.Model(&models.ProductModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return err
	}

	var model models.ProductModel
	model.FromDomain(product)
	return db.Save(&model).Error
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if category := stringFilter(filter, "category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	return query
}
