package persistence

import (
	"context"

	"github.com/agromart/backend/internal/domain/community"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/persistence/models"
)

// GormPostRepository implements community.PostRepository using GORM
type GormPostRepository struct {
	handle *Handle
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(handle *Handle) *GormPostRepository {
	return &GormPostRepository{handle: handle}
}

func (r *GormPostRepository) Create(ctx context.Context, post *community.Post) error {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return err
	}

	var model models.PostModel
	model.FromDomain(post)
	return db.Create(&model).Error
}

// List returns posts newest first, optionally narrowed by Filters["category"]
func (r *GormPostRepository) List(ctx context.Context, filter shared.Filter) ([]community.Post, error) {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&models.PostModel{})
	if category := stringFilter(filter, "category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var rows []models.PostModel
	if err := paginate(query, filter, postSortFields).Find(&rows).Error; err != nil {
		return nil, err
	}

	posts := make([]community.Post, len(rows))
	for i := range rows {
		posts[i] = *rows[i].ToDomain()
	}
	return posts, nil
}
