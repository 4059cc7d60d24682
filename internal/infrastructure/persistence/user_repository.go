package persistence

import (
	"context"
	"errors"

	"github.com/agromart/backend/internal/domain/identity"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	handle *Handle
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(handle *Handle) *GormUserRepository {
	return &GormUserRepository{handle: handle}
}

// Create inserts a new user. A taken e-mail yields ErrAlreadyExists.
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return err
	}

	var model models.UserModel
	model.FromDomain(user)
	if err := db.Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.findOne(ctx, "email = ?", identity.NormalizeEmail(email))
}

func (r *GormUserRepository) FindByResetTokenHash(ctx context.Context, hash string) (*identity.User, error) {
	if hash == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "reset_token_hash = ?", hash)
}

// Update saves all fields of an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return err
	}

	var model models.UserModel
	model.FromDomain(user)
	result := db.Model(&models.UserModel{}).Where("id = ?", user.ID).Select("*").Omit("id", "created_at").Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, args ...any) (*identity.User, error) {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return nil, err
	}

	var model models.UserModel
	if err := db.Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
