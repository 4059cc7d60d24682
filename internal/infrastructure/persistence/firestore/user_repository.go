package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/agromart/backend/internal/domain/identity"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type userDoc struct {
	Name                string     `firestore:"name"`
	Email               string     `firestore:"email"`
	PasswordHash        string     `firestore:"passwordHash"`
	ResetTokenHash      string     `firestore:"resetTokenHash,omitempty"`
	ResetTokenExpiresAt *time.Time `firestore:"resetTokenExpiresAt,omitempty"`
	LastLoginAt         *time.Time `firestore:"lastLoginAt,omitempty"`
	CreatedAt           time.Time  `firestore:"createdAt"`
	UpdatedAt           time.Time  `firestore:"updatedAt"`
}

// UserRepository implements identity.UserRepository on the users collection
type UserRepository struct {
	handle *ClientHandle
}

func NewUserRepository(handle *ClientHandle) *UserRepository {
	return &UserRepository{handle: handle}
}

// Create inserts the user inside a transaction that enforces e-mail uniqueness
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	client, err := r.handle.Client(ctx)
	if err != nil {
		return err
	}
	col := client.Collection(UsersCollection)

	err = client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(col.Where("email", "==", user.Email).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return shared.ErrAlreadyExists
		}
		return tx.Create(col.Doc(user.ID.String()), toUserDoc(user))
	})
	return translateError(err)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	client, err := r.handle.Client(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := client.Collection(UsersCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return decodeUser(snap)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.findOne(ctx, "email", identity.NormalizeEmail(email))
}

func (r *UserRepository) FindByResetTokenHash(ctx context.Context, hash string) (*identity.User, error) {
	if hash == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "resetTokenHash", hash)
}

// Update overwrites an existing user document
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	client, err := r.handle.Client(ctx)
	if err != nil {
		return err
	}
	ref := client.Collection(UsersCollection).Doc(user.ID.String())
	err = client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, toUserDoc(user))
	})
	return translateError(err)
}

func (r *UserRepository) findOne(ctx context.Context, field, value string) (*identity.User, error) {
	client, err := r.handle.Client(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := client.Collection(UsersCollection).Where(field, "==", value).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, shared.ErrNotFound
	}
	return decodeUser(docs[0])
}

func decodeUser(snap *firestore.DocumentSnapshot) (*identity.User, error) {
	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(snap.Ref.ID)
	if err != nil {
		return nil, err
	}
	return &identity.User{
		BaseEntity:          shared.BaseEntity{ID: id, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		Name:                d.Name,
		Email:               d.Email,
		PasswordHash:        d.PasswordHash,
		ResetTokenHash:      d.ResetTokenHash,
		ResetTokenExpiresAt: d.ResetTokenExpiresAt,
		LastLoginAt:         d.LastLoginAt,
	}, nil
}

func toUserDoc(u *identity.User) userDoc {
	return userDoc{
		Name:                u.Name,
		Email:               u.Email,
		PasswordHash:        u.PasswordHash,
		ResetTokenHash:      u.ResetTokenHash,
		ResetTokenExpiresAt: u.ResetTokenExpiresAt,
		LastLoginAt:         u.LastLoginAt,
		CreatedAt:           u.CreatedAt.UTC(),
		UpdatedAt:           u.UpdatedAt.UTC(),
	}
}
