package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/agromart/backend/internal/domain/identity"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository(t *testing.T) {
	repo := NewGormUserRepository(newTestHandle(t))
	ctx := context.Background()

	user, err := identity.NewUser("Asha Patel", "Asha@Example.com", "s3cure-pass")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, user))

	t.Run("find by email is case-insensitive", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "  ASHA@example.COM ")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.True(t, found.VerifyPassword("s3cure-pass"))
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup, err := identity.NewUser("Other", "asha@example.com", "another-pass")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("reset token round trip", func(t *testing.T) {
		token, err := user.IssueResetToken(time.Hour)
		require.NoError(t, err)
		require.NoError(t, repo.Update(ctx, user))

		found, err := repo.FindByResetTokenHash(ctx, identity.HashResetToken(token))
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		require.NotNil(t, found.ResetTokenExpiresAt)

		_, err = repo.FindByResetTokenHash(ctx, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		ghost, err := identity.NewUser("Ghost", "ghost@example.com", "ghost-pass")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Update(ctx, ghost), shared.ErrNotFound)
	})
}
