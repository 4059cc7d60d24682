package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("hashes password and normalizes email", func(t *testing.T) {
		u, err := NewUser("Asha Farmer", "  Asha@Example.COM ", "wheat-2024")
		require.NoError(t, err)
		assert.Equal(t, "asha@example.com", u.Email)
		assert.NotEqual(t, "wheat-2024", u.PasswordHash)
		assert.True(t, u.VerifyPassword("wheat-2024"))
		assert.False(t, u.VerifyPassword("barley-2024"))
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name, user, email, password string
		}{
			{"empty name", " ", "a@b.co", "password1"},
			{"bad email", "Asha", "not-an-email", "password1"},
			{"short password", "Asha", "a@b.co", "short"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewUser(tt.user, tt.email, tt.password)
				assert.Error(t, err)
			})
		}
	})
}

func TestUser_ResetPassword(t *testing.T) {
	u, err := NewUser("Asha", "asha@example.com", "password1")
	require.NoError(t, err)

	token, err := u.IssueResetToken(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, HashResetToken(token), u.ResetTokenHash)

	t.Run("wrong token is rejected", func(t *testing.T) {
		assert.Error(t, u.ResetPassword("nope", "password2", time.Now()))
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		assert.Error(t, u.ResetPassword(token, "password2", time.Now().Add(2*time.Hour)))
	})

	t.Run("valid token resets once", func(t *testing.T) {
		require.NoError(t, u.ResetPassword(token, "password2", time.Now()))
		assert.True(t, u.VerifyPassword("password2"))
		assert.Empty(t, u.ResetTokenHash)
		assert.Error(t, u.ResetPassword(token, "password3", time.Now()))
	})
}

func TestSession_Authenticated(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.Authenticated())
	assert.False(t, (&Session{UserID: uuid.New(), ExpiresAt: time.Now().Add(-time.Minute)}).Authenticated())
	assert.True(t, (&Session{UserID: uuid.New(), ExpiresAt: time.Now().Add(time.Minute)}).Authenticated())
}
