package identity

import (
	"time"

	"github.com/google/uuid"
)

// SignupInput contains the input for account creation
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the session token issued on login or signup
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	TokenType   string
	User        UserInfo
}

// UserInfo contains the public user fields
type UserInfo struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}

// ResetPasswordInput contains the input for completing a password reset
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}
