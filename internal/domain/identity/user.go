package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/agromart/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is a registered marketplace account
type User struct {
	shared.BaseEntity
	Name                string
	Email               string
	PasswordHash        string
	ResetTokenHash      string
	ResetTokenExpiresAt *time.Time
	LastLoginAt         *time.Time
}

// NewUser creates a user with a bcrypt-hashed password
func NewUser(name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	u := &User{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Email:      email,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword validates and hashes a new password
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.Touch()
	return nil
}

// VerifyPassword checks if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// RecordLogin stamps a successful login
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = at
}

// IssueResetToken creates a single-use password reset token. Only its
// SHA-256 digest is kept on the user.
func (u *User) IssueResetToken(ttl time.Duration) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", shared.WrapDomainError("TOKEN_GENERATION_ERROR", "Failed to generate reset token", err)
	}
	token := hex.EncodeToString(buf)
	expires := time.Now().Add(ttl)
	u.ResetTokenHash = hashToken(token)
	u.ResetTokenExpiresAt = &expires
	u.Touch()
	return token, nil
}

// ResetPassword consumes a reset token and sets a new password
func (u *User) ResetPassword(token, newPassword string, now time.Time) error {
	if u.ResetTokenHash == "" || u.ResetTokenExpiresAt == nil {
		return shared.NewDomainError("INVALID_RESET_TOKEN", "Reset link is invalid or has already been used")
	}
	if now.After(*u.ResetTokenExpiresAt) {
		return shared.NewDomainError("INVALID_RESET_TOKEN", "Reset link has expired")
	}
	if subtle.ConstantTimeCompare([]byte(hashToken(token)), []byte(u.ResetTokenHash)) != 1 {
		return shared.NewDomainError("INVALID_RESET_TOKEN", "Reset link is invalid or has already been used")
	}
	if err := u.SetPassword(newPassword); err != nil {
		return err
	}
	u.ResetTokenHash = ""
	u.ResetTokenExpiresAt = nil
	return nil
}

// HashResetToken returns the digest under which a reset token is stored
func HashResetToken(token string) string {
	return hashToken(token)
}

// NormalizeEmail lower-cases and trims an e-mail address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the basic shape of an e-mail address
func ValidateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
