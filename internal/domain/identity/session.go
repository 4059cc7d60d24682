package identity

import (
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated caller of a request. It is built from a
// verified token and passed explicitly to handlers and services.
type Session struct {
	UserID    uuid.UUID
	Email     string
	Name      string
	TokenID   string
	ExpiresAt time.Time
}

// Authenticated reports whether the session belongs to a signed-in user
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != uuid.Nil && time.Now().Before(s.ExpiresAt)
}

// OwnerKey is the identifier used to key carts, checkouts and orders
func (s *Session) OwnerKey() string {
	if s == nil {
		return ""
	}
	return s.UserID.String()
}
