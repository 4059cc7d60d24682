package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/agromart/backend/internal/domain/identity"
)

// SessionResolver turns a bearer token into an explicit session
type SessionResolver struct {
	jwt       *JWTService
	blacklist TokenBlacklist
}

// NewSessionResolver creates a resolver. blacklist may be nil.
func NewSessionResolver(jwtService *JWTService, blacklist TokenBlacklist) *SessionResolver {
	return &SessionResolver{jwt: jwtService, blacklist: blacklist}
}

// Resolve validates the token and checks revocation. Any failure means
// the caller is unauthenticated.
func (r *SessionResolver) Resolve(ctx context.Context, token string) (*identity.Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims, err := r.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if r.blacklist != nil && claims.ID != "" {
		revoked, err := r.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check token revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenBlacklisted
		}
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, ErrInvalidClaims
	}
	return &identity.Session{
		UserID:    userID,
		Email:     claims.Email,
		Name:      claims.Name,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke blacklists the session's token for its remaining lifetime
func (r *SessionResolver) Revoke(ctx context.Context, s *identity.Session) error {
	if r.blacklist == nil || s == nil || s.TokenID == "" {
		return nil
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.blacklist.AddToBlacklist(ctx, s.TokenID, ttl)
}
