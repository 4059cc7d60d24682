package middleware

import (
	"net/http"
	"strings"

	"github.com/agromart/backend/internal/domain/identity"
	"github.com/agromart/backend/internal/infrastructure/auth"
	"github.com/agromart/backend/internal/infrastructure/logger"
	"github.com/agromart/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Session context keys
const (
	SessionKey    = "session"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// SessionConfig configures session resolution
type SessionConfig struct {
	Resolver   *auth.SessionResolver
	CookieName string
	Logger     *zap.Logger
}

// LoadSession resolves the caller's session from the Authorization header
// or the session cookie. Requests without a valid token continue
// unauthenticated; RequireSession rejects them where needed.
func LoadSession(cfg SessionConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := ExtractToken(c, cfg.CookieName)
		if token == "" {
			c.Next()
			return
		}

		session, err := cfg.Resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			log.Debug("Session token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			c.Next()
			return
		}

		c.Set(SessionKey, session)
		c.Set(logger.GinUserIDKey, session.OwnerKey())
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), session.OwnerKey()))
		c.Next()
	}
}

// RequireSession answers 401 unless LoadSession found a valid session
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetSession(c).Authenticated() {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		c.Next()
	}
}

// GetSession returns the caller's session, or nil when unauthenticated
func GetSession(c *gin.Context) *identity.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*identity.Session); ok {
			return s
		}
	}
	return nil
}

// ExtractToken returns the bearer token, falling back to the session cookie
func ExtractToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader(AuthHeaderKey); strings.HasPrefix(header, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	}
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil {
			return v
		}
	}
	return ""
}
