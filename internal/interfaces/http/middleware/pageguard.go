package middleware

import (
	"net/http"
	"strings"

	"github.com/agromart/backend/internal/domain/routing"
	"github.com/gin-gonic/gin"
)

// GuardRecorder receives the final state of each page navigation
type GuardRecorder interface {
	GuardDecision(state string)
}

// PageGuard runs the route guard for page requests (GET/HEAD outside /api).
// Protected pages without a session are redirected to the login page with
// the original path in the redirect parameter. Must run after LoadSession.
func PageGuard(guard *routing.Guard, recorder GuardRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Next()
			return
		}
		if p := routing.NormalizePath(c.Request.URL.Path); p == "/api" || strings.HasPrefix(p, "/api/") {
			c.Next()
			return
		}

		decision := guard.Navigate(c.Request.URL.Path, c.Request.URL.RawQuery, GetSession(c))
		if recorder != nil {
			recorder.GuardDecision(string(decision.State))
		}
		if !decision.Allowed() {
			c.Redirect(http.StatusFound, decision.RedirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}
