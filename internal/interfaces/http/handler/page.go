package handler

import (
	_ "embed"
	"net/http"
	"strings"

	"github.com/agromart/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

//go:embed web/index.html
var indexHTML []byte

// PageHandler answers requests that match no API route
type PageHandler struct {
	BaseHandler
}

// NewPageHandler creates a new page handler
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// NoRoute serves the storefront shell for page navigations that got past
// the route guard. Unknown API paths get a JSON 404.
func (h *PageHandler) NoRoute(c *gin.Context) {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api/") || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		h.Error(c, http.StatusNotFound, dto.ErrCodeRouteNotFound, "Route not found: "+path)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// NoMethod answers 405 for known paths with an unsupported method
func (h *PageHandler) NoMethod(c *gin.Context) {
	h.Error(c, http.StatusMethodNotAllowed, dto.ErrCodeMethodNotAllowed, "Method "+c.Request.Method+" not allowed")
}
