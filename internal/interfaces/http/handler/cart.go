package handler

import (
	"github.com/agromart/backend/internal/application/trade"
	"github.com/agromart/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CartHandler handles the caller's cart
type CartHandler struct {
	BaseHandler
	cartService *trade.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *trade.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	ct, err := h.cartService.Get(c.Request.Context(), s.OwnerKey())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCartResponse(ct))
}

// Replace handles PUT /cart
func (h *CartHandler) Replace(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.ReplaceCartRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ct, err := h.cartService.Replace(c.Request.Context(), s.OwnerKey(), dto.ToItems(req.Items))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCartResponse(ct))
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ct, err := h.cartService.AddItem(c.Request.Context(), s.OwnerKey(), req.ToItem())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCartResponse(ct))
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.cartService.Clear(c.Request.Context(), s.OwnerKey()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
