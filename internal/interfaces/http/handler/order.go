package handler

import (
	"strings"

	"github.com/agromart/backend/internal/application/trade"
	"github.com/agromart/backend/internal/interfaces/http/dto"
	"github.com/agromart/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	BaseHandler
	orderService *trade.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *trade.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List handles GET /orders. The response is always an array, newest first,
// paged by page and page_size (default 50, at most 100).
func (h *OrderHandler) List(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	orders, err := h.orderService.List(c.Request.Context(), s.OwnerKey(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponses(orders))
}

// Create handles POST /orders. The owner in the body, when present, must be
// the caller. New orders always start PENDING; status moves only through
// UpdateStatus.
func (h *OrderHandler) Create(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if owner := strings.TrimSpace(req.Owner); owner != "" && owner != s.OwnerKey() {
		h.Forbidden(c, "Orders can only be placed for the signed-in user")
		return
	}

	result, err := h.orderService.Create(c.Request.Context(), trade.CreateOrderInput{
		OwnerID:        s.OwnerKey(),
		Items:          dto.ToItems(req.Items),
		IdempotencyKey: c.GetHeader(middleware.IdempotencyKeyHeader),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Replayed {
		c.Header(middleware.IdempotentReplayedHeader, "true")
	}
	h.Created(c, toOrderResponse(result.Order))
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	o, err := h.orderService.Get(c.Request.Context(), s.OwnerKey(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

// UpdateStatus handles PUT /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	o, err := h.orderService.UpdateStatus(c.Request.Context(), s.OwnerKey(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}
