package handler

import (
	"github.com/agromart/backend/internal/application/trade"
	"github.com/agromart/backend/internal/domain/checkout"
	"github.com/agromart/backend/internal/interfaces/http/dto"
	"github.com/agromart/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler drives the checkout flow
type CheckoutHandler struct {
	BaseHandler
	checkoutService *trade.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *trade.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Start handles POST /checkout
func (h *CheckoutHandler) Start(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	sess, err := h.checkoutService.Start(c.Request.Context(), s.OwnerKey())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sess.ToView())
}

// Get handles GET /checkout
func (h *CheckoutHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	sess, err := h.checkoutService.Get(c.Request.Context(), s.OwnerKey())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sess.ToView())
}

// SelectMethod handles PUT /checkout/method
func (h *CheckoutHandler) SelectMethod(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.SelectMethodRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sess, err := h.checkoutService.SelectMethod(c.Request.Context(), s.OwnerKey(), req.Method)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sess.ToView())
}

// EnterCard handles PUT /checkout/card. Completeness is checked by the
// session, so an empty body yields CARD_DETAILS_REQUIRED.
func (h *CheckoutHandler) EnterCard(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.CardRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sess, err := h.checkoutService.EnterCard(c.Request.Context(), s.OwnerKey(), checkout.CardDetails{
		Number: req.Number,
		Expiry: req.Expiry,
		CVV:    req.CVV,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sess.ToView())
}

// Submit handles POST /checkout/submit
func (h *CheckoutHandler) Submit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	result, err := h.checkoutService.Submit(c.Request.Context(), s.OwnerKey(), c.GetHeader(middleware.IdempotencyKeyHeader))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Replayed {
		c.Header(middleware.IdempotentReplayedHeader, "true")
	}
	h.Created(c, SubmitResponse{Session: result.Session.ToView(), Order: toOrderResponse(result.Order)})
}

// Cancel handles DELETE /checkout. The cart is kept.
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.checkoutService.Cancel(c.Request.Context(), s.OwnerKey()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
