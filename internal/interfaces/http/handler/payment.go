package handler

import (
	"github.com/agromart/backend/internal/infrastructure/payment"
	"github.com/agromart/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler creates payment intents for the storefront card form
type PaymentHandler struct {
	BaseHandler
	intents payment.IntentCreator
	logger  *zap.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(intents payment.IntentCreator, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{intents: intents, logger: logger}
}

// CreateIntent handles POST /payments/intent. The amount is in minor units.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req dto.PaymentIntentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	intent, err := h.intents.CreateIntent(c.Request.Context(), req.Amount, req.Currency)
	if err != nil {
		h.logger.Warn("Payment intent failed", zap.Int64("amount", req.Amount), zap.Error(err))
		if _, ok := asDomainError(err); ok {
			h.HandleError(c, err)
			return
		}
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodePaymentFailed), dto.ErrCodePaymentFailed, "Payment intent could not be created")
		return
	}
	h.Success(c, intent)
}
