package handler

import (
	"net/http"

	"github.com/agromart/backend/internal/application/customer"
	"github.com/agromart/backend/internal/interfaces/http/dto"
	"github.com/agromart/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AddressAck reports whether an address write was stored
type AddressAck struct {
	InsertedID   string `json:"inserted_id,omitempty"`
	Acknowledged bool   `json:"acknowledged"`
}

// AddressHandler saves and lists shipping addresses
type AddressHandler struct {
	BaseHandler
	addressService *customer.AddressService
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(addressService *customer.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// Save handles POST /addresses. Storage failures carry an unacknowledged
// write result next to the error.
func (h *AddressHandler) Save(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req customer.SaveAddressRequest
	if !h.bindJSON(c, &req) {
		return
	}

	id, err := h.addressService.Save(c.Request.Context(), s.OwnerKey(), req)
	if err != nil {
		code := dto.ErrCodeInternal
		message := "Failed to save address"
		if de, ok := asDomainError(err); ok {
			code = de.Code
			message = de.Message
		}
		status := dto.GetHTTPStatus(dto.NormalizeErrorCode(code))
		resp := dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c))
		if status >= http.StatusInternalServerError {
			resp.Data = AddressAck{Acknowledged: false}
		}
		c.JSON(status, resp)
		return
	}
	h.Created(c, AddressAck{InsertedID: id, Acknowledged: true})
}

// List handles GET /addresses
func (h *AddressHandler) List(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	addresses, err := h.addressService.List(c.Request.Context(), s.OwnerKey())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addresses)
}
