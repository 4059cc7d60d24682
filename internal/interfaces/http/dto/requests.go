package dto

import (
	"github.com/agromart/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest is the body of POST /auth/login. Redirect is the page the
// guard sent the user away from; the redirect query parameter is used when
// it is empty.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Redirect string `json:"redirect"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// ItemRequest is one cart or order line
type ItemRequest struct {
	ProductID *uuid.UUID      `json:"product_id"`
	Name      string          `json:"name" binding:"required_without=ProductID,max=200"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
}

// ToItem converts the request to a domain item
func (r ItemRequest) ToItem() order.Item {
	return order.Item{
		ProductID: r.ProductID,
		Name:      r.Name,
		Quantity:  r.Quantity,
		Price:     r.Price,
		Discount:  r.Discount,
	}
}

// ToItems converts a slice of item requests
func ToItems(reqs []ItemRequest) []order.Item {
	items := make([]order.Item, len(reqs))
	for i, r := range reqs {
		items[i] = r.ToItem()
	}
	return items
}

// ReplaceCartRequest is the body of PUT /cart
type ReplaceCartRequest struct {
	Items []ItemRequest `json:"items" binding:"dive"`
}

// SelectMethodRequest is the body of PUT /checkout/method
type SelectMethodRequest struct {
	Method string `json:"method" binding:"required"`
}

// CardRequest is the body of PUT /checkout/card
type CardRequest struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// CreateOrderRequest is the body of POST /orders
type CreateOrderRequest struct {
	Owner string        `json:"owner"`
	Items []ItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusRequest is the body of PUT /orders/:id/status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PaymentIntentRequest is the body of POST /payments/intent. Amount is in
// minor units.
type PaymentIntentRequest struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Currency string `json:"currency" binding:"omitempty,len=3"`
}

// NewsletterRequest is the body of POST /newsletter
type NewsletterRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// IdentifyPlantRequest is the JSON body of POST /plants/identify. Images
// are base64 strings or data URIs.
type IdentifyPlantRequest struct {
	Images []string `json:"images" binding:"required,min=1,dive,required"`
}
