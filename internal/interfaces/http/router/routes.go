package router

import (
	"github.com/agromart/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the API handlers mounted by Routes
type Handlers struct {
	Auth      *handler.AuthHandler
	Cart      *handler.CartHandler
	Checkout  *handler.CheckoutHandler
	Orders    *handler.OrderHandler
	Payments  *handler.PaymentHandler
	Products  *handler.ProductHandler
	Community *handler.CommunityHandler
	Address   *handler.AddressHandler
	Plants    *handler.PlantHandler
	System    *handler.SystemHandler
}

// Routes builds the domain groups of the v1 API. requireSession guards the
// per-user routes; everything else accepts anonymous callers.
func Routes(h Handlers, requireSession gin.HandlerFunc) []RouteRegistrar {
	auth := NewDomainGroup("auth", "/auth").
		POST("/signup", h.Auth.Signup).
		POST("/login", h.Auth.Login).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me).
		POST("/forgot-password", h.Auth.ForgotPassword).
		POST("/reset-password", h.Auth.ResetPassword)

	cart := NewDomainGroup("cart", "/cart").Use(requireSession).
		GET("", h.Cart.Get).
		PUT("", h.Cart.Replace).
		DELETE("", h.Cart.Clear).
		POST("/items", h.Cart.AddItem)

	checkout := NewDomainGroup("checkout", "/checkout").Use(requireSession).
		POST("", h.Checkout.Start).
		GET("", h.Checkout.Get).
		DELETE("", h.Checkout.Cancel).
		PUT("/method", h.Checkout.SelectMethod).
		PUT("/card", h.Checkout.EnterCard).
		POST("/submit", h.Checkout.Submit)

	orders := NewDomainGroup("orders", "/orders").Use(requireSession).
		GET("", h.Orders.List).
		POST("", h.Orders.Create).
		GET("/:id", h.Orders.Get).
		PUT("/:id/status", h.Orders.UpdateStatus)

	payments := NewDomainGroup("payments", "/payments").
		POST("/intent", h.Payments.CreateIntent)

	products := NewDomainGroup("catalog", "/products").
		GET("", h.Products.List).
		GET("/:id", h.Products.Get).
		POST("", requireSession, h.Products.Create)

	posts := NewDomainGroup("community", "/posts").
		GET("", h.Community.ListPosts).
		POST("", h.Community.CreatePost)

	newsletter := NewDomainGroup("newsletter", "/newsletter").
		POST("", h.Community.Subscribe)

	addresses := NewDomainGroup("customer", "/addresses").Use(requireSession).
		GET("", h.Address.List).
		POST("", h.Address.Save)

	plants := NewDomainGroup("plants", "/plants").
		POST("/identify", h.Plants.Identify)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.Info)

	return []RouteRegistrar{auth, cart, checkout, orders, payments, products, posts, newsletter, addresses, plants, system}
}
