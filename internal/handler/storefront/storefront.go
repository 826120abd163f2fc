// Package storefront serves the shopper-facing API: catalog browsing, cart
// mutations, checkout, invoices, and account routes.
package storefront

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rossfinn/minimart/internal/domain"
	"github.com/rossfinn/minimart/internal/middleware"
)

type Handler struct {
	products domain.ProductService
	carts    domain.CartService
	checkout domain.CheckoutService
	users    domain.UserService
	cookies  middleware.CookieConfig
	log      zerolog.Logger
}

func New(
	products domain.ProductService,
	carts domain.CartService,
	checkout domain.CheckoutService,
	users domain.UserService,
	cookies middleware.CookieConfig,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		products: products,
		carts:    carts,
		checkout: checkout,
		users:    users,
		cookies:  cookies,
		log:      log,
	}
}

// Register mounts the storefront routes on the identity-scoped group.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/api/products", h.ListProducts)
	g.GET("/api/products/:id", h.GetProduct)

	g.GET("/cart", h.GetCart)
	g.POST("/cart/items", h.AddItem)
	g.POST("/cart/items/remove", h.RemoveItem)
	g.POST("/cart/clear", h.ClearCart)

	g.POST("/checkout", h.Checkout, middleware.RequireAuth())
	g.GET("/invoices", h.ListInvoices, middleware.RequireAuth())
	g.GET("/invoices/:ref", h.GetInvoice, middleware.RequireAuth())

	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.GET("/auth/status", h.AuthStatus)
}
