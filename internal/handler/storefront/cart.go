package storefront

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/rossfinn/minimart/internal/domain"
	"github.com/rossfinn/minimart/internal/handler"
	"github.com/rossfinn/minimart/internal/middleware"
)

type cartItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	ID        string             `json:"id"`
	Items     []cartItemResponse `json:"items"`
	ItemCount int32              `json:"item_count"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.LineSubtotal(),
		})
	}
	return cartResponse{
		ID:        cart.ID.String(),
		Items:     items,
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
		UpdatedAt: cart.UpdatedAt,
	}
}

// GetCart returns the caller's cart. A shopper with no cart yet gets an
// empty one rather than a 404.
func (h *Handler) GetCart(c echo.Context) error {
	identity := middleware.CallerIdentity(c)

	cart, err := h.carts.GetCart(c.Request().Context(), identity.Key)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return handler.OK(c, http.StatusOK, cartResponse{Items: []cartItemResponse{}})
		}
		return err
	}
	return handler.OK(c, http.StatusOK, toCartResponse(cart))
}

type addItemRequest struct {
	Product  string `json:"product"`
	Quantity int32  `json:"quantity"`
}

// AddItem adds a product to the caller's cart, merging quantities if the
// product already has a line. Anonymous shoppers are welcome; their cookie
// key owns the cart.
func (h *Handler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("storefront.add_item", "malformed request body")
	}

	identity := middleware.CallerIdentity(c)
	cart, err := h.carts.AddItem(c.Request().Context(), identity.Key, req.Product, req.Quantity)
	if err != nil {
		return err
	}
	return handler.OK(c, http.StatusOK, toCartResponse(cart))
}

type removeItemRequest struct {
	ProductID string `json:"product_id"`
}

func (h *Handler) RemoveItem(c echo.Context) error {
	var req removeItemRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("storefront.remove_item", "malformed request body")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return domain.Invalid("storefront.remove_item", "malformed product ID")
	}

	identity := middleware.CallerIdentity(c)
	cart, err := h.carts.RemoveItem(c.Request().Context(), identity.Key, productID)
	if err != nil {
		return err
	}
	return handler.OK(c, http.StatusOK, toCartResponse(cart))
}

func (h *Handler) ClearCart(c echo.Context) error {
	identity := middleware.CallerIdentity(c)
	if err := h.carts.ClearCart(c.Request().Context(), identity.Key); err != nil {
		return err
	}
	return handler.OK(c, http.StatusOK, cartResponse{Items: []cartItemResponse{}})
}
