package storefront

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/rossfinn/minimart/internal/domain"
	"github.com/rossfinn/minimart/internal/handler"
)

type productResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int32           `json:"stock"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID.String(),
		Code:        p.Code,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ListProducts returns the catalog, optionally filtered by category and a
// case-insensitive name substring.
func (h *Handler) ListProducts(c echo.Context) error {
	filter := domain.ProductFilter{
		Category: c.QueryParam("category"),
		Name:     c.QueryParam("name"),
	}

	products, err := h.products.ListProducts(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return handler.OK(c, http.StatusOK, out)
}

// GetProduct resolves :id as a product UUID or product code.
func (h *Handler) GetProduct(c echo.Context) error {
	product, err := h.products.GetProductByRef(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return handler.OK(c, http.StatusOK, toProductResponse(product))
}
