// Package admin serves the back-office catalog API, guarded by the staff,
// manager, and storage roles.
package admin

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

type Handler struct {
	products domain.ProductService
}

func New(products domain.ProductService) *Handler {
	return &Handler{products: products}
}

// Register mounts the catalog management routes on the identity-scoped group.
func (h *Handler) Register(g *echo.Group) {
	office := g.Group("/api/products", middleware.RequireBackOffice())
	office.POST("", h.CreateProduct)
	office.PUT("/:id", h.UpdateProduct)
	office.DELETE("/:id", h.DeleteProduct)
}

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

type createProductRequest struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int32           `json:"stock"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
}

func (h *Handler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("admin.create_product", "malformed request body")
	}

	product, err := h.products.CreateProduct(c.Request().Context(), domain.CreateProductParams{
		Code:        req.Code,
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	return handler.OK(c, http.StatusCreated, toProductResponse(product))
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int32           `json:"stock"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"image_url"`
}

func (h *Handler) UpdateProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domain.Invalid("admin.update_product", "malformed product ID")
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("admin.update_product", "malformed request body")
	}

	product, err := h.products.UpdateProduct(c.Request().Context(), id, domain.UpdateProductParams{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	return handler.OK(c, http.StatusOK, toProductResponse(product))
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domain.Invalid("admin.delete_product", "malformed product ID")
	}

	if err := h.products.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}
	return handler.OK(c, http.StatusOK, map[string]bool{"deleted": true})
}
