package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product domain errors.
var (
	ErrProductNotFound  = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrDuplicateProduct = &Error{Code: ECONFLICT, Message: "Product code already exists"}
)

// Product is a catalog entry. Price is the current shelf price; carts and
// invoices carry their own snapshots and are not affected by later edits.
type Product struct {
	ID          uuid.UUID
	Code        string // human-facing product code, unique (e.g. "P1021")
	Name        string
	Category    string
	Price       decimal.Decimal
	Stock       int32
	Description string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductFilter narrows catalog listings. Name matches as a case-insensitive
// substring; empty fields match everything.
type ProductFilter struct {
	Category string
	Name     string
}

// CreateProductParams contains validated input for creating a product.
type CreateProductParams struct {
	Code        string `validate:"required,max=32"`
	Name        string `validate:"required,max=200"`
	Category    string `validate:"required,max=100"`
	Price       decimal.Decimal
	Stock       int32  `validate:"gte=0"`
	Description string `validate:"max=2000"`
	ImageURL    string `validate:"omitempty,url"`
}

// UpdateProductParams contains fields to change on an existing product.
// Nil pointers leave the current value untouched.
type UpdateProductParams struct {
	Name        *string `validate:"omitempty,max=200"`
	Category    *string `validate:"omitempty,max=100"`
	Price       *decimal.Decimal
	Stock       *int32  `validate:"omitempty,gte=0"`
	Description *string `validate:"omitempty,max=2000"`
	ImageURL    *string `validate:"omitempty,url"`
}

// ProductService provides catalog browsing for shoppers and CRUD for the
// back office.
type ProductService interface {
	// ListProducts returns products matching the filter, newest first.
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)

	// GetProduct retrieves a product by ID.
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)

	// GetProductByRef resolves a product by UUID string or product code.
	GetProductByRef(ctx context.Context, ref string) (*Product, error)

	// CreateProduct adds a catalog entry. Back office only.
	CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error)

	// UpdateProduct edits a catalog entry. Back office only.
	UpdateProduct(ctx context.Context, id uuid.UUID, params UpdateProductParams) (*Product, error)

	// DeleteProduct removes a catalog entry. Back office only.
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}
