package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rossfinn/minimart/internal/domain"
)

// ProductStore is the persistence contract for the catalog.
type ProductStore interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetByCode(ctx context.Context, code string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	store    ProductStore
	validate *validator.Validate
}

// NewCatalogService creates the product catalog service.
func NewCatalogService(store ProductStore) domain.ProductService {
	return &catalogService{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *catalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Name = strings.TrimSpace(filter.Name)
	return s.store.List(ctx, filter)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.store.GetByID(ctx, id)
}

// GetProductByRef accepts either a product UUID or a product code. Shoppers
// paste codes from shelf labels; internal callers use IDs.
func (s *catalogService) GetProductByRef(ctx context.Context, ref string) (*domain.Product, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.Invalid("product.get_by_ref", "missing product reference")
	}
	if id, err := uuid.Parse(ref); err == nil {
		return s.store.GetByID(ctx, id)
	}
	return s.store.GetByCode(ctx, ref)
}

func (s *catalogService) CreateProduct(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error) {
	const op = "product.create"

	if err := s.validate.Struct(params); err != nil {
		return nil, domain.Invalid(op, validationMessage(err))
	}
	if params.Price.IsNegative() || params.Price.IsZero() {
		return nil, domain.Invalid(op, "Price must be greater than 0")
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Code:        strings.TrimSpace(params.Code),
		Name:        strings.TrimSpace(params.Name),
		Category:    strings.TrimSpace(params.Category),
		Price:       params.Price,
		Stock:       params.Stock,
		Description: params.Description,
		ImageURL:    params.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, params domain.UpdateProductParams) (*domain.Product, error) {
	const op = "product.update"

	if err := s.validate.Struct(params); err != nil {
		return nil, domain.Invalid(op, validationMessage(err))
	}
	if params.Price != nil && (params.Price.IsNegative() || params.Price.IsZero()) {
		return nil, domain.Invalid(op, "Price must be greater than 0")
	}

	product, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		product.Name = strings.TrimSpace(*params.Name)
	}
	if params.Category != nil {
		product.Category = strings.TrimSpace(*params.Category)
	}
	if params.Price != nil {
		product.Price = *params.Price
	}
	if params.Stock != nil {
		product.Stock = *params.Stock
	}
	if params.Description != nil {
		product.Description = *params.Description
	}
	if params.ImageURL != nil {
		product.ImageURL = *params.ImageURL
	}
	product.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// validationMessage flattens the first validator failure into a message safe
// to show to back-office users.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "email":
			return fe.Field() + " must be a valid email address"
		case "min":
			return fe.Field() + " must be at least " + fe.Param() + " characters"
		case "max":
			return fe.Field() + " must be at most " + fe.Param() + " characters"
		case "gte":
			return fe.Field() + " must be at least " + fe.Param()
		case "url":
			return fe.Field() + " must be a valid URL"
		}
		return fe.Field() + " is invalid"
	}
	return "invalid input"
}
