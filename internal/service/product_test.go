package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rossfinn/minimart/internal/domain"
)

type mockProductStore struct {
	ListFn      func(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetByIDFn   func(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetByCodeFn func(ctx context.Context, code string) (*domain.Product, error)
	CreateFn    func(ctx context.Context, product *domain.Product) error
	UpdateFn    func(ctx context.Context, product *domain.Product) error
	DeleteFn    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProductStore) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return m.ListFn(ctx, filter)
}
func (m *mockProductStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return m.GetByIDFn(ctx, id)
}
func (m *mockProductStore) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	return m.GetByCodeFn(ctx, code)
}
func (m *mockProductStore) Create(ctx context.Context, product *domain.Product) error {
	return m.CreateFn(ctx, product)
}
func (m *mockProductStore) Update(ctx context.Context, product *domain.Product) error {
	return m.UpdateFn(ctx, product)
}
func (m *mockProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFn(ctx, id)
}

func TestGetProductByRef_DispatchesOnRefShape(t *testing.T) {
	id := uuid.New()
	var gotID uuid.UUID
	var gotCode string

	store := &mockProductStore{
		GetByIDFn: func(_ context.Context, lookup uuid.UUID) (*domain.Product, error) {
			gotID = lookup
			return &domain.Product{ID: lookup}, nil
		},
		GetByCodeFn: func(_ context.Context, code string) (*domain.Product, error) {
			gotCode = code
			return &domain.Product{Code: code}, nil
		},
	}
	svc := NewCatalogService(store)
	ctx := context.Background()

	_, err := svc.GetProductByRef(ctx, id.String())
	require.NoError(t, err)
	require.Equal(t, id, gotID)

	_, err = svc.GetProductByRef(ctx, "PROD001")
	require.NoError(t, err)
	require.Equal(t, "PROD001", gotCode)

	_, err = svc.GetProductByRef(ctx, "  ")
	require.True(t, domain.IsCode(err, domain.EINVALID))
}

func TestCreateProduct_Validation(t *testing.T) {
	created := 0
	store := &mockProductStore{
		CreateFn: func(_ context.Context, _ *domain.Product) error {
			created++
			return nil
		},
	}
	svc := NewCatalogService(store)
	ctx := context.Background()

	valid := domain.CreateProductParams{
		Code:     "PROD010",
		Name:     "Rice",
		Category: "Food",
		Price:    decimal.RequireFromString("6.80"),
		Stock:    25,
	}

	tests := []struct {
		name    string
		mutate  func(p *domain.CreateProductParams)
		wantErr bool
	}{
		{"valid", func(p *domain.CreateProductParams) {}, false},
		{"missing code", func(p *domain.CreateProductParams) { p.Code = "" }, true},
		{"missing name", func(p *domain.CreateProductParams) { p.Name = "" }, true},
		{"missing category", func(p *domain.CreateProductParams) { p.Category = "" }, true},
		{"zero price", func(p *domain.CreateProductParams) { p.Price = decimal.Zero }, true},
		{"negative price", func(p *domain.CreateProductParams) { p.Price = decimal.RequireFromString("-1") }, true},
		{"negative stock", func(p *domain.CreateProductParams) { p.Stock = -1 }, true},
		{"bad image url", func(p *domain.CreateProductParams) { p.ImageURL = "not a url" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid
			tt.mutate(&params)
			product, err := svc.CreateProduct(ctx, params)
			if tt.wantErr {
				require.True(t, domain.IsCode(err, domain.EINVALID), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, product.ID)
			require.False(t, product.CreatedAt.IsZero())
		})
	}

	require.Equal(t, 1, created, "only the valid case may reach the store")
}

func TestUpdateProduct_MergesOnlyProvidedFields(t *testing.T) {
	id := uuid.New()
	existing := &domain.Product{
		ID:       id,
		Code:     "PROD001",
		Name:     "Apple",
		Category: "Food",
		Price:    decimal.RequireFromString("2.50"),
		Stock:    100,
	}

	var saved *domain.Product
	store := &mockProductStore{
		GetByIDFn: func(_ context.Context, _ uuid.UUID) (*domain.Product, error) {
			p := *existing
			return &p, nil
		},
		UpdateFn: func(_ context.Context, product *domain.Product) error {
			saved = product
			return nil
		},
	}
	svc := NewCatalogService(store)

	newPrice := decimal.RequireFromString("2.80")
	newStock := int32(80)
	_, err := svc.UpdateProduct(context.Background(), id, domain.UpdateProductParams{
		Price: &newPrice,
		Stock: &newStock,
	})
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.Equal(t, "Apple", saved.Name, "untouched field must survive")
	require.True(t, saved.Price.Equal(newPrice))
	require.Equal(t, newStock, saved.Stock)
	require.False(t, saved.UpdatedAt.IsZero())
}

func TestUpdateProduct_UnknownIDPropagatesNotFound(t *testing.T) {
	store := &mockProductStore{
		GetByIDFn: func(_ context.Context, _ uuid.UUID) (*domain.Product, error) {
			return nil, domain.ErrProductNotFound
		},
	}
	svc := NewCatalogService(store)

	name := "Pear"
	_, err := svc.UpdateProduct(context.Background(), uuid.New(), domain.UpdateProductParams{Name: &name})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestListProducts_TrimsFilter(t *testing.T) {
	var got domain.ProductFilter
	store := &mockProductStore{
		ListFn: func(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
			got = filter
			return nil, nil
		},
	}
	svc := NewCatalogService(store)

	_, err := svc.ListProducts(context.Background(), domain.ProductFilter{
		Category: "  Food ",
		Name:     " apple ",
	})
	require.NoError(t, err)
	require.Equal(t, "Food", got.Category)
	require.Equal(t, "apple", got.Name)
}
