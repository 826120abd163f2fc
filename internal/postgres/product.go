package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rossfinn/minimart/internal/domain"
)

// ProductStore persists catalog entries.
type ProductStore struct {
	pool *pgxpool.Pool
}

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

const productColumns = `id, code, name, category, price, stock, description, image_url, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var price pgtype.Numeric
	err := row.Scan(
		&p.ID,
		&p.Code,
		&p.Name,
		&p.Category,
		&price,
		&p.Stock,
		&p.Description,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Price = numericToDecimal(price)
	return &p, nil
}

// List returns products matching the filter, newest first. Name matches as a
// case-insensitive substring.
func (s *ProductStore) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	const op = "postgres.product.list"

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, filter.Category, filter.Name)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read products")
	}
	return products, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	const op = "postgres.product.get_by_id"

	row := s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, op, "failed to get product")
	}
	return p, nil
}

func (s *ProductStore) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	const op = "postgres.product.get_by_code"

	row := s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1`, code)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, op, "failed to get product")
	}
	return p, nil
}

func (s *ProductStore) Create(ctx context.Context, product *domain.Product) error {
	const op = "postgres.product.create"

	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (id, code, name, category, price, stock, description, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		product.ID,
		product.Code,
		product.Name,
		product.Category,
		decimalToNumeric(product.Price),
		product.Stock,
		product.Description,
		product.ImageURL,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if uniqueViolation(err) {
			return domain.ErrDuplicateProduct
		}
		return domain.Internal(err, op, "failed to create product")
	}
	return nil
}

func (s *ProductStore) Update(ctx context.Context, product *domain.Product) error {
	const op = "postgres.product.update"

	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, category = $3, price = $4, stock = $5, description = $6, image_url = $7, updated_at = $8
		WHERE id = $1`,
		product.ID,
		product.Name,
		product.Category,
		decimalToNumeric(product.Price),
		product.Stock,
		product.Description,
		product.ImageURL,
		product.UpdatedAt,
	)
	if err != nil {
		return domain.Internal(err, op, "failed to update product")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.product.delete"

	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, op, "failed to delete product")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
