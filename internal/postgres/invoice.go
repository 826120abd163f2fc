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

// InvoiceStore persists invoices. CreateFromCart is the checkout transaction:
// the invoice rows and the cart delete commit or roll back as one.
type InvoiceStore struct {
	pool *pgxpool.Pool
}

func NewInvoiceStore(pool *pgxpool.Pool) *InvoiceStore {
	return &InvoiceStore{pool: pool}
}

// CreateFromCart inserts the invoice and its lines, then deletes the source
// cart. The delete is conditional on both the cart ID and its current owner;
// zero rows means another checkout already consumed the cart, and the whole
// transaction rolls back with ErrCartNotFound.
func (s *InvoiceStore) CreateFromCart(ctx context.Context, invoice *domain.Invoice, ownerKey string, cartID uuid.UUID) error {
	const op = "postgres.invoice.create_from_cart"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (id, number, user_id, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		invoice.ID,
		invoice.Number,
		invoice.UserID,
		decimalToNumeric(invoice.TotalAmount),
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if err != nil {
		return domain.Internal(err, op, "failed to insert invoice")
	}

	for i, item := range invoice.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO invoice_items (invoice_id, line_no, product_id, product_name, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			invoice.ID,
			i+1,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			decimalToNumeric(item.UnitPrice),
			decimalToNumeric(item.Subtotal),
		)
		if err != nil {
			return domain.Internal(err, op, "failed to insert invoice item")
		}
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM carts WHERE id = $1 AND owner_key = $2`,
		cartID, ownerKey,
	)
	if err != nil {
		return domain.Internal(err, op, "failed to delete checked-out cart")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, op, "failed to commit checkout")
	}
	return nil
}

func (s *InvoiceStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *InvoiceStore) FindByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return s.findOne(ctx, `WHERE number = $1`, number)
}

func (s *InvoiceStore) findOne(ctx context.Context, where string, arg any) (*domain.Invoice, error) {
	const op = "postgres.invoice.find"

	var inv domain.Invoice
	var total pgtype.Numeric
	err := s.pool.QueryRow(ctx,
		`SELECT id, number, user_id, total_amount, created_at, updated_at FROM invoices `+where,
		arg,
	).Scan(&inv.ID, &inv.Number, &inv.UserID, &total, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, domain.Internal(err, op, "failed to get invoice")
	}
	inv.TotalAmount = numericToDecimal(total)

	items, err := s.itemsForInvoice(ctx, inv.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load invoice items")
	}
	inv.Items = items
	return &inv, nil
}

func (s *InvoiceStore) itemsForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, product_name, quantity, unit_price, subtotal
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY line_no`,
		invoiceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.InvoiceItem
	for rows.Next() {
		var item domain.InvoiceItem
		var price, subtotal pgtype.Numeric
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &price, &subtotal); err != nil {
			return nil, err
		}
		item.UnitPrice = numericToDecimal(price)
		item.Subtotal = numericToDecimal(subtotal)
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListByUser returns invoice headers with items, newest first.
func (s *InvoiceStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Invoice, error) {
	const op = "postgres.invoice.list_by_user"

	rows, err := s.pool.Query(ctx, `
		SELECT id, number, user_id, total_amount, created_at, updated_at
		FROM invoices
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list invoices")
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		var inv domain.Invoice
		var total pgtype.Numeric
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.UserID, &total, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, domain.Internal(err, op, "failed to scan invoice")
		}
		inv.TotalAmount = numericToDecimal(total)
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read invoices")
	}

	for i := range invoices {
		items, err := s.itemsForInvoice(ctx, invoices[i].ID)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to load invoice items")
		}
		invoices[i].Items = items
	}
	return invoices, nil
}
