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

// CartStore persists carts. The write paths lean on Postgres upserts so that
// two requests racing on the same owner serialize on the row instead of
// clobbering each other's state.
type CartStore struct {
	pool *pgxpool.Pool
}

func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

func (s *CartStore) FindByOwner(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	const op = "postgres.cart.find_by_owner"

	var cart domain.Cart
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_key, created_at, updated_at FROM carts WHERE owner_key = $1`,
		ownerKey,
	).Scan(&cart.ID, &cart.OwnerKey, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, domain.Internal(err, op, "failed to get cart")
	}

	items, err := s.itemsForCart(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load cart items")
	}
	cart.Items = items
	return &cart, nil
}

func (s *CartStore) itemsForCart(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, product_name, quantity, unit_price, added_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY added_at, product_id`,
		cartID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		var price pgtype.Numeric
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &price, &item.AddedAt); err != nil {
			return nil, err
		}
		item.UnitPrice = numericToDecimal(price)
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddOrIncrementItem upserts the owner's cart row, then upserts the line.
// The item insert increments in place on conflict, so concurrent adds of the
// same product sum their quantities. Both statements run in one transaction.
func (s *CartStore) AddOrIncrementItem(ctx context.Context, ownerKey string, item domain.CartItem) (*domain.Cart, error) {
	const op = "postgres.cart.add_or_increment"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	var cartID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO carts (id, owner_key, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (owner_key) DO UPDATE SET updated_at = now()
		RETURNING id`,
		uuid.New(), ownerKey,
	).Scan(&cartID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to upsert cart")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, product_name, quantity, unit_price, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		cartID,
		item.ProductID,
		item.ProductName,
		item.Quantity,
		decimalToNumeric(item.UnitPrice),
		item.AddedAt,
	)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to upsert cart item")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Internal(err, op, "failed to commit cart update")
	}

	return s.FindByOwner(ctx, ownerKey)
}

func (s *CartStore) RemoveItem(ctx context.Context, ownerKey string, productID uuid.UUID) (*domain.Cart, error) {
	const op = "postgres.cart.remove_item"

	_, err := s.pool.Exec(ctx, `
		DELETE FROM cart_items
		USING carts
		WHERE cart_items.cart_id = carts.id
		  AND carts.owner_key = $1
		  AND cart_items.product_id = $2`,
		ownerKey, productID,
	)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to remove cart item")
	}

	return s.FindByOwner(ctx, ownerKey)
}

func (s *CartStore) DeleteByOwner(ctx context.Context, ownerKey string) error {
	const op = "postgres.cart.delete_by_owner"

	_, err := s.pool.Exec(ctx, `DELETE FROM carts WHERE owner_key = $1`, ownerKey)
	if err != nil {
		return domain.Internal(err, op, "failed to delete cart")
	}
	return nil
}

// ReassignOwner renames a cart in place, keeping its ID and items. The
// owner_key unique index turns a concurrent cart under toKey into ECONFLICT,
// which callers resolve by merging instead.
func (s *CartStore) ReassignOwner(ctx context.Context, fromKey, toKey string) error {
	const op = "postgres.cart.reassign_owner"

	tag, err := s.pool.Exec(ctx,
		`UPDATE carts SET owner_key = $2, updated_at = now() WHERE owner_key = $1`,
		fromKey, toKey,
	)
	if err != nil {
		if uniqueViolation(err) {
			return domain.Conflict(op, "cart already exists for target owner")
		}
		return domain.Internal(err, op, "failed to reassign cart owner")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartNotFound
	}
	return nil
}

// MergeOwners folds fromKey's lines into toKey's cart and deletes fromKey's
// cart, all in one transaction. Shared products sum their quantities; the
// surviving line keeps the target cart's price snapshot.
func (s *CartStore) MergeOwners(ctx context.Context, fromKey, toKey string) error {
	const op = "postgres.cart.merge_owners"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	var targetID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO carts (id, owner_key, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (owner_key) DO UPDATE SET updated_at = now()
		RETURNING id`,
		uuid.New(), toKey,
	).Scan(&targetID)
	if err != nil {
		return domain.Internal(err, op, "failed to upsert target cart")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO cart_items (cart_id, product_id, product_name, quantity, unit_price, added_at)
		SELECT $1, ci.product_id, ci.product_name, ci.quantity, ci.unit_price, ci.added_at
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE c.owner_key = $2
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		targetID, fromKey,
	)
	if err != nil {
		return domain.Internal(err, op, "failed to merge cart items")
	}

	_, err = tx.Exec(ctx, `DELETE FROM carts WHERE owner_key = $1 AND id <> $2`, fromKey, targetID)
	if err != nil {
		return domain.Internal(err, op, "failed to delete source cart")
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, op, "failed to commit cart merge")
	}
	return nil
}
