package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rossfinn/minimart/internal/domain"
)

// CartStore is the persistence contract for carts. AddOrIncrementItem must be
// atomic per owner (a conditional upsert or equivalent) so that concurrent
// adds for the same product merge quantities instead of overwriting each
// other.
type CartStore interface {
	// FindByOwner returns the owner's cart with items, or ErrCartNotFound.
	FindByOwner(ctx context.Context, ownerKey string) (*domain.Cart, error)

	// AddOrIncrementItem creates the owner's cart if absent, then inserts the
	// line or increments the existing line's quantity by item.Quantity.
	// Returns the cart after the mutation.
	AddOrIncrementItem(ctx context.Context, ownerKey string, item domain.CartItem) (*domain.Cart, error)

	// RemoveItem drops the product's line. Returns the cart after the
	// mutation, or ErrCartNotFound if the owner has no cart.
	RemoveItem(ctx context.Context, ownerKey string, productID uuid.UUID) (*domain.Cart, error)

	// DeleteByOwner removes the owner's cart and its items. Deleting a
	// missing cart is a no-op.
	DeleteByOwner(ctx context.Context, ownerKey string) error

	// ReassignOwner renames fromKey's cart to toKey, keeping the cart ID.
	// Returns a conflict error if toKey already owns a cart.
	ReassignOwner(ctx context.Context, fromKey, toKey string) error

	// MergeOwners folds fromKey's items into toKey's cart, summing
	// quantities for shared products, then deletes fromKey's cart. Both
	// steps commit together.
	MergeOwners(ctx context.Context, fromKey, toKey string) error
}

// ProductLookup resolves product references for cart validation and unit
// price snapshots.
type ProductLookup interface {
	GetProductByRef(ctx context.Context, ref string) (*domain.Product, error)
}

type cartService struct {
	store    CartStore
	products ProductLookup
}

// NewCartService creates the cart merge engine backed by the given store.
func NewCartService(store CartStore, products ProductLookup) domain.CartService {
	return &cartService{
		store:    store,
		products: products,
	}
}

// AddItem validates the request, snapshots the product's current price into
// the line, and hands the merge to the store's atomic upsert. The product is
// resolved before any write, so an unknown reference never mutates the cart.
func (s *cartService) AddItem(ctx context.Context, ownerKey, ref string, quantity int32) (*domain.Cart, error) {
	if ownerKey == "" {
		return nil, domain.Invalid("cart.add_item", "missing cart owner key")
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.products.GetProductByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	item := domain.CartItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
		AddedAt:     time.Now(),
	}

	return s.store.AddOrIncrementItem(ctx, ownerKey, item)
}

func (s *cartService) GetCart(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	if ownerKey == "" {
		return nil, domain.ErrCartNotFound
	}
	return s.store.FindByOwner(ctx, ownerKey)
}

func (s *cartService) RemoveItem(ctx context.Context, ownerKey string, productID uuid.UUID) (*domain.Cart, error) {
	return s.store.RemoveItem(ctx, ownerKey, productID)
}

func (s *cartService) ClearCart(ctx context.Context, ownerKey string) error {
	return s.store.DeleteByOwner(ctx, ownerKey)
}

// Reconcile transfers an anonymous cart to an authenticated owner. Called on
// every request that carries both keys, so every branch is idempotent: once
// the anonymous cart is gone, subsequent calls are no-ops.
func (s *cartService) Reconcile(ctx context.Context, anonKey, authKey string) error {
	if anonKey == "" || authKey == "" || anonKey == authKey {
		return nil
	}

	if _, err := s.store.FindByOwner(ctx, anonKey); err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil
		}
		return err
	}

	_, err := s.store.FindByOwner(ctx, authKey)
	switch {
	case err == nil:
		// Both carts exist: merge quantities, never clobber.
		return s.store.MergeOwners(ctx, anonKey, authKey)
	case domain.IsCode(err, domain.ENOTFOUND):
		err := s.store.ReassignOwner(ctx, anonKey, authKey)
		if domain.IsCode(err, domain.ECONFLICT) {
			// A cart appeared under authKey between the lookup and the
			// rename; fall back to merging.
			return s.store.MergeOwners(ctx, anonKey, authKey)
		}
		return err
	default:
		return err
	}
}
