package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart domain errors.
var (
	ErrCartNotFound    = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrInvalidQuantity = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
)

// Cart holds a shopper's pending items. There is at most one cart per
// ownerKey; the key is either a user ID or a session-scoped anonymous token.
type Cart struct {
	ID        uuid.UUID
	OwnerKey  string
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem is one line in a cart, keyed by ProductID within the cart.
// UnitPrice is snapshotted when the line is first added; later shelf-price
// edits do not move a pending cart.
type CartItem struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	UnitPrice   decimal.Decimal
	AddedAt     time.Time
}

// LineSubtotal returns quantity times the snapshotted unit price.
func (i CartItem) LineSubtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

// Subtotal sums line subtotals across the cart.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineSubtotal())
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int32 {
	var n int32
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Item returns the line for productID, or nil if the cart has none.
func (c *Cart) Item(productID uuid.UUID) *CartItem {
	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			return &c.Items[idx]
		}
	}
	return nil
}

// CartService is the cart merge engine: it decides whether an add creates a
// cart, appends a line, or increments an existing line, and it reconciles
// anonymous carts into authenticated ones after login.
type CartService interface {
	// AddItem adds quantity units of the referenced product to the owner's
	// cart, creating the cart if needed and merging quantities if the product
	// already has a line. ref is a product UUID or product code.
	AddItem(ctx context.Context, ownerKey, ref string, quantity int32) (*Cart, error)

	// GetCart retrieves the owner's cart. Returns ErrCartNotFound if the
	// owner has none.
	GetCart(ctx context.Context, ownerKey string) (*Cart, error)

	// RemoveItem drops the product's line from the owner's cart.
	RemoveItem(ctx context.Context, ownerKey string, productID uuid.UUID) (*Cart, error)

	// ClearCart deletes the owner's cart entirely. Clearing a missing cart
	// is a no-op.
	ClearCart(ctx context.Context, ownerKey string) error

	// Reconcile moves the cart accumulated under anonKey to authKey after
	// login. If both keys own carts, the anonymous items are merged into the
	// authenticated cart (summing shared lines) and the anonymous cart is
	// deleted. Safe to call redundantly.
	Reconcile(ctx context.Context, anonKey, authKey string) error
}
