package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice domain errors.
var (
	ErrInvoiceNotFound   = &Error{Code: ENOTFOUND, Message: "Invoice not found"}
	ErrEmptyCart         = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrAnonymousCheckout = &Error{Code: EUNAUTHORIZED, Message: "Sign in to check out"}
)

// Invoice is a point-in-time receipt minted at checkout. Items and
// TotalAmount are never mutated after creation; product edits after the fact
// do not flow back into an invoice.
type Invoice struct {
	ID          uuid.UUID
	Number      string // human-facing invoice number, e.g. "INV-1724967000123"
	UserID      uuid.UUID
	Items       []InvoiceItem
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InvoiceItem is a frozen line: name and unit price are snapshots taken from
// the cart line, not live product references.
type InvoiceItem struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// CheckoutService converts carts into invoices. The transition is one-way:
// invoice creation happens-before cart deletion, and a cart can be checked
// out at most once.
type CheckoutService interface {
	// Checkout turns the caller's cart into an invoice and deletes the cart.
	// The caller must be authenticated and cartID must reference their own
	// cart.
	Checkout(ctx context.Context, caller Identity, cartID uuid.UUID) (*Invoice, error)

	// GetInvoice retrieves an invoice by ID.
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// GetInvoiceByNumber retrieves an invoice by its human-facing number.
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)

	// ListInvoicesForUser returns the user's invoices, newest first.
	ListInvoicesForUser(ctx context.Context, userID uuid.UUID) ([]Invoice, error)
}
