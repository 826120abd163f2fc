package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rossfinn/minimart/internal/domain"
)

// InvoiceStore persists invoices and owns the checkout transaction: the
// invoice insert and the source cart delete must commit together, and the
// delete must fail the transaction with ErrCartNotFound if the cart row is
// already gone.
type InvoiceStore interface {
	// CreateFromCart inserts the invoice and deletes the cart identified by
	// ownerKey and cartID in one transaction.
	CreateFromCart(ctx context.Context, invoice *domain.Invoice, ownerKey string, cartID uuid.UUID) error

	// FindByID returns the invoice with items, or ErrInvoiceNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)

	// FindByNumber returns the invoice by its human-facing number.
	FindByNumber(ctx context.Context, number string) (*domain.Invoice, error)

	// ListByUser returns the user's invoices, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Invoice, error)
}

type checkoutService struct {
	invoices InvoiceStore
	carts    CartStore
	now      func() time.Time
}

// NewCheckoutService creates the checkout engine. The clock is injectable so
// tests can pin invoice numbers and timestamps.
func NewCheckoutService(invoices InvoiceStore, carts CartStore, now func() time.Time) domain.CheckoutService {
	if now == nil {
		now = time.Now
	}
	return &checkoutService{
		invoices: invoices,
		carts:    carts,
		now:      now,
	}
}

// Checkout converts the caller's cart into an invoice. Line prices come from
// the cart's snapshots, never from the live catalog, so the invoice total is
// exactly what the shopper saw in the cart. The cart is deleted in the same
// transaction that creates the invoice; a second checkout of the same cart
// finds no cart and fails with ENOTFOUND.
func (s *checkoutService) Checkout(ctx context.Context, caller domain.Identity, cartID uuid.UUID) (*domain.Invoice, error) {
	if !caller.IsAuthenticated() {
		return nil, domain.ErrAnonymousCheckout
	}
	userID, err := uuid.Parse(caller.Key)
	if err != nil {
		return nil, domain.Invalid("checkout", "malformed user ID")
	}

	cart, err := s.carts.FindByOwner(ctx, caller.Key)
	if err != nil {
		return nil, err
	}
	if cart.ID != cartID {
		return nil, domain.NotFound("checkout", "cart", cartID.String())
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	now := s.now()
	invoice := &domain.Invoice{
		ID:        uuid.New(),
		Number:    fmt.Sprintf("INV-%d", now.UnixMilli()),
		UserID:    userID,
		Items:     make([]domain.InvoiceItem, 0, len(cart.Items)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	total := decimal.Zero
	for _, item := range cart.Items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		subtotal := item.LineSubtotal()
		invoice.Items = append(invoice.Items, domain.InvoiceItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}
	invoice.TotalAmount = total

	if err := s.invoices.CreateFromCart(ctx, invoice, caller.Key, cart.ID); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *checkoutService) GetInvoice(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.invoices.FindByID(ctx, id)
}

func (s *checkoutService) GetInvoiceByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	if number == "" {
		return nil, domain.ErrInvoiceNotFound
	}
	return s.invoices.FindByNumber(ctx, number)
}

func (s *checkoutService) ListInvoicesForUser(ctx context.Context, userID uuid.UUID) ([]domain.Invoice, error) {
	return s.invoices.ListByUser(ctx, userID)
}
