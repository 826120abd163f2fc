package storefront

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/rossfinn/minimart/internal/domain"
	"github.com/rossfinn/minimart/internal/handler"
	"github.com/rossfinn/minimart/internal/middleware"
)

type invoiceItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type invoiceResponse struct {
	ID          string                `json:"id"`
	Number      string                `json:"number"`
	Items       []invoiceItemResponse `json:"items"`
	TotalAmount decimal.Decimal       `json:"total_amount"`
	CreatedAt   time.Time             `json:"created_at"`
}

func toInvoiceResponse(inv *domain.Invoice) invoiceResponse {
	items := make([]invoiceItemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, invoiceItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	return invoiceResponse{
		ID:          inv.ID.String(),
		Number:      inv.Number,
		Items:       items,
		TotalAmount: inv.TotalAmount,
		CreatedAt:   inv.CreatedAt,
	}
}

type checkoutRequest struct {
	CartID string `json:"cart_id"`
}

// Checkout converts the caller's cart into an invoice. The response carries
// the invoice so browser clients can redirect to its permalink.
func (h *Handler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("storefront.checkout", "malformed request body")
	}
	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		return domain.Invalid("storefront.checkout", "malformed cart ID")
	}

	identity := middleware.CallerIdentity(c)
	invoice, err := h.checkout.Checkout(c.Request().Context(), identity, cartID)
	if err != nil {
		return err
	}
	return handler.OK(c, http.StatusCreated, toInvoiceResponse(invoice))
}

func (h *Handler) ListInvoices(c echo.Context) error {
	user := middleware.CurrentUser(c)

	invoices, err := h.checkout.ListInvoicesForUser(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	out := make([]invoiceResponse, 0, len(invoices))
	for i := range invoices {
		out = append(out, toInvoiceResponse(&invoices[i]))
	}
	return handler.OK(c, http.StatusOK, out)
}

// GetInvoice resolves :ref as an invoice UUID or an invoice number, so both
// internal links and printed "INV-…" permalinks work. Callers only see their
// own invoices.
func (h *Handler) GetInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	ref := c.Param("ref")

	var invoice *domain.Invoice
	var err error
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		invoice, err = h.checkout.GetInvoice(ctx, id)
	} else {
		invoice, err = h.checkout.GetInvoiceByNumber(ctx, ref)
	}
	if err != nil {
		return err
	}

	user := middleware.CurrentUser(c)
	if invoice.UserID != user.ID {
		return domain.NotFound("storefront.get_invoice", "invoice", ref)
	}
	return handler.OK(c, http.StatusOK, toInvoiceResponse(invoice))
}
