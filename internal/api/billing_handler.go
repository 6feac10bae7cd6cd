package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dthorne/curview/internal/billing"
	"github.com/dthorne/curview/internal/report"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// BillingService is the slice of the billing service the handlers consume.
type BillingService interface {
	ListAccounts(ctx context.Context) ([]uint64, error)
	ListInvoices(ctx context.Context, accountID uint64) ([]billing.Invoice, error)
	ProductBreakdown(ctx context.Context, scope billing.Scope) ([]billing.ProductTotal, error)
	BlendedTotals(ctx context.Context, scope billing.Scope) (billing.BlendedSummary, error)
}

// billingHandler groups the account and invoice lookup handlers.
type billingHandler struct {
	svc BillingService
}

func newBillingHandler(svc BillingService) *billingHandler {
	return &billingHandler{svc: svc}
}

// parseIDParam parses a uint64 URL parameter.
func parseIDParam(r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

// ListAccounts handles GET /api/v1/accounts.
func (h *billingHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if accounts == nil {
		accounts = []uint64{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
}

type invoiceJSON struct {
	InvoiceID uint64 `json:"invoice_id"`
	EndDate   string `json:"end_date"`
}

// ListInvoices handles GET /api/v1/accounts/{accountID}/invoices.
func (h *billingHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseIDParam(r, "accountID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_params", "account id must be a positive integer")
		return
	}

	invoices, err := h.svc.ListInvoices(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]invoiceJSON, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, invoiceJSON{
			InvoiceID: inv.InvoiceID,
			EndDate:   inv.EndDate.Format("2006-01-02"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"invoices": out})
}

// AccountReport handles GET /api/v1/accounts/{accountID}/report, serving the
// fixed-width text report.
func (h *billingHandler) AccountReport(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseIDParam(r, "accountID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_params", "account id must be a positive integer")
		return
	}

	text, err := report.ForAccount(r.Context(), h.svc, accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

type productFigures struct {
	Undiscounted decimal.Decimal `json:"undiscounted_total"`
	Discounted   decimal.Decimal `json:"discounted_total"`
}

// InvoiceProducts handles GET /api/v1/invoices/{invoiceID}/products.
func (h *billingHandler) InvoiceProducts(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := parseIDParam(r, "invoiceID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_params", "invoice id must be a positive integer")
		return
	}

	totals, err := h.svc.ProductBreakdown(r.Context(), billing.InvoiceScope(invoiceID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	products := make(map[string]productFigures, len(totals))
	for _, pt := range totals {
		products[pt.Product] = productFigures{
			Undiscounted: pt.Total,
			Discounted:   pt.Discounted,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"invoice_id": invoiceID,
		"products":   products,
	})
}

// InvoiceTotals handles GET /api/v1/invoices/{invoiceID}/totals.
func (h *billingHandler) InvoiceTotals(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := parseIDParam(r, "invoiceID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_params", "invoice id must be a positive integer")
		return
	}

	summary, err := h.svc.BlendedTotals(r.Context(), billing.InvoiceScope(invoiceID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
