package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dthorne/curview/internal/billing"
	"github.com/dthorne/curview/internal/discount"
	"github.com/shopspring/decimal"
)

// fakeBilling serves canned billing results.
type fakeBilling struct {
	accounts []uint64
	invoices []billing.Invoice
	totals   []billing.ProductTotal
	summary  billing.BlendedSummary
	err      error
}

func (f *fakeBilling) ListAccounts(_ context.Context) ([]uint64, error) {
	return f.accounts, f.err
}

func (f *fakeBilling) ListInvoices(_ context.Context, _ uint64) ([]billing.Invoice, error) {
	return f.invoices, f.err
}

func (f *fakeBilling) ProductBreakdown(_ context.Context, _ billing.Scope) ([]billing.ProductTotal, error) {
	return f.totals, f.err
}

func (f *fakeBilling) BlendedTotals(_ context.Context, _ billing.Scope) (billing.BlendedSummary, error) {
	return f.summary, f.err
}

// fakeRegistry records discount writes.
type fakeRegistry struct {
	put     []discount.Rate
	deleted []string
	rates   []discount.Rate
	putErr  error
}

func (f *fakeRegistry) Put(_ context.Context, r discount.Rate) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.put = append(f.put, r)
	return nil
}

func (f *fakeRegistry) Delete(_ context.Context, _ uint64, product string) error {
	f.deleted = append(f.deleted, product)
	return nil
}

func (f *fakeRegistry) List(_ context.Context, _ uint64) ([]discount.Rate, error) {
	return f.rates, nil
}

func testRouter(b *fakeBilling, reg *fakeRegistry, adminKeyHash string) http.Handler {
	return NewRouter(RouterDeps{
		Billing:      b,
		Discounts:    reg,
		AdminKeyHash: adminKeyHash,
	})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := get(t, testRouter(&fakeBilling{}, &fakeRegistry{}, ""), "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", body["status"])
	}
}

func TestListAccounts(t *testing.T) {
	b := &fakeBilling{accounts: []uint64{1, 836060457634}}
	rec := get(t, testRouter(b, &fakeRegistry{}, ""), "/api/v1/accounts")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body struct {
		Accounts []uint64 `json:"accounts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Accounts) != 2 || body.Accounts[1] != 836060457634 {
		t.Errorf("unexpected accounts: %v", body.Accounts)
	}
}

func TestListInvoices(t *testing.T) {
	b := &fakeBilling{invoices: []billing.Invoice{
		{InvoiceID: 200, EndDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
		{InvoiceID: 100, EndDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}}
	rec := get(t, testRouter(b, &fakeRegistry{}, ""), "/api/v1/accounts/1/invoices")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body struct {
		Invoices []struct {
			InvoiceID uint64 `json:"invoice_id"`
			EndDate   string `json:"end_date"`
		} `json:"invoices"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Invoices) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(body.Invoices))
	}
	if body.Invoices[0].InvoiceID != 200 || body.Invoices[0].EndDate != "2025-08-01" {
		t.Errorf("unexpected first invoice: %+v", body.Invoices[0])
	}
}

func TestListInvoices_BadAccountID(t *testing.T) {
	rec := get(t, testRouter(&fakeBilling{}, &fakeRegistry{}, ""), "/api/v1/accounts/abc/invoices")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestInvoiceProducts(t *testing.T) {
	b := &fakeBilling{totals: []billing.ProductTotal{
		{
			Product:    "AmazonS3",
			Total:      decimal.RequireFromString("100"),
			Discounted: decimal.RequireFromString("90"),
		},
	}}
	rec := get(t, testRouter(b, &fakeRegistry{}, ""), "/api/v1/invoices/42/products")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body struct {
		InvoiceID uint64 `json:"invoice_id"`
		Products  map[string]struct {
			Undiscounted decimal.Decimal `json:"undiscounted_total"`
			Discounted   decimal.Decimal `json:"discounted_total"`
		} `json:"products"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.InvoiceID != 42 {
		t.Errorf("expected invoice id 42, got %d", body.InvoiceID)
	}
	s3, ok := body.Products["AmazonS3"]
	if !ok {
		t.Fatalf("expected AmazonS3 in products, got %v", body.Products)
	}
	if !s3.Discounted.Equal(decimal.RequireFromString("90")) {
		t.Errorf("expected discounted 90, got %s", s3.Discounted)
	}
}

func TestInvoiceTotals(t *testing.T) {
	b := &fakeBilling{summary: billing.BlendedSummary{
		Undiscounted: decimal.RequireFromString("300"),
		Discounted:   decimal.RequireFromString("290"),
		BlendedRate:  decimal.RequireFromString("0.0333333333333333"),
	}}
	rec := get(t, testRouter(b, &fakeRegistry{}, ""), "/api/v1/invoices/42/totals")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body struct {
		Undiscounted decimal.Decimal `json:"undiscounted_total"`
		Discounted   decimal.Decimal `json:"discounted_total"`
		BlendedRate  decimal.Decimal `json:"blended_discount_rate"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Undiscounted.Equal(decimal.RequireFromString("300")) {
		t.Errorf("expected undiscounted 300, got %s", body.Undiscounted)
	}
}

func TestInvoiceTotals_UndefinedBlendRate(t *testing.T) {
	b := &fakeBilling{err: billing.ErrUndefinedBlendRate}
	rec := get(t, testRouter(b, &fakeRegistry{}, ""), "/api/v1/invoices/42/totals")

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
	var body errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Error.Code != "undefined_blend_rate" {
		t.Errorf("expected code undefined_blend_rate, got %q", body.Error.Code)
	}
}

func TestInvoiceProducts_AmbiguousIdentity(t *testing.T) {
	b := &fakeBilling{err: billing.ErrAmbiguousProductIdentity}
	rec := get(t, testRouter(b, &fakeRegistry{}, ""), "/api/v1/invoices/42/products")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	var body errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Error.Code != "ambiguous_product_identity" {
		t.Errorf("expected code ambiguous_product_identity, got %q", body.Error.Code)
	}
}

func TestAccountReport(t *testing.T) {
	b := &fakeBilling{totals: []billing.ProductTotal{
		{
			Product:    "AmazonS3",
			Total:      decimal.RequireFromString("100"),
			Discounted: decimal.RequireFromString("90"),
		},
	}}
	rec := get(t, testRouter(b, &fakeRegistry{}, ""), "/api/v1/accounts/1/report")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Blended Discount: 10.00%") {
		t.Errorf("unexpected report body:\n%s", rec.Body.String())
	}
}

func TestAdminDiscounts_RequiresKey(t *testing.T) {
	reg := &fakeRegistry{}
	h := testRouter(&fakeBilling{}, reg, "$2a$10$notactuallycheckedhere")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/discounts",
		strings.NewReader(`{"payer_account_id":1,"product":"AmazonS3","discount":"0.1"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without key, got %d", rec.Code)
	}
	if len(reg.put) != 0 {
		t.Errorf("expected no writes, got %d", len(reg.put))
	}
}

func TestAdminDiscounts_DisabledWithoutHash(t *testing.T) {
	rec := get(t, testRouter(&fakeBilling{}, &fakeRegistry{}, ""), "/api/v1/admin/discounts?account_id=1")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 with no admin key configured, got %d", rec.Code)
	}
}

func TestPutRate_Validation(t *testing.T) {
	reg := &fakeRegistry{putErr: discount.ErrRateOutOfRange}
	h := newDiscountsHandler(reg)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/discounts",
		strings.NewReader(`{"payer_account_id":1,"product":"AmazonS3","discount":"1.5"}`))
	rec := httptest.NewRecorder()
	h.PutRate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestPutRate_Succeeds(t *testing.T) {
	reg := &fakeRegistry{}
	h := newDiscountsHandler(reg)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/discounts",
		strings.NewReader(`{"payer_account_id":1,"product":"AmazonS3","discount":"0.12"}`))
	rec := httptest.NewRecorder()
	h.PutRate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(reg.put) != 1 {
		t.Fatalf("expected one write, got %d", len(reg.put))
	}
	if !reg.put[0].Discount.Equal(decimal.RequireFromString("0.12")) {
		t.Errorf("expected discount 0.12, got %s", reg.put[0].Discount)
	}
}
