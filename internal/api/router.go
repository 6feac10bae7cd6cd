package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dthorne/curview/internal/auth"
	"github.com/dthorne/curview/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Billing      BillingService
	Discounts    DiscountRegistry
	Metrics      *metrics.Metrics
	AdminKeyHash string
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(slogRequestLogger)
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}

	bills := newBillingHandler(deps.Billing)
	rates := newDiscountsHandler(deps.Discounts)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public lookup routes.
	r.Route("/api/v1", func(pr chi.Router) {
		pr.Get("/accounts", bills.ListAccounts)
		pr.Get("/accounts/{accountID}/invoices", bills.ListInvoices)
		pr.Get("/accounts/{accountID}/report", bills.AccountReport)
		pr.Get("/invoices/{invoiceID}/products", bills.InvoiceProducts)
		pr.Get("/invoices/{invoiceID}/totals", bills.InvoiceTotals)
	})

	// Admin routes (require admin key).
	r.Route("/api/v1/admin", func(ar chi.Router) {
		ar.Use(auth.AdminAuth(deps.AdminKeyHash))

		ar.Put("/discounts", rates.PutRate)
		ar.Get("/discounts", rates.ListRates)
		ar.Delete("/discounts", rates.DeleteRate)
	})

	if deps.Metrics != nil {
		r.Get("/metrics/summary", deps.Metrics.Handler())
	}

	return r
}

// slogRequestLogger is a simple structured logging middleware using slog.
func slogRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", ww.BytesWritten(),
		)
	})
}

// metricsMiddleware records request counts and latencies against the chi
// route pattern rather than the raw path, keeping label cardinality bounded.
func metricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}

			m.HTTPRequestsTotal.WithLabelValues(
				r.Method, pattern, strconv.Itoa(ww.Status())).Inc()
			m.HTTPRequestDuration.WithLabelValues(
				r.Method, pattern).Observe(time.Since(start).Seconds())
		})
	}
}
