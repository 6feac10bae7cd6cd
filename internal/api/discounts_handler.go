package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dthorne/curview/internal/discount"
	"github.com/shopspring/decimal"
)

// DiscountRegistry is the write-and-list surface of the discount registry
// exposed to administrators.
type DiscountRegistry interface {
	Put(ctx context.Context, r discount.Rate) error
	Delete(ctx context.Context, accountID uint64, product string) error
	List(ctx context.Context, accountID uint64) ([]discount.Rate, error)
}

// discountsHandler groups the admin discount rate handlers.
type discountsHandler struct {
	registry DiscountRegistry
}

func newDiscountsHandler(registry DiscountRegistry) *discountsHandler {
	return &discountsHandler{registry: registry}
}

type rateInput struct {
	PayerAccountID uint64          `json:"payer_account_id"`
	Product        string          `json:"product"`
	Discount       decimal.Decimal `json:"discount"`
}

// PutRate handles PUT /api/v1/admin/discounts: insert or replace the rate for
// one (account, product) key.
func (h *discountsHandler) PutRate(w http.ResponseWriter, r *http.Request) {
	var in rateInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body: "+err.Error())
		return
	}
	if in.PayerAccountID == 0 {
		writeError(w, http.StatusBadRequest, "invalid_params", "payer_account_id is required")
		return
	}

	rate := discount.Rate{
		PayerAccountID: in.PayerAccountID,
		Product:        in.Product,
		Discount:       in.Discount,
	}
	if err := h.registry.Put(r.Context(), rate); err != nil {
		if errors.Is(err, discount.ErrProductRequired) || errors.Is(err, discount.ErrRateOutOfRange) {
			writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to store discount rate")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"payer_account_id": in.PayerAccountID,
		"product":          in.Product,
		"discount":         in.Discount,
	})
}

// ListRates handles GET /api/v1/admin/discounts?account_id=N.
func (h *discountsHandler) ListRates(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseUint(r.URL.Query().Get("account_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", "account_id query parameter is required")
		return
	}

	rates, err := h.registry.List(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rates == nil {
		rates = []discount.Rate{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rates": rates})
}

// DeleteRate handles DELETE /api/v1/admin/discounts.
func (h *discountsHandler) DeleteRate(w http.ResponseWriter, r *http.Request) {
	var in rateInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body: "+err.Error())
		return
	}
	if in.PayerAccountID == 0 || in.Product == "" {
		writeError(w, http.StatusBadRequest, "invalid_params", "payer_account_id and product are required")
		return
	}

	if err := h.registry.Delete(r.Context(), in.PayerAccountID, in.Product); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete discount rate")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
