package discount

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rate is one negotiated discount for a payer account and product identity.
// The discount is a fraction in [0, 1): 0.12 means 12% off.
type Rate struct {
	PayerAccountID uint64          `json:"payer_account_id"`
	Product        string          `json:"product"`
	Discount       decimal.Decimal `json:"discount"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RateTable holds the effective rates for one payer account, keyed by product
// identity. Each key appears at most once.
type RateTable map[string]decimal.Decimal

// add records a rate for a product, rejecting duplicates: observing two
// effective rates for one key means the store's consolidation is broken.
func (t RateTable) add(product string, rate decimal.Decimal) error {
	if _, ok := t[product]; ok {
		return ErrRegistryInconsistency
	}
	t[product] = rate
	return nil
}
