package billing

import "github.com/shopspring/decimal"

// Blend reduces per-product totals into a single blended discount summary.
// The rate is 1 - discounted/undiscounted; when the undiscounted total is not
// positive the rate does not exist and ErrUndefinedBlendRate is returned so
// callers can distinguish "no qualifying usage" from a genuine 0% rate.
func Blend(totals []ProductTotal) (BlendedSummary, error) {
	var undiscounted, discounted decimal.Decimal
	for _, t := range totals {
		undiscounted = undiscounted.Add(t.Total)
		discounted = discounted.Add(t.Discounted)
	}

	if undiscounted.Sign() <= 0 {
		return BlendedSummary{}, ErrUndefinedBlendRate
	}

	rate := decimal.NewFromInt(1).Sub(discounted.Div(undiscounted))

	return BlendedSummary{
		Undiscounted: undiscounted,
		Discounted:   discounted,
		BlendedRate:  rate,
	}, nil
}
