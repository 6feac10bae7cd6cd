package billing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RateLookup yields the discount fraction negotiated for a payer account and
// product identity. Absence of a negotiated rate is a valid business state and
// must yield zero, never an error.
type RateLookup interface {
	Rate(accountID uint64, product string) decimal.Decimal
}

// Aggregate groups usage lines by product identity and sums, per group, the
// raw cost and the cost after applying each line's negotiated discount.
// Groups whose raw total is not positive are dropped, and the result is
// ordered ascending by product identity so repeated runs over the same data
// produce identical output.
//
// Callers are expected to pass lines already narrowed to a single scope and
// to "Usage" line items.
func Aggregate(lines []UsageLine, rates RateLookup) ([]ProductTotal, error) {
	type group struct {
		total      decimal.Decimal
		discounted decimal.Decimal
	}

	one := decimal.NewFromInt(1)
	groups := make(map[string]*group)

	for _, line := range lines {
		product, err := ProductIdentity(line)
		if err != nil {
			return nil, err
		}

		g := groups[product]
		if g == nil {
			g = &group{}
			groups[product] = g
		}

		rate := rates.Rate(line.PayerAccountID, product)
		g.total = g.total.Add(line.UnblendedCost)
		g.discounted = g.discounted.Add(line.UnblendedCost.Mul(one.Sub(rate)))
	}

	totals := make([]ProductTotal, 0, len(groups))
	for product, g := range groups {
		// Refund and credit lines can drag a group to or below zero.
		if g.total.Sign() <= 0 {
			continue
		}
		totals = append(totals, ProductTotal{
			Product:    product,
			Total:      g.total,
			Discounted: g.discounted,
		})
	}

	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Product < totals[j].Product
	})

	return totals, nil
}
