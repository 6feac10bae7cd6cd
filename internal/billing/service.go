package billing

import (
	"context"

	"github.com/dthorne/curview/internal/discount"
	"github.com/shopspring/decimal"
)

// UsageSource is the read surface of the usage store consumed by Service.
type UsageSource interface {
	ListAccounts(ctx context.Context) ([]uint64, error)
	ListInvoices(ctx context.Context, accountID uint64) ([]Invoice, error)
	UsageInScope(ctx context.Context, scope Scope) ([]UsageLine, error)
}

// RateSource provides the effective discount rate table per payer account.
type RateSource interface {
	RatesFor(ctx context.Context, accountID uint64) (discount.RateTable, error)
}

// Service composes the usage store, the discount registry and the pure
// aggregation pipeline into the externally consumed summary operations. It is
// stateless: every query recomputes from the store's current contents.
type Service struct {
	usage UsageSource
	rates RateSource
}

// NewService creates a Service over the given usage and rate sources.
func NewService(usage UsageSource, rates RateSource) *Service {
	return &Service{usage: usage, rates: rates}
}

// ListAccounts returns the payer account ids present in the store.
func (s *Service) ListAccounts(ctx context.Context) ([]uint64, error) {
	return s.usage.ListAccounts(ctx)
}

// ListInvoices returns the invoices for an account, most recent first.
func (s *Service) ListInvoices(ctx context.Context, accountID uint64) ([]Invoice, error) {
	return s.usage.ListInvoices(ctx, accountID)
}

// ProductBreakdown returns the per-product cost totals for a scope, ordered
// by product identity. A scope matching no usage yields an empty result.
func (s *Service) ProductBreakdown(ctx context.Context, scope Scope) ([]ProductTotal, error) {
	lines, err := s.usage.UsageInScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	// One rate table per payer account seen in scope. Account scopes see
	// exactly one; invoice scopes normally do too.
	tables := make(map[uint64]discount.RateTable)
	for _, line := range lines {
		if _, ok := tables[line.PayerAccountID]; ok {
			continue
		}
		table, err := s.rates.RatesFor(ctx, line.PayerAccountID)
		if err != nil {
			return nil, err
		}
		tables[line.PayerAccountID] = table
	}

	return Aggregate(lines, rateSet(tables))
}

// BlendedTotals aggregates a scope and reduces it to the blended summary.
// Scopes with no positive-cost usage return ErrUndefinedBlendRate.
func (s *Service) BlendedTotals(ctx context.Context, scope Scope) (BlendedSummary, error) {
	totals, err := s.ProductBreakdown(ctx, scope)
	if err != nil {
		return BlendedSummary{}, err
	}
	return Blend(totals)
}

// rateSet adapts per-account rate tables to the RateLookup contract.
type rateSet map[uint64]discount.RateTable

func (r rateSet) Rate(accountID uint64, product string) decimal.Decimal {
	if table, ok := r[accountID]; ok {
		if rate, ok := table[product]; ok {
			return rate
		}
	}
	return decimal.Decimal{}
}
