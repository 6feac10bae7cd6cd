package discount

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrProductRequired means a rate write named no product identity.
	ErrProductRequired = errors.New("product identity is required")

	// ErrRateOutOfRange means a rate write carried a discount outside [0, 1).
	ErrRateOutOfRange = errors.New("discount must be at least 0 and below 1")

	// ErrRegistryInconsistency means more than one effective rate was
	// observed for a single (account, product) key. It signals a
	// consolidation bug and is never a valid query result.
	ErrRegistryInconsistency = errors.New("multiple effective rates for one account and product")
)

// Registry holds negotiated discount rates keyed by payer account and product
// identity. The table's primary key guarantees at most one effective rate per
// key; writes for an existing key replace the prior value atomically.
type Registry struct {
	pool *pgxpool.Pool
}

// NewRegistry creates a Registry backed by the given connection pool.
func NewRegistry(pool *pgxpool.Pool) *Registry {
	return &Registry{pool: pool}
}

// validate checks a rate write before it touches the store.
func validate(r Rate) error {
	if r.Product == "" {
		return ErrProductRequired
	}
	if r.Discount.Sign() < 0 || r.Discount.Cmp(decimal.NewFromInt(1)) >= 0 {
		return fmt.Errorf("%w: got %s", ErrRateOutOfRange, r.Discount)
	}
	return nil
}

// Put inserts or replaces the rate for (account, product). The upsert is a
// single statement, so a read after a committed Put observes exactly one
// effective value for the key.
func (g *Registry) Put(ctx context.Context, r Rate) error {
	if err := validate(r); err != nil {
		return err
	}

	_, err := g.pool.Exec(ctx,
		`INSERT INTO discount_rates (payer_account_id, product_identity, discount, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (payer_account_id, product_identity)
		DO UPDATE SET discount = EXCLUDED.discount, updated_at = now()`,
		r.PayerAccountID, r.Product, r.Discount.String())
	if err != nil {
		return fmt.Errorf("upserting discount rate: %w", err)
	}
	return nil
}

// Delete removes the rate for (account, product). Deleting an absent key is
// not an error.
func (g *Registry) Delete(ctx context.Context, accountID uint64, product string) error {
	if product == "" {
		return ErrProductRequired
	}
	_, err := g.pool.Exec(ctx,
		`DELETE FROM discount_rates WHERE payer_account_id = $1 AND product_identity = $2`,
		accountID, product)
	if err != nil {
		return fmt.Errorf("deleting discount rate: %w", err)
	}
	return nil
}

// List returns all effective rates for a payer account, ordered by product.
func (g *Registry) List(ctx context.Context, accountID uint64) ([]Rate, error) {
	rows, err := g.pool.Query(ctx,
		`SELECT payer_account_id, product_identity, discount::text, updated_at
		FROM discount_rates
		WHERE payer_account_id = $1
		ORDER BY product_identity`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing discount rates: %w", err)
	}
	defer rows.Close()

	var rates []Rate
	for rows.Next() {
		var r Rate
		var raw string
		if err := rows.Scan(&r.PayerAccountID, &r.Product, &raw, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning discount rate: %w", err)
		}
		r.Discount, err = decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing discount %q: %w", raw, err)
		}
		rates = append(rates, r)
	}
	return rates, rows.Err()
}

// RatesFor returns the effective rate table for a payer account. Accounts
// with no negotiated rates yield an empty table, not an error.
func (g *Registry) RatesFor(ctx context.Context, accountID uint64) (RateTable, error) {
	rows, err := g.pool.Query(ctx,
		`SELECT product_identity, discount::text
		FROM discount_rates
		WHERE payer_account_id = $1`, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading rate table for account %d: %w", accountID, err)
	}
	defer rows.Close()

	table := make(RateTable)
	for rows.Next() {
		var product, raw string
		if err := rows.Scan(&product, &raw); err != nil {
			return nil, fmt.Errorf("scanning rate table row: %w", err)
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing discount %q: %w", raw, err)
		}
		if err := table.add(product, rate); err != nil {
			return nil, fmt.Errorf("account %d product %q: %w", accountID, product, err)
		}
	}
	return table, rows.Err()
}
