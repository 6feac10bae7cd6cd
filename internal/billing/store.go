package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// lineItemUsage is the only line item type that participates in cost
// aggregation; credits, taxes and fees are excluded at the query level.
const lineItemUsage = "Usage"

// Store provides database operations over ingested usage lines.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ListAccounts returns the distinct payer account ids present in the store,
// in ascending order.
func (s *Store) ListAccounts(ctx context.Context) ([]uint64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT payer_account_id FROM usage_lines ORDER BY payer_account_id`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning account id: %w", err)
		}
		accounts = append(accounts, id)
	}
	return accounts, rows.Err()
}

// ListInvoices returns the invoices for a payer account with each invoice's
// latest billing period end date, most recent first.
func (s *Store) ListInvoices(ctx context.Context, accountID uint64) ([]Invoice, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT invoice_id, MAX(billing_period_end_date)
		FROM usage_lines
		WHERE payer_account_id = $1
		GROUP BY invoice_id
		ORDER BY 2 DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing invoices for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.InvoiceID, &inv.EndDate); err != nil {
			return nil, fmt.Errorf("scanning invoice row: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// UsageInScope returns the usage lines selected by the scope, already
// narrowed to "Usage" line items. Costs are transported as numeric text so
// no precision is lost on the way into decimals.
func (s *Store) UsageInScope(ctx context.Context, scope Scope) ([]UsageLine, error) {
	scopeCol := "payer_account_id"
	if scope.byInvoice {
		scopeCol = "invoice_id"
	}

	query := `SELECT payer_account_id, invoice_id, billing_period_end_date,
			service_code, product_name, line_item_type, unblended_cost::text
		FROM usage_lines
		WHERE ` + scopeCol + ` = $1 AND line_item_type = $2`

	rows, err := s.pool.Query(ctx, query, scope.id, lineItemUsage)
	if err != nil {
		return nil, fmt.Errorf("querying usage lines: %w", err)
	}
	defer rows.Close()

	var lines []UsageLine
	for rows.Next() {
		var line UsageLine
		var cost string
		if err := rows.Scan(
			&line.PayerAccountID, &line.InvoiceID, &line.PeriodEnd,
			&line.ServiceCode, &line.ProductName, &line.LineItemType, &cost,
		); err != nil {
			return nil, fmt.Errorf("scanning usage line: %w", err)
		}
		line.UnblendedCost, err = decimal.NewFromString(cost)
		if err != nil {
			return nil, fmt.Errorf("parsing unblended cost %q: %w", cost, err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// ReplaceAll atomically replaces the full contents of the usage table with
// the given lines, writing them in multi-row INSERT batches. Re-running a
// load with the same input leaves the table in the same state.
func (s *Store) ReplaceAll(ctx context.Context, lines []UsageLine, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 500
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning usage load transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE usage_lines`); err != nil {
		return fmt.Errorf("truncating usage lines: %w", err)
	}

	const cols = 7
	for start := 0; start < len(lines); start += batchSize {
		end := start + batchSize
		if end > len(lines) {
			end = len(lines)
		}
		batch := lines[start:end]

		args := make([]any, 0, len(batch)*cols)
		placeholders := make([]string, 0, len(batch))
		for i, line := range batch {
			base := i * cols
			placeholders = append(placeholders, fmt.Sprintf(
				"($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			))
			args = append(args,
				line.PayerAccountID,
				line.InvoiceID,
				line.PeriodEnd,
				line.ServiceCode,
				line.ProductName,
				line.LineItemType,
				line.UnblendedCost.String(),
			)
		}

		query := `INSERT INTO usage_lines
			(payer_account_id, invoice_id, billing_period_end_date,
			 service_code, product_name, line_item_type, unblended_cost)
			VALUES ` + strings.Join(placeholders, ", ")

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting usage lines: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing usage load: %w", err)
	}
	return nil
}
