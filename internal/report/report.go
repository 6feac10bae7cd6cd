// Package report renders billing summaries as fixed-width text for terminal
// consumption.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/dthorne/curview/internal/billing"
	"github.com/shopspring/decimal"
)

// SummarySource is the slice of the billing service the report consumes.
type SummarySource interface {
	ProductBreakdown(ctx context.Context, scope billing.Scope) ([]billing.ProductTotal, error)
}

// ForAccount builds the full account report: per-product breakdown plus
// blended totals. Accounts with no positive usage surface the undefined
// blend rate error rather than a misleading 0% figure.
func ForAccount(ctx context.Context, src SummarySource, accountID uint64) (string, error) {
	totals, err := src.ProductBreakdown(ctx, billing.AccountScope(accountID))
	if err != nil {
		return "", err
	}
	summary, err := billing.Blend(totals)
	if err != nil {
		return "", fmt.Errorf("account %d: %w", accountID, err)
	}
	return Account(accountID, totals, summary), nil
}

// Account renders the report text. All figures are rounded to two decimal
// places for display only; the inputs carry full precision.
func Account(accountID uint64, totals []billing.ProductTotal, summary billing.BlendedSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Account ID: %d\n\n", accountID)
	b.WriteString("Billing Summary:\n\n")

	fmt.Fprintf(&b, "   %-30s   %10s   %-10s\n", "Product", "Total", "Discounted")
	fmt.Fprintf(&b, "   %s   %s   %s\n",
		strings.Repeat("-", 30), strings.Repeat("-", 10), strings.Repeat("-", 10))
	for _, pt := range totals {
		fmt.Fprintf(&b, "   %-30s  $%10s  $%10s\n",
			pt.Product, pt.Total.StringFixed(2), pt.Discounted.StringFixed(2))
	}

	b.WriteString("\nBilling Totals:\n\n")
	fmt.Fprintf(&b, "    Undiscounted: $%s\n", summary.Undiscounted.StringFixed(2))
	fmt.Fprintf(&b, "      Discounted: $%s\n", summary.Discounted.StringFixed(2))

	percent := summary.BlendedRate.Mul(decimal.NewFromInt(100))
	fmt.Fprintf(&b, "\nBlended Discount: %s%%\n", percent.StringFixed(2))

	return b.String()
}
