// Package ingest loads AWS Cost and Usage Report (CUR) CSV exports into the
// usage store as an idempotent full-table replace.
package ingest

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dthorne/curview/internal/billing"
	"github.com/shopspring/decimal"
)

// CUR column headers consumed by the loader. Everything else in the export is
// ignored.
const (
	colPayerAccountID = "bill/PayerAccountId"
	colInvoiceID      = "bill/InvoiceId"
	colPeriodEnd      = "bill/BillingPeriodEndDate"
	colLineItemType   = "lineItem/LineItemType"
	colUnblendedCost  = "lineItem/UnblendedCost"
	colServiceCode    = "product/servicecode"
	colProductName    = "product/ProductName"
)

var requiredColumns = []string{
	colPayerAccountID, colInvoiceID, colPeriodEnd,
	colLineItemType, colUnblendedCost, colServiceCode, colProductName,
}

// UsageReplacer is the write surface of the usage store.
type UsageReplacer interface {
	ReplaceAll(ctx context.Context, lines []billing.UsageLine, batchSize int) error
}

// Loader parses CUR exports and replaces the usage store contents with them.
type Loader struct {
	store     UsageReplacer
	batchSize int
}

// NewLoader creates a Loader writing batches of batchSize rows per statement.
func NewLoader(store UsageReplacer, batchSize int) *Loader {
	return &Loader{store: store, batchSize: batchSize}
}

// LoadFile reads a CUR CSV export (gzipped when the path ends in .gz) and
// replaces the usage store contents. It returns the number of rows loaded.
func (l *Loader) LoadFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening usage export: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return l.Load(ctx, r)
}

// Load parses a CUR CSV stream and replaces the usage store contents.
func (l *Loader) Load(ctx context.Context, r io.Reader) (int, error) {
	lines, err := ParseCUR(r)
	if err != nil {
		return 0, err
	}
	if err := l.store.ReplaceAll(ctx, lines, l.batchSize); err != nil {
		return 0, err
	}
	return len(lines), nil
}

// ParseCUR reads a CUR CSV stream into usage lines. The header row decides
// column positions; a malformed row fails the whole parse with its row number
// so a bad export never half-loads.
func ParseCUR(r io.Reader) ([]billing.UsageLine, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CUR header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("CUR export missing column %q", name)
		}
	}

	var lines []billing.UsageLine
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CUR row %d: %w", row+1, err)
		}
		row++

		line, err := parseLine(record, idx)
		if err != nil {
			return nil, fmt.Errorf("CUR row %d: %w", row, err)
		}
		lines = append(lines, line)
	}

	return lines, nil
}

func parseLine(record []string, idx map[string]int) (billing.UsageLine, error) {
	var line billing.UsageLine
	var err error

	line.PayerAccountID, err = parseID(record[idx[colPayerAccountID]])
	if err != nil {
		return line, fmt.Errorf("payer account id: %w", err)
	}
	line.InvoiceID, err = parseID(record[idx[colInvoiceID]])
	if err != nil {
		return line, fmt.Errorf("invoice id: %w", err)
	}
	line.PeriodEnd, err = parseDate(record[idx[colPeriodEnd]])
	if err != nil {
		return line, fmt.Errorf("billing period end date: %w", err)
	}
	line.UnblendedCost, err = parseCost(record[idx[colUnblendedCost]])
	if err != nil {
		return line, fmt.Errorf("unblended cost: %w", err)
	}

	line.ServiceCode = record[idx[colServiceCode]]
	line.ProductName = record[idx[colProductName]]
	line.LineItemType = record[idx[colLineItemType]]

	return line, nil
}

// parseID parses a numeric CUR identifier. CUR leaves the invoice id blank
// until the billing period closes; that maps to 0.
func parseID(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

// parseDate accepts the timestamp format CUR uses for period boundaries and a
// date-only fallback.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func parseCost(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(s)
}
