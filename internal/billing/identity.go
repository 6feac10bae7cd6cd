package billing

import "fmt"

// ProductIdentity derives the canonical product label for a usage line: the
// service code when present, otherwise the product name. This label is both
// the grouping key for aggregation and the join key for discount lookup.
func ProductIdentity(line UsageLine) (string, error) {
	if line.ServiceCode != "" {
		return line.ServiceCode, nil
	}
	if line.ProductName != "" {
		return line.ProductName, nil
	}
	return "", fmt.Errorf("account %d invoice %d: %w",
		line.PayerAccountID, line.InvoiceID, ErrAmbiguousProductIdentity)
}
