package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageLine is a single line item of billing usage as read from the store.
// Lines are immutable once ingested; this package only reads them.
type UsageLine struct {
	PayerAccountID uint64
	InvoiceID      uint64
	PeriodEnd      time.Time
	ServiceCode    string
	ProductName    string
	LineItemType   string
	UnblendedCost  decimal.Decimal
}

// ProductTotal holds the summed raw and discounted cost for one product.
type ProductTotal struct {
	Product    string          `json:"product"`
	Total      decimal.Decimal `json:"total"`
	Discounted decimal.Decimal `json:"discounted"`
}

// BlendedSummary reduces a set of product totals to a single overall rate:
// the fraction by which negotiated discounts reduce undiscounted spend.
type BlendedSummary struct {
	Undiscounted decimal.Decimal `json:"undiscounted_total"`
	Discounted   decimal.Decimal `json:"discounted_total"`
	BlendedRate  decimal.Decimal `json:"blended_discount_rate"`
}

// Invoice identifies one invoice and the latest billing period end date
// observed on its usage lines.
type Invoice struct {
	InvoiceID uint64
	EndDate   time.Time
}

// Scope selects the usage subset for one computation: all usage for a payer
// account, or all usage for an invoice. The two modes are mutually exclusive.
type Scope struct {
	id        uint64
	byInvoice bool
}

// AccountScope selects all usage billed to the given payer account.
func AccountScope(accountID uint64) Scope {
	return Scope{id: accountID}
}

// InvoiceScope selects all usage on the given invoice.
func InvoiceScope(invoiceID uint64) Scope {
	return Scope{id: invoiceID, byInvoice: true}
}
