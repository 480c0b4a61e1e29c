// Package domain defines the canonical payment record and its normalization rules.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The webhook and dashboard wire formats carry amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Payment sources.
const (
	SourceManual    = "manual"
	SourceZohoBooks = "zoho_books"
)

// UnknownCustomer is the customer name applied when a record carries none.
const UnknownCustomer = "Unknown Customer"

// Payment is the canonical record for one invoice/payment event, independent
// of the webhook shape it arrived in. Records are append-only: created once at
// ingestion or discovered once by the monitor, never mutated.
type Payment struct {
	// PaymentID is the primary identity; equals the invoice number when
	// available, else a generated identifier. Non-empty past validation, but
	// not unique in storage (duplicates are tolerated, not merged).
	PaymentID     string          `json:"payment_id"`
	InvoiceID     string          `json:"invoice_id,omitempty"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	CustomerName  string          `json:"customer_name"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	Source        string          `json:"source"`
	OrgID         string          `json:"organization_id,omitempty"`
	OrgName       string          `json:"organization_name,omitempty"`
	InvoiceDate   string          `json:"invoice_date,omitempty"`
	// Timestamp is the ISO-8601 observation time, assigned at ingestion when
	// the source omitted it. Never re-derived from storage.
	Timestamp string `json:"timestamp"`
}

// ParseAmount coerces an arbitrary payload value to a non-negative decimal.
// Unparsable or negative input yields zero; it never fails.
func ParseAmount(v any) decimal.Decimal {
	var d decimal.Decimal
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		d = t
	case float64:
		d = decimal.NewFromFloat(t)
	case float32:
		d = decimal.NewFromFloat32(t)
	case int:
		d = decimal.NewFromInt(int64(t))
	case int64:
		d = decimal.NewFromInt(t)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	default:
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Normalize applies the canonical defaults in place: status lower-cased and
// trimmed, currency defaulted, customer name defaulted, invoice id/number
// falling back to the payment id.
func (p *Payment) Normalize(defaultCurrency string) {
	p.Status = strings.ToLower(strings.TrimSpace(p.Status))
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}
	if strings.TrimSpace(p.CustomerName) == "" {
		p.CustomerName = UnknownCustomer
	}
	if p.InvoiceID == "" {
		p.InvoiceID = p.PaymentID
	}
	if p.InvoiceNumber == "" {
		p.InvoiceNumber = p.PaymentID
	}
}

// Time parses the record timestamp tolerantly. ok is false when the value is
// absent or unparsable; callers decide whether that means "skip" or "assume new".
func (p *Payment) Time() (time.Time, bool) {
	return ParseTimestamp(p.Timestamp)
}
