// Package storage persists canonical payment records. Stores are append-only:
// records are never updated or deleted, and List must work before any append
// has ever happened (empty result, not an error).
package storage

import (
	"context"

	"payment-alerts/backend/internal/payment/domain"
)

// Method names reported in append results.
const (
	MethodGoogleSheets = "google_sheets"
	MethodPostgres     = "postgres"
	MethodCSV          = "csv"
	MethodCSVFallback  = "csv_fallback"
)

// Store defines persistence for payment records.
type Store interface {
	// Append adds one record and reports which backend took it. The error is
	// non-nil only when the record was not persisted anywhere.
	Append(ctx context.Context, p domain.Payment) (AppendResult, error)
	// List returns all records in append order.
	List(ctx context.Context) ([]domain.Payment, error)
}

// AppendResult reports where a record landed.
type AppendResult struct {
	Success bool   `json:"success"`
	Method  string `json:"method"`
	Message string `json:"message,omitempty"`
	// Error carries the primary-store failure when the fallback took the write.
	Error string `json:"error,omitempty"`
}

// columnHeaders is the exact header row shared by the Sheets and CSV backends.
// Field names must stay stable: the monitor and dashboard read them back.
var columnHeaders = []string{
	"Payment ID", "Customer Name", "Amount", "Currency", "Timestamp", "Status",
	"Invoice ID", "Invoice Number", "Invoice Date", "Source",
	"Organization ID", "Organization Name",
}

// recordToRow renders a payment in header order.
func recordToRow(p domain.Payment) []string {
	return []string{
		p.PaymentID, p.CustomerName, p.Amount.String(), p.Currency, p.Timestamp,
		p.Status, p.InvoiceID, p.InvoiceNumber, p.InvoiceDate, p.Source,
		p.OrgID, p.OrgName,
	}
}

// rowToRecord maps a stored row back to a payment, tolerating legacy
// six-column rows that predate the invoice/organization columns.
func rowToRecord(row []string) domain.Payment {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	p := domain.Payment{
		PaymentID:     get(0),
		CustomerName:  get(1),
		Amount:        domain.ParseAmount(get(2)),
		Currency:      get(3),
		Timestamp:     get(4),
		Status:        get(5),
		InvoiceID:     get(6),
		InvoiceNumber: get(7),
		InvoiceDate:   get(8),
		Source:        get(9),
		OrgID:         get(10),
		OrgName:       get(11),
	}
	if p.InvoiceID == "" {
		p.InvoiceID = p.PaymentID
	}
	if p.InvoiceNumber == "" {
		p.InvoiceNumber = p.PaymentID
	}
	if p.InvoiceDate == "" {
		p.InvoiceDate = p.Timestamp
	}
	if p.Source == "" {
		p.Source = domain.SourceManual
	}
	return p
}

// isDataRow filters out empty rows and backends that leak their own header
// row into the data range.
func isDataRow(paymentID string) bool {
	return paymentID != "" && paymentID != "Payment ID"
}
