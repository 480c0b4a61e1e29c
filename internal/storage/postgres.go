package storage

import (
	"context"
	"database/sql"
	"fmt"

	"payment-alerts/backend/internal/payment/domain"
)

// PostgresStore persists payment records in the payments table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle. Schema is managed by
// cmd/migrate, not here.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const insertPayment = `
INSERT INTO payments (
    payment_id, invoice_id, invoice_number, customer_name, amount, currency,
    status, source, organization_id, organization_name, invoice_date, recorded_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const selectPayments = `
SELECT payment_id, invoice_id, invoice_number, customer_name, amount::text, currency,
       status, source, organization_id, organization_name, invoice_date, recorded_at
FROM payments
ORDER BY id ASC`

// Append inserts one record.
func (s *PostgresStore) Append(ctx context.Context, p domain.Payment) (AppendResult, error) {
	_, err := s.db.ExecContext(ctx, insertPayment,
		p.PaymentID, p.InvoiceID, p.InvoiceNumber, p.CustomerName,
		p.Amount.String(), p.Currency, p.Status, p.Source,
		p.OrgID, p.OrgName, p.InvoiceDate, p.Timestamp,
	)
	if err != nil {
		return AppendResult{Method: MethodPostgres}, fmt.Errorf("insert payment: %w", err)
	}
	return AppendResult{Success: true, Method: MethodPostgres, Message: "logged to Postgres"}, nil
}

// List returns all records in insertion order.
func (s *PostgresStore) List(ctx context.Context) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, selectPayments)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	records := []domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		var amount string
		if err := rows.Scan(
			&p.PaymentID, &p.InvoiceID, &p.InvoiceNumber, &p.CustomerName,
			&amount, &p.Currency, &p.Status, &p.Source,
			&p.OrgID, &p.OrgName, &p.InvoiceDate, &p.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Amount = domain.ParseAmount(amount)
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return records, nil
}
