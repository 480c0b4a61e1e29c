// seed inserts sample payment records for local dashboard testing.
// Idempotent: it skips inserting when the store already has records.
package main

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"payment-alerts/backend/internal/config"
	"payment-alerts/backend/internal/payment/domain"
	"payment-alerts/backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore := storage.Select(ctx, cfg)
	defer func() { _ = closeStore() }()

	existing, err := store.List(ctx)
	if err != nil {
		log.Fatalf("seed: list: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("seed: store already has %d records, nothing to do", len(existing))
		return
	}

	now := time.Now().UTC()
	samples := []domain.Payment{
		record("PAY-1001", "Acme Traders", 150000, "paid", "Alpha Retail", now.Add(-72*time.Hour)),
		record("PAY-1002", "Northwind Ltd", 84500, "paid", "Alpha Retail", now.Add(-48*time.Hour)),
		record("PAY-1003", "Globex Pvt", 230000, "processed", "Beta Wholesale", now.Add(-36*time.Hour)),
		record("PAY-1004", "Initech Services", 56000, "pending", "Beta Wholesale", now.Add(-30*time.Hour)),
		record("PAY-1005", "Umbrella Foods", 120000, "overdue", "Alpha Retail", now.Add(-200*time.Hour)),
		record("PAY-1006", "Wayne Supplies", 98000, "risk", "Gamma Exports", now.Add(-96*time.Hour)),
		record("PAY-1007", "Stark Metals", 410000, "unpaid", "Gamma Exports", now.Add(-24*time.Hour)),
		record("PAY-1008", "Dunder Paper", 15500, "draft", "", now.Add(-12*time.Hour)),
	}

	for _, p := range samples {
		if _, err := store.Append(ctx, p); err != nil {
			log.Fatalf("seed: append %s: %v", p.PaymentID, err)
		}
	}
	log.Printf("seed: inserted %d sample payments", len(samples))
}

func record(id, customer string, amount int64, status, org string, at time.Time) domain.Payment {
	p := domain.Payment{
		PaymentID:    id,
		CustomerName: customer,
		Amount:       decimal.NewFromInt(amount),
		Currency:     "INR",
		Status:       status,
		Source:       domain.SourceManual,
		OrgName:      org,
		Timestamp:    at.Format("2006-01-02T15:04:05.000Z"),
	}
	p.Normalize("INR")
	return p
}
