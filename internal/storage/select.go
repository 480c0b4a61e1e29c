package storage

import (
	"context"
	"log"

	"payment-alerts/backend/internal/config"
	"payment-alerts/backend/internal/db"
)

// Select picks the storage backend from configuration: Google Sheets when a
// sheet and credentials are configured, else Postgres when DATABASE_URL is
// set, else the CSV log. Remote backends are wrapped with the CSV fallback.
// A remote backend that fails to initialize degrades to CSV instead of
// blocking startup. The returned closer releases backend resources.
func Select(ctx context.Context, cfg *config.Config) (Store, func() error) {
	noop := func() error { return nil }
	csvStore := NewCSVStore(cfg.CSVPath)

	if cfg.SheetsConfigured() {
		sheetsStore, err := NewSheetsStore(ctx, cfg.SheetID, cfg.GoogleCredsPath, cfg.GoogleCredsJSON)
		if err != nil {
			log.Printf("storage: google sheets unavailable, using CSV log: %v", err)
			return csvStore, noop
		}
		log.Printf("storage: using Google Sheets (sheet %s) with CSV fallback", cfg.SheetID)
		return WithFallback(sheetsStore, csvStore), noop
	}

	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Printf("storage: postgres unavailable, using CSV log: %v", err)
			return csvStore, noop
		}
		log.Printf("storage: using Postgres with CSV fallback")
		return WithFallback(NewPostgresStore(conn), csvStore), conn.Close
	}

	log.Printf("storage: using CSV log at %s", cfg.CSVPath)
	return csvStore, noop
}
