package storage

import (
	"context"
	"log"

	"payment-alerts/backend/internal/payment/domain"
)

// FallbackStore wraps a remote primary store with a local CSV fallback so a
// remote outage never loses a webhook. Appends that land in the fallback are
// reported with the csv_fallback method and carry the primary failure.
type FallbackStore struct {
	primary  Store
	fallback *CSVStore
}

// WithFallback pairs a primary store with a CSV fallback.
func WithFallback(primary Store, fallback *CSVStore) *FallbackStore {
	return &FallbackStore{primary: primary, fallback: fallback}
}

// Append tries the primary first. On failure it writes to the CSV fallback
// and still reports success, since the record was persisted.
func (s *FallbackStore) Append(ctx context.Context, p domain.Payment) (AppendResult, error) {
	res, err := s.primary.Append(ctx, p)
	if err == nil {
		return res, nil
	}
	log.Printf("storage: primary append failed for %s, falling back to CSV: %v", p.PaymentID, err)

	fres, ferr := s.fallback.Append(ctx, p)
	if ferr != nil {
		fres.Error = err.Error()
		return fres, ferr
	}
	fres.Method = MethodCSVFallback
	fres.Message = "primary store unavailable, logged to CSV"
	fres.Error = err.Error()
	return fres, nil
}

// List reads from the primary, falling back to the CSV log when the primary
// is unreachable.
func (s *FallbackStore) List(ctx context.Context) ([]domain.Payment, error) {
	records, err := s.primary.List(ctx)
	if err == nil {
		return records, nil
	}
	log.Printf("storage: primary list failed, reading CSV fallback: %v", err)
	return s.fallback.List(ctx)
}
