package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"payment-alerts/backend/internal/payment/domain"
)

// CSVStore appends payment records to a local CSV file. It is the zero-config
// backend and the fallback target for the remote stores.
type CSVStore struct {
	path string

	mu sync.Mutex
}

// NewCSVStore creates a CSV-backed store at path. The file and its parent
// directory are created lazily on first append.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file location.
func (s *CSVStore) Path() string { return s.path }

// Append writes one record as a CSV row, creating the file with a header row
// if it does not exist yet.
func (s *CSVStore) Append(_ context.Context, p domain.Payment) (AppendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFile(); err != nil {
		return AppendResult{Method: MethodCSV}, err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return AppendResult{Method: MethodCSV}, fmt.Errorf("open csv log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(recordToRow(p)); err != nil {
		return AppendResult{Method: MethodCSV}, fmt.Errorf("write csv row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return AppendResult{Method: MethodCSV}, fmt.Errorf("flush csv row: %w", err)
	}
	return AppendResult{Success: true, Method: MethodCSV, Message: "logged to CSV"}, nil
}

// List reads every data row back. A missing file means no records yet.
func (s *CSVStore) List(_ context.Context) ([]domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Payment{}, nil
		}
		return nil, fmt.Errorf("open csv log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Rows written before the schema grew have fewer columns. Accept them.
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv log: %w", err)
	}

	records := make([]domain.Payment, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 || !isDataRow(row[0]) {
			continue
		}
		records = append(records, rowToRecord(row))
	}
	return records, nil
}

func (s *CSVStore) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat csv log: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create csv log dir: %w", err)
		}
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create csv log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columnHeaders); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	w.Flush()
	return w.Error()
}
