package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"payment-alerts/backend/internal/payment/domain"
)

func testRecord(id string) domain.Payment {
	return domain.Payment{
		PaymentID:     id,
		InvoiceID:     "inv-" + id,
		InvoiceNumber: "INV-" + id,
		CustomerName:  "Acme Corp",
		Amount:        decimal.NewFromFloat(1500.50),
		Currency:      "INR",
		Status:        "paid",
		Source:        domain.SourceZohoBooks,
		OrgID:         "ORG_1",
		OrgName:       "Alpha",
		InvoiceDate:   "2025-01-15",
		Timestamp:     "2025-01-15T10:00:00.000Z",
	}
}

func TestCSVStore_ListBeforeAnyAppend(t *testing.T) {
	s := NewCSVStore(filepath.Join(t.TempDir(), "payments.csv"))
	records, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records before any append, want 0", len(records))
	}
}

func TestCSVStore_AppendAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "payments.csv")
	s := NewCSVStore(path)
	ctx := context.Background()

	for _, id := range []string{"P1", "P2"} {
		res, err := s.Append(ctx, testRecord(id))
		if err != nil {
			t.Fatalf("Append(%s): %v", id, err)
		}
		if !res.Success || res.Method != MethodCSV {
			t.Errorf("Append(%s) result = %+v, want csv success", id, res)
		}
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].PaymentID != "P1" || records[1].PaymentID != "P2" {
		t.Errorf("records out of append order: %s, %s", records[0].PaymentID, records[1].PaymentID)
	}
	got := records[0]
	if got.CustomerName != "Acme Corp" || !got.Amount.Equal(decimal.NewFromFloat(1500.50)) {
		t.Errorf("record = %+v, want round-tripped fields", got)
	}
	if got.OrgID != "ORG_1" || got.InvoiceDate != "2025-01-15" {
		t.Errorf("record = %+v, want organization and invoice fields preserved", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.HasPrefix(string(data), "Payment ID,Customer Name,Amount") {
		t.Errorf("file missing header row:\n%s", data)
	}
}

func TestCSVStore_ToleratesLegacyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payments.csv")
	legacy := "Payment ID,Customer Name,Amount,Currency,Timestamp,Status\n" +
		"P1,Old Customer,500,USD,2024-06-01T10:00:00.000Z,pending\n"
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewCSVStore(path)
	records, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	p := records[0]
	if p.PaymentID != "P1" || p.Status != "pending" {
		t.Errorf("record = %+v, want legacy fields mapped", p)
	}
	if p.InvoiceID != "P1" || p.InvoiceNumber != "P1" {
		t.Errorf("record = %+v, want invoice fields defaulted to payment id", p)
	}
	if p.Source != domain.SourceManual {
		t.Errorf("source = %q, want %q default", p.Source, domain.SourceManual)
	}
}

func TestCSVStore_SkipsBlankAndHeaderRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payments.csv")
	content := "Payment ID,Customer Name,Amount,Currency,Timestamp,Status\n" +
		",,,,,\n" +
		"P1,Acme,100,INR,2025-01-01T00:00:00.000Z,paid\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewCSVStore(path)
	records, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].PaymentID != "P1" {
		t.Errorf("records = %+v, want only P1", records)
	}
}

type failingStore struct {
	err error
}

func (f *failingStore) Append(context.Context, domain.Payment) (AppendResult, error) {
	return AppendResult{Method: MethodGoogleSheets}, f.err
}

func (f *failingStore) List(context.Context) ([]domain.Payment, error) {
	return nil, f.err
}

type okStore struct {
	appended []domain.Payment
}

func (s *okStore) Append(_ context.Context, p domain.Payment) (AppendResult, error) {
	s.appended = append(s.appended, p)
	return AppendResult{Success: true, Method: MethodGoogleSheets}, nil
}

func (s *okStore) List(context.Context) ([]domain.Payment, error) {
	return s.appended, nil
}

func TestFallbackStore_UsesPrimaryWhenHealthy(t *testing.T) {
	primary := &okStore{}
	fb := WithFallback(primary, NewCSVStore(filepath.Join(t.TempDir(), "payments.csv")))

	res, err := fb.Append(context.Background(), testRecord("P1"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if res.Method != MethodGoogleSheets {
		t.Errorf("method = %q, want primary method", res.Method)
	}
	if len(primary.appended) != 1 {
		t.Errorf("primary got %d appends, want 1", len(primary.appended))
	}
}

func TestFallbackStore_FallsBackOnPrimaryFailure(t *testing.T) {
	boom := errors.New("sheets quota exceeded")
	csvStore := NewCSVStore(filepath.Join(t.TempDir(), "payments.csv"))
	fb := WithFallback(&failingStore{err: boom}, csvStore)
	ctx := context.Background()

	res, err := fb.Append(ctx, testRecord("P1"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if !res.Success || res.Method != MethodCSVFallback {
		t.Errorf("result = %+v, want csv_fallback success", res)
	}
	if !strings.Contains(res.Error, "sheets quota exceeded") {
		t.Errorf("result error = %q, want primary failure recorded", res.Error)
	}

	records, err := fb.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].PaymentID != "P1" {
		t.Errorf("records = %+v, want fallback-written record via fallback read", records)
	}
}
