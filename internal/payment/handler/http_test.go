package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"payment-alerts/backend/internal/notify"
	"payment-alerts/backend/internal/payment/domain"
	"payment-alerts/backend/internal/payment/resolver"
	"payment-alerts/backend/internal/payment/service"
	"payment-alerts/backend/internal/storage"
)

type memStore struct {
	records []domain.Payment
}

func (m *memStore) Append(_ context.Context, p domain.Payment) (storage.AppendResult, error) {
	m.records = append(m.records, p)
	return storage.AppendResult{Success: true, Method: storage.MethodCSV}, nil
}

func (m *memStore) List(context.Context) ([]domain.Payment, error) {
	return append([]domain.Payment(nil), m.records...), nil
}

type silentSender struct{}

func (silentSender) Send(context.Context, domain.Payment, string) (notify.DeliveryResult, error) {
	return notify.DeliveryResult{Success: true, Mock: true}, nil
}

func newTestHandler(store *memStore) *Handler {
	r := &resolver.Resolver{DefaultCurrency: "INR"}
	return New(service.NewIngestor(r, store, silentSender{}), "")
}

func TestWebhook_ManualPayment(t *testing.T) {
	store := &memStore{}
	h := newTestHandler(store)

	body := `{"payment_id":"P1","customer_name":"Acme","amount":1500,"status":"paid"}`
	rec := httptest.NewRecorder()
	h.Webhook(rec, httptest.NewRequest("POST", "/webhook", strings.NewReader(body)))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success      bool                   `json:"success"`
		Source       string                 `json:"source"`
		PaymentID    string                 `json:"payment_id"`
		Customer     string                 `json:"customer_name"`
		Currency     string                 `json:"currency"`
		Notification *notify.DeliveryResult `json:"notification"`
		Storage      storage.AppendResult   `json:"storage"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.PaymentID != "P1" {
		t.Errorf("resp = %+v, want success for P1", resp)
	}
	if resp.Source != domain.SourceManual || resp.Customer != "Acme" || resp.Currency != "INR" {
		t.Errorf("resp = %+v, want echoed record fields", resp)
	}
	if resp.Notification == nil || !resp.Notification.Success {
		t.Errorf("notification = %+v, want success", resp.Notification)
	}
	if !resp.Storage.Success || len(store.records) != 1 {
		t.Errorf("storage = %+v (%d rows), want success", resp.Storage, len(store.records))
	}
}

func TestWebhook_GetProbe(t *testing.T) {
	h := newTestHandler(&memStore{})
	rec := httptest.NewRecorder()
	h.Webhook(rec, httptest.NewRequest("GET", "/webhook", nil))
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), "endpoint is live") {
		t.Errorf("GET probe = %d %s, want liveness message", rec.Code, rec.Body.String())
	}
}

func TestWebhook_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(&memStore{})
	rec := httptest.NewRecorder()
	h.Webhook(rec, httptest.NewRequest("DELETE", "/webhook", nil))
	if rec.Code != 405 {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestWebhook_InvalidJSON(t *testing.T) {
	h := newTestHandler(&memStore{})
	rec := httptest.NewRecorder()
	h.Webhook(rec, httptest.NewRequest("POST", "/webhook", strings.NewReader("{not json")))
	if rec.Code != 400 || !strings.Contains(rec.Body.String(), "Invalid JSON") {
		t.Errorf("resp = %d %s, want invalid JSON error", rec.Code, rec.Body.String())
	}
}

func TestWebhook_MissingFields(t *testing.T) {
	h := newTestHandler(&memStore{})
	rec := httptest.NewRecorder()
	h.Webhook(rec, httptest.NewRequest("POST", "/webhook", strings.NewReader(`{"payment_id":"P1"}`)))
	if rec.Code != 400 || !strings.Contains(rec.Body.String(), "Missing required fields") {
		t.Errorf("resp = %d %s, want missing-fields error", rec.Code, rec.Body.String())
	}
}

func TestWebhook_ZohoInvoiceEnvelope(t *testing.T) {
	store := &memStore{}
	h := newTestHandler(store)

	body := `{"data":{"invoice":{"invoice_number":"INV-7","customer_name":"Acme","total":250,"status":"payment_made"}}}`
	rec := httptest.NewRecorder()
	h.Webhook(rec, httptest.NewRequest("POST", "/webhook", strings.NewReader(body)))

	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(store.records) != 1 || store.records[0].Status != "paid" {
		t.Errorf("stored = %+v, want one record with paid status", store.records)
	}
}

func TestLogs_NewestFirst(t *testing.T) {
	store := &memStore{records: []domain.Payment{
		{PaymentID: "OLD", Amount: decimal.NewFromInt(1), Timestamp: "2025-01-01T00:00:00.000Z"},
		{PaymentID: "NEW", Amount: decimal.NewFromInt(1), Timestamp: "2025-06-01T00:00:00.000Z"},
		{PaymentID: "NOTIME", Amount: decimal.NewFromInt(1)},
	}}
	h := newTestHandler(store)

	rec := httptest.NewRecorder()
	h.Logs(rec, httptest.NewRequest("GET", "/logs", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Success  bool             `json:"success"`
		Count    int              `json:"count"`
		Payments []domain.Payment `json:"payments"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 3 || len(resp.Payments) != 3 {
		t.Fatalf("count = %d, want 3", resp.Count)
	}
	if resp.Payments[0].PaymentID != "NEW" || resp.Payments[1].PaymentID != "OLD" {
		t.Errorf("order = %s, %s, %s, want NEW first and NOTIME last",
			resp.Payments[0].PaymentID, resp.Payments[1].PaymentID, resp.Payments[2].PaymentID)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&memStore{})
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "http://example.com/health", nil))

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" || resp["timestamp"] == "" {
		t.Errorf("resp = %v, want ok with timestamp", resp)
	}
	if resp["baseUrl"] != "http://example.com" {
		t.Errorf("baseUrl = %q, want derived from request host", resp["baseUrl"])
	}
}

func TestHealth_ExplicitBaseURL(t *testing.T) {
	store := &memStore{}
	r := &resolver.Resolver{DefaultCurrency: "INR"}
	h := New(service.NewIngestor(r, store, silentSender{}), "https://alerts.example.com")

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/health", nil))
	if !strings.Contains(rec.Body.String(), "https://alerts.example.com") {
		t.Errorf("body = %s, want configured base URL", rec.Body.String())
	}
}
