// Package handler exposes the webhook ingestion and log endpoints over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"

	"payment-alerts/backend/internal/payment/domain"
	"payment-alerts/backend/internal/payment/resolver"
	"payment-alerts/backend/internal/payment/service"
)

// Handler serves /webhook, /logs, and /health.
type Handler struct {
	ingestor *service.Ingestor
	baseURL  string
}

// New builds the handler. baseURL may be empty, in which case /health derives
// it from the incoming request.
func New(ingestor *service.Ingestor, baseURL string) *Handler {
	return &Handler{ingestor: ingestor, baseURL: baseURL}
}

// Webhook handles POST /webhook. GET answers with a liveness message so
// webhook configuration can be probed from a browser.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Webhook endpoint is live. Send a POST request with payment data.",
		})
		return
	case http.MethodPost:
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
			"success": false,
			"error":   "method not allowed",
		})
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Invalid JSON payload",
		})
		return
	}

	result, err := h.ingestor.Ingest(r.Context(), payload, r.Header, r.URL.Query())
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrMissingRequiredFields):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "Missing required fields: payment_id, customer_name, amount",
			})
		case errors.Is(err, resolver.ErrUnparseableInvoiceEnvelope):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "Unable to parse invoice data from webhook payload",
			})
		default:
			log.Printf("webhook: ingest failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"success": false,
				"error":   "Internal server error",
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "Payment processed successfully",
		"source":         result.Payment.Source,
		"payment_id":     result.Payment.PaymentID,
		"invoice_id":     result.Payment.InvoiceID,
		"invoice_number": result.Payment.InvoiceNumber,
		"customer_name":  result.Payment.CustomerName,
		"amount":         result.Payment.Amount,
		"currency":       result.Payment.Currency,
		"notification":   result.Notification,
		"storage":        result.Storage,
		"timestamp":      domain.NowISO(),
	})
}

// Logs handles GET /logs, returning all records newest first.
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
			"success": false,
			"error":   "method not allowed",
		})
		return
	}

	payments, err := h.ingestor.List(r.Context())
	if err != nil {
		log.Printf("logs: list payments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Failed to retrieve logs",
		})
		return
	}

	// Newest first. Records without a parseable timestamp sort last.
	sort.SliceStable(payments, func(i, j int) bool {
		ti, _ := payments[i].Time()
		tj, _ := payments[j].Time()
		return ti.After(tj)
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"count":     len(payments),
		"payments":  payments,
		"timestamp": domain.NowISO(),
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	baseURL := h.baseURL
	if baseURL == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		baseURL = scheme + "://" + r.Host
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": domain.NowISO(),
		"baseUrl":   baseURL,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}
