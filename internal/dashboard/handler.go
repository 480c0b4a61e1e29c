package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"payment-alerts/backend/internal/payment/domain"
)

// Lister is the read side of the store the dashboard summarizes.
type Lister interface {
	List(ctx context.Context) ([]domain.Payment, error)
}

// Handler serves the dashboard summary endpoint.
type Handler struct {
	store           Lister
	defaultCurrency string
}

// NewHandler builds the dashboard handler.
func NewHandler(store Lister, defaultCurrency string) *Handler {
	return &Handler{store: store, defaultCurrency: defaultCurrency}
}

// Summary handles GET /dashboard.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := h.store.List(r.Context())
	if err != nil {
		log.Printf("dashboard: list payments: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "Failed to build dashboard summary",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"summary": Summarize(records, h.defaultCurrency),
	})
}
