// Package server assembles the HTTP surface: routes, CORS, and request logging.
package server

import (
	"net/http"
	"time"

	"payment-alerts/backend/internal/dashboard"
	paymenthandler "payment-alerts/backend/internal/payment/handler"
)

// Deps holds the handlers mounted on the router.
//
// Route → handler mapping:
//   - POST /webhook  → internal/payment/handler (GET answers a liveness probe)
//   - GET  /logs     → internal/payment/handler
//   - GET  /dashboard → internal/dashboard
//   - GET  /health   → internal/payment/handler
type Deps struct {
	Payments  *paymenthandler.Handler
	Dashboard *dashboard.Handler
}

// NewRouter builds the mux with all routes and middleware applied.
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", deps.Payments.Webhook)
	mux.HandleFunc("/logs", deps.Payments.Logs)
	mux.HandleFunc("/dashboard", deps.Dashboard.Summary)
	mux.HandleFunc("/health", deps.Payments.Health)
	return withRequestLog(withCORS(mux))
}

// New builds the HTTP server around the assembled router.
func New(addr string, deps Deps) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
