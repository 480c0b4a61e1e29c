// Package notify dispatches outbound WhatsApp alerts for payment events.
// Delivery is best-effort: callers surface failures in their result payloads
// and never let them abort ingestion or storage.
package notify

import (
	"context"

	"payment-alerts/backend/internal/payment/domain"
)

// Sender delivers one notification for a payment record. customMessage, when
// non-empty, replaces the default payment-alert body (used for invoice-created
// events). Implementations return failures as errors; callers log and report,
// never retry.
type Sender interface {
	Send(ctx context.Context, p domain.Payment, customMessage string) (DeliveryResult, error)
}

// DeliveryResult reports the outcome of one dispatch attempt.
type DeliveryResult struct {
	Success bool `json:"success"`
	// Mock is true when no real provider is configured and the alert was only logged.
	Mock bool `json:"mock"`
	// Queued is true when the alert was handed to the delivery queue rather than sent inline.
	Queued     bool   `json:"queued,omitempty"`
	MessageSID string `json:"messageSid,omitempty"`
	Status     string `json:"status,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Job is the wire format for queued deliveries: written to Kafka by the server
// and consumed by cmd/worker.
type Job struct {
	Payment       domain.Payment `json:"payment"`
	CustomMessage string         `json:"custom_message,omitempty"`
	EnqueuedAt    string         `json:"enqueued_at"`
}
