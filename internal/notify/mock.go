package notify

import (
	"context"
	"log"

	"payment-alerts/backend/internal/payment/domain"
)

// MockSender is used when no WhatsApp provider is configured: it logs the
// alert and reports success with Mock set, so the rest of the pipeline
// behaves exactly as in production.
type MockSender struct{}

// Send logs a truncated preview of the message and succeeds.
func (MockSender) Send(_ context.Context, p domain.Payment, customMessage string) (DeliveryResult, error) {
	body := customMessage
	if body == "" {
		body = PaymentAlertMessage(p)
	}
	preview := body
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	log.Printf("notify: [MOCK] whatsapp alert for %s: %q", p.PaymentID, preview)
	return DeliveryResult{
		Success:   true,
		Mock:      true,
		Message:   "WhatsApp alert sent (mock mode)",
		Timestamp: domain.NowISO(),
	}, nil
}
