package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"payment-alerts/backend/internal/notify"
	"payment-alerts/backend/internal/payment/domain"
)

// WithAlertTelemetry wraps a sender so every delivery attempt is emitted as an
// OTel log record. If provider is nil the sender is returned unwrapped.
func WithAlertTelemetry(sender notify.Sender, provider *sdklog.LoggerProvider) notify.Sender {
	if provider == nil {
		return sender
	}
	return &telemetrySender{
		next:   sender,
		logger: provider.Logger("payment-alerts.notify"),
	}
}

type telemetrySender struct {
	next   notify.Sender
	logger otellog.Logger
}

// Send delegates delivery, then emits a log record with the outcome.
// Emission is best-effort and never affects the delivery result.
func (s *telemetrySender) Send(ctx context.Context, p domain.Payment, customMessage string) (notify.DeliveryResult, error) {
	result, err := s.next.Send(ctx, p, customMessage)

	rec := otellog.Record{}
	rec.SetTimestamp(time.Now().UTC())
	rec.SetBody(otellog.StringValue("payment alert dispatched"))
	rec.AddAttributes(
		otellog.String("payment_id", p.PaymentID),
		otellog.String("status", p.Status),
		otellog.String("source", p.Source),
		otellog.Bool("success", result.Success),
		otellog.Bool("mock", result.Mock),
		otellog.Bool("queued", result.Queued),
	)
	if p.OrgID != "" {
		rec.AddAttributes(otellog.String("org_id", p.OrgID))
	}
	if err != nil {
		rec.AddAttributes(otellog.String("error", err.Error()))
	}
	s.logger.Emit(ctx, rec)

	return result, err
}
