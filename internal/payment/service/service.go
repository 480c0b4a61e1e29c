// Package service runs the webhook ingestion pipeline: resolve the payload to
// a canonical record, decide whether to alert, then persist. Notification and
// storage are independent best-effort steps; a record is never dropped because
// the alert provider is down, and an alert is never skipped because storage is.
package service

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"payment-alerts/backend/internal/notify"
	"payment-alerts/backend/internal/payment/domain"
	"payment-alerts/backend/internal/payment/resolver"
	"payment-alerts/backend/internal/storage"
)

// IngestResult reports the outcome of one webhook: the canonical record plus
// the independent notification and storage outcomes.
type IngestResult struct {
	Payment domain.Payment
	Shape   resolver.Shape
	// Notification is nil when the record's status did not trigger an alert.
	Notification *notify.DeliveryResult
	Storage      storage.AppendResult
}

// Ingestor is the webhook ingestion service.
type Ingestor struct {
	resolver *resolver.Resolver
	store    storage.Store
	sender   notify.Sender

	ingested      metric.Int64Counter
	notifications metric.Int64Counter
	storageFails  metric.Int64Counter
}

// NewIngestor wires the pipeline. Metrics go through the global meter
// provider, which is a no-op until telemetry is configured.
func NewIngestor(r *resolver.Resolver, store storage.Store, sender notify.Sender) *Ingestor {
	meter := otel.Meter("payment-alerts/ingest")
	ingested, err := meter.Int64Counter("webhooks_ingested_total")
	if err != nil {
		log.Printf("ingest: init counter: %v", err)
	}
	notifications, err := meter.Int64Counter("notifications_dispatched_total")
	if err != nil {
		log.Printf("ingest: init counter: %v", err)
	}
	storageFails, err := meter.Int64Counter("storage_append_failures_total")
	if err != nil {
		log.Printf("ingest: init counter: %v", err)
	}
	return &Ingestor{
		resolver:      r,
		store:         store,
		sender:        sender,
		ingested:      ingested,
		notifications: notifications,
		storageFails:  storageFails,
	}
}

// Ingest processes one webhook delivery. Resolution failures are returned to
// the caller (bad request); downstream notification and storage failures are
// captured in the result instead, since by then the payload was valid.
func (s *Ingestor) Ingest(ctx context.Context, payload map[string]any, headers http.Header, query url.Values) (*IngestResult, error) {
	res, err := s.resolver.Resolve(payload, headers, query)
	if err != nil {
		return nil, err
	}

	p := res.Payment
	p.Normalize(s.resolver.DefaultCurrency)
	if p.Timestamp == "" {
		p.Timestamp = domain.NowISO()
	}

	log.Printf("ingest: %s payment %s (%s %s, status %q, source %s)",
		res.Shape, p.PaymentID, p.Currency, p.Amount, p.Status, p.Source)
	if s.ingested != nil {
		s.ingested.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("source", p.Source),
				attribute.String("shape", res.Shape.String()),
			))
	}

	out := &IngestResult{Payment: p, Shape: res.Shape}
	if res.InvoiceCreated || domain.IsTriggerStatus(p.Status) {
		out.Notification = s.dispatch(ctx, p, res.InvoiceCreated)
	} else {
		log.Printf("ingest: status %q does not trigger an alert for %s", p.Status, p.PaymentID)
	}

	out.Storage = s.append(ctx, p)
	return out, nil
}

func (s *Ingestor) dispatch(ctx context.Context, p domain.Payment, invoiceCreated bool) *notify.DeliveryResult {
	message := ""
	if invoiceCreated {
		message = notify.InvoiceCreatedMessage(p)
	}
	result, err := s.sender.Send(ctx, p, message)
	if err != nil {
		log.Printf("ingest: notification failed for %s: %v", p.PaymentID, err)
	}
	if s.notifications != nil {
		s.notifications.Add(ctx, 1,
			metric.WithAttributes(attribute.Bool("success", result.Success)))
	}
	return &result
}

func (s *Ingestor) append(ctx context.Context, p domain.Payment) storage.AppendResult {
	result, err := s.store.Append(ctx, p)
	if err != nil {
		log.Printf("ingest: storage append failed for %s: %v", p.PaymentID, err)
		if s.storageFails != nil {
			s.storageFails.Add(ctx, 1)
		}
	}
	return result
}

// List returns all stored payment records.
func (s *Ingestor) List(ctx context.Context) ([]domain.Payment, error) {
	return s.store.List(ctx)
}
