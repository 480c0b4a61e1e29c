// Package resolver detects which known webhook shape an inbound payload
// matches and extracts a canonical payment record from it.
package resolver

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"payment-alerts/backend/internal/payment/domain"
)

// Sentinel errors; the handler maps them to a 400 response.
var (
	// ErrMissingRequiredFields: manual-format payload without payment_id,
	// customer_name, and amount all present and non-empty.
	ErrMissingRequiredFields = errors.New("missing required fields: payment_id, customer_name, amount")
	// ErrUnparseableInvoiceEnvelope: a Zoho-identifying header was present but
	// no invoice data was found under any known wrapper.
	ErrUnparseableInvoiceEnvelope = errors.New("could not locate invoice data in webhook payload")
)

// Shape enumerates the known webhook payload shapes, in detection priority order.
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeInvoiceCreatedEvent carries an explicit invoice-created event type.
	ShapeInvoiceCreatedEvent
	// ShapeDirectInvoice nests the invoice under a top-level "invoice" key.
	ShapeDirectInvoice
	// ShapeDataInvoice nests it under data.invoice.
	ShapeDataInvoice
	// ShapePayloadInvoice nests it under payload.invoice.
	ShapePayloadInvoice
	// ShapeEventData nests it under event.data.
	ShapeEventData
	// ShapeFlatInvoice carries invoice_id/invoice_number at the top level.
	ShapeFlatInvoice
	// ShapeZohoHeader is detected from a Zoho-identifying header token alone.
	ShapeZohoHeader
	// ShapeManual is the legacy manual JSON format.
	ShapeManual
)

// String returns the shape name for logs.
func (s Shape) String() string {
	switch s {
	case ShapeInvoiceCreatedEvent:
		return "invoice_created_event"
	case ShapeDirectInvoice:
		return "direct_invoice"
	case ShapeDataInvoice:
		return "data_invoice"
	case ShapePayloadInvoice:
		return "payload_invoice"
	case ShapeEventData:
		return "event_data"
	case ShapeFlatInvoice:
		return "flat_invoice"
	case ShapeZohoHeader:
		return "zoho_header"
	case ShapeManual:
		return "manual"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of a successful resolve.
type Resolution struct {
	Payment domain.Payment
	Shape   Shape
	// InvoiceCreated is true when the payload declared an explicit
	// invoice-created event; the pipeline always notifies for these.
	InvoiceCreated bool
}

// Resolver turns raw webhook payloads into canonical records. Pure transform:
// the same payload, headers, and query always yield the same record apart from
// generated identifiers.
type Resolver struct {
	// DefaultCurrency is applied when no currency field is found.
	DefaultCurrency string
	// DefaultOrgID/DefaultOrgName are the last fallback for organization enrichment.
	DefaultOrgID   string
	DefaultOrgName string
	// OrgDirectory maps organization id→name; consulted in both directions.
	OrgDirectory map[string]string
}

// matcher extracts invoice data for one shape, or reports no match.
type matcher struct {
	shape Shape
	match func(payload map[string]any) (map[string]any, bool)
}

// envelopeMatchers are tried in order; the first match wins.
var envelopeMatchers = []matcher{
	{ShapeDirectInvoice, func(p map[string]any) (map[string]any, bool) { return childMap(p, "invoice") }},
	{ShapeDataInvoice, func(p map[string]any) (map[string]any, bool) { return childMap(p, "data", "invoice") }},
	{ShapePayloadInvoice, func(p map[string]any) (map[string]any, bool) { return childMap(p, "payload", "invoice") }},
	{ShapeEventData, func(p map[string]any) (map[string]any, bool) { return childMap(p, "event", "data") }},
	{ShapeFlatInvoice, func(p map[string]any) (map[string]any, bool) {
		if stringAt(p, "invoice_id") != "" || stringAt(p, "invoice_number") != "" {
			return p, true
		}
		return nil, false
	}},
}

// Resolve detects the payload shape and extracts a canonical record.
// Detection order: explicit invoice-created marker, nested invoice wrappers,
// flat invoice fields, Zoho header token, then the manual/legacy format.
func (r *Resolver) Resolve(payload map[string]any, headers http.Header, query url.Values) (*Resolution, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	invoiceCreated := isInvoiceCreatedEvent(payload)
	invoiceData, shape := matchEnvelope(payload)

	if invoiceCreated && invoiceData != nil {
		shape = ShapeInvoiceCreatedEvent
	}

	if invoiceData == nil && invoiceCreated {
		// Explicit invoice-created marker but nothing under any known wrapper.
		return nil, ErrUnparseableInvoiceEnvelope
	}

	if invoiceData == nil && hasZohoHeader(headers) {
		// A flat Zoho payload without invoice fields still resolves when the
		// whole body looks like invoice data (e.g. only customer/total keys).
		if stringAt(payload, "customer_name") != "" || valueAt(payload, "total") != nil {
			invoiceData, shape = payload, ShapeZohoHeader
		} else {
			return nil, ErrUnparseableInvoiceEnvelope
		}
	}

	if invoiceData != nil {
		p := r.extractInvoice(payload, invoiceData, headers, query)
		return &Resolution{Payment: p, Shape: shape, InvoiceCreated: invoiceCreated}, nil
	}

	p, err := r.extractManual(payload, headers, query)
	if err != nil {
		return nil, err
	}
	return &Resolution{Payment: p, Shape: ShapeManual}, nil
}

func matchEnvelope(payload map[string]any) (map[string]any, Shape) {
	for _, m := range envelopeMatchers {
		if data, ok := m.match(payload); ok {
			return data, m.shape
		}
	}
	return nil, ShapeUnknown
}

// extractInvoice builds the canonical record for the Zoho Books branch using
// ordered fallback chains per field.
func (r *Resolver) extractInvoice(payload, inv map[string]any, headers http.Header, query url.Values) domain.Payment {
	invoiceID := firstNonEmpty(
		func() string { return stringAt(inv, "invoice_id") },
		func() string { return stringAt(inv, "invoice_number") },
		func() string { return stringAt(inv, "id") },
		func() string { return stringAt(inv, "invoiceId") },
	)
	if invoiceID == "" {
		invoiceID = "INV-" + uuid.NewString()
	}

	invoiceNumber := firstNonEmpty(
		func() string { return stringAt(inv, "invoice_number") },
		func() string { return stringAt(inv, "invoiceNumber") },
		func() string { return stringAt(inv, "invoice_id") },
	)
	if invoiceNumber == "" {
		invoiceNumber = invoiceID
	}

	customer := firstNonEmpty(
		func() string { return stringAt(inv, "customer_name") },
		func() string { return stringAt(inv, "customerName") },
		func() string { return stringAt(inv, "customer", "customer_name") },
		func() string { return stringAt(inv, "customer", "name") },
	)
	if customer == "" {
		customer = domain.UnknownCustomer
	}

	amount := domain.ParseAmount(firstValue(
		func() any { return valueAt(inv, "total") },
		func() any { return valueAt(inv, "grand_total") },
		func() any { return valueAt(inv, "amount") },
		func() any { return valueAt(inv, "invoice_amount") },
	))

	currency := firstNonEmpty(
		func() string { return stringAt(inv, "currency_code") },
		func() string { return stringAt(inv, "currencyCode") },
		func() string { return stringAt(inv, "currency") },
	)
	if currency == "" {
		currency = r.DefaultCurrency
	}

	invoiceDate := firstNonEmpty(
		func() string { return stringAt(inv, "invoice_date") },
		func() string { return stringAt(inv, "date") },
		func() string { return stringAt(inv, "created_time") },
		func() string { return stringAt(inv, "created_at") },
	)

	status := normalizeZohoStatus(firstNonEmpty(
		func() string { return stringAt(inv, "payment_status") },
		func() string { return stringAt(inv, "status") },
	))

	orgID, orgName := r.resolveOrganization(payload, inv, headers, query)

	return domain.Payment{
		PaymentID:     invoiceNumber,
		InvoiceID:     invoiceID,
		InvoiceNumber: invoiceNumber,
		CustomerName:  customer,
		Amount:        amount,
		Currency:      currency,
		Status:        status,
		Source:        domain.SourceZohoBooks,
		OrgID:         orgID,
		OrgName:       orgName,
		InvoiceDate:   invoiceDate,
		Timestamp:     stringAt(inv, "timestamp"),
	}
}

// extractManual validates and builds the canonical record for the legacy
// manual JSON format.
func (r *Resolver) extractManual(payload map[string]any, headers http.Header, query url.Values) (domain.Payment, error) {
	paymentID := stringAt(payload, "payment_id")
	customer := stringAt(payload, "customer_name")
	amountRaw := valueAt(payload, "amount")
	if paymentID == "" || customer == "" || amountRaw == nil {
		return domain.Payment{}, ErrMissingRequiredFields
	}

	currency := stringAt(payload, "currency")
	if currency == "" {
		currency = r.DefaultCurrency
	}
	status := strings.ToLower(strings.TrimSpace(stringAt(payload, "status")))
	if status == "" {
		// Manual entries default inside the trigger set so the legacy
		// always-notify behavior of the manual webhook is preserved.
		status = "processed"
	}

	orgID, orgName := r.resolveOrganization(payload, payload, headers, query)

	return domain.Payment{
		PaymentID:    paymentID,
		CustomerName: customer,
		Amount:       domain.ParseAmount(amountRaw),
		Currency:     currency,
		Status:       status,
		Source:       domain.SourceManual,
		OrgID:        orgID,
		OrgName:      orgName,
		Timestamp:    stringAt(payload, "timestamp"),
	}, nil
}

// zohoPaidAliases map Zoho's paid-like payment statuses onto "paid".
var zohoPaidAliases = map[string]struct{}{
	"paid": {}, "payment_made": {}, "payment_received": {}, "fully_paid": {},
}

func normalizeZohoStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return "created"
	}
	if _, ok := zohoPaidAliases[s]; ok {
		return "paid"
	}
	return s
}

func isInvoiceCreatedEvent(payload map[string]any) bool {
	eventType := firstNonEmpty(
		func() string { return stringAt(payload, "event_type") },
		func() string { return stringAt(payload, "event", "type") },
		func() string { return stringAt(payload, "type") },
	)
	s := strings.ToLower(eventType)
	return strings.Contains(s, "invoice") && strings.Contains(s, "creat")
}

// zohoHeaderNames are header spellings whose presence identifies a Zoho webhook.
var zohoHeaderNames = []string{"X-Zoho-Webhook", "X-Zoho-Service", "X-Zohobooks-Signature"}

func hasZohoHeader(headers http.Header) bool {
	if headers == nil {
		return false
	}
	for _, name := range zohoHeaderNames {
		if headers.Get(name) != "" {
			return true
		}
	}
	return strings.Contains(strings.ToLower(headers.Get("User-Agent")), "zoho")
}
