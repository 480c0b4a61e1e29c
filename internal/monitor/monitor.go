// Package monitor polls the payment store for rows appended outside the
// webhook path (for example, edits made directly in the spreadsheet) and
// sends alerts for the ones that trigger.
package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"payment-alerts/backend/internal/notify"
	"payment-alerts/backend/internal/payment/domain"
)

// recencyWindow bounds how old a row's timestamp may be before a newly seen
// row is considered backfill rather than a fresh payment.
const recencyWindow = 2 * time.Hour

// Lister is the read side of the store the monitor watches.
type Lister interface {
	List(ctx context.Context) ([]domain.Payment, error)
}

// Monitor tracks a row-count watermark over the store. Rows past the
// watermark are new; the watermark advances every successful poll whether or
// not anything was alerted, so a row is considered at most once.
type Monitor struct {
	store    Lister
	sender   notify.Sender
	interval time.Duration

	// pollMu makes polls single-flight: a tick that fires while the previous
	// poll is still running is skipped, not queued.
	pollMu sync.Mutex

	mu          sync.Mutex
	initialized bool
	lastSeen    int

	now func() time.Time

	rowsSeen metric.Int64Counter
	alerted  metric.Int64Counter
}

// New creates a monitor over the given store. Metrics go through the global
// meter provider, a no-op until telemetry is configured.
func New(store Lister, sender notify.Sender, interval time.Duration) *Monitor {
	meter := otel.Meter("payment-alerts/monitor")
	rowsSeen, err := meter.Int64Counter("monitor_rows_seen_total")
	if err != nil {
		log.Printf("monitor: init counter: %v", err)
	}
	alerted, err := meter.Int64Counter("monitor_rows_alerted_total")
	if err != nil {
		log.Printf("monitor: init counter: %v", err)
	}
	return &Monitor{
		store:    store,
		sender:   sender,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		rowsSeen: rowsSeen,
		alerted:  alerted,
	}
}

// Run polls until the context is cancelled. The first poll only establishes
// the watermark; rows that existed before startup never alert.
func (m *Monitor) Run(ctx context.Context) {
	log.Printf("monitor: starting, polling every %s", m.interval)
	if _, err := m.PollOnce(ctx); err != nil {
		log.Printf("monitor: initial poll: %v", err)
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("monitor: stopped")
			return
		case <-ticker.C:
			if _, err := m.PollOnce(ctx); err != nil {
				log.Printf("monitor: poll: %v", err)
			}
		}
	}
}

// PollOnce runs one poll cycle and returns how many alerts were dispatched.
// A poll that overlaps a still-running one is skipped. A failed read leaves
// the watermark untouched so the missed rows are picked up next time.
func (m *Monitor) PollOnce(ctx context.Context) (int, error) {
	if !m.pollMu.TryLock() {
		log.Printf("monitor: previous poll still running, skipping")
		return 0, nil
	}
	defer m.pollMu.Unlock()

	records, err := m.store.List(ctx)
	if err != nil {
		return 0, err
	}
	count := len(records)

	m.mu.Lock()
	if !m.initialized {
		m.initialized = true
		m.lastSeen = count
		m.mu.Unlock()
		log.Printf("monitor: watermark initialized at %d rows", count)
		return 0, nil
	}
	from := m.lastSeen
	if count <= from {
		m.mu.Unlock()
		if count < from {
			log.Printf("monitor: store shrank from %d to %d rows, watermark unchanged", from, count)
		}
		return 0, nil
	}
	m.lastSeen = count
	m.mu.Unlock()

	notified := 0
	for _, p := range records[from:count] {
		if m.shouldAlert(p) {
			m.alert(ctx, p)
			notified++
		}
	}
	if m.rowsSeen != nil {
		m.rowsSeen.Add(ctx, int64(count-from))
	}
	if m.alerted != nil {
		m.alerted.Add(ctx, int64(notified))
	}
	log.Printf("monitor: %d new rows, %d alerted", count-from, notified)
	return notified, nil
}

// shouldAlert applies the header guard, the trigger-status gate, and the
// recency window. A row whose timestamp cannot be parsed is assumed new:
// missing a real payment is worse than a duplicate alert.
func (m *Monitor) shouldAlert(p domain.Payment) bool {
	if !isPaymentRow(p) {
		return false
	}
	if !domain.IsTriggerStatus(p.Status) {
		return false
	}
	t, ok := p.Time()
	if !ok {
		return true
	}
	return m.now().Sub(t) <= recencyWindow
}

func (m *Monitor) alert(ctx context.Context, p domain.Payment) {
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := m.sender.Send(sendCtx, p, ""); err != nil {
		log.Printf("monitor: alert failed for %s: %v", p.PaymentID, err)
		return
	}
	log.Printf("monitor: alerted for %s (%s %s)", p.PaymentID, p.Currency, p.Amount)
}

// isPaymentRow rejects blank rows and a header row that leaked into the data
// range after manual sheet edits.
func isPaymentRow(p domain.Payment) bool {
	return p.PaymentID != "" && p.PaymentID != "Payment ID"
}
