package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"payment-alerts/backend/internal/notify"
	"payment-alerts/backend/internal/payment/domain"
)

type fakeStore struct {
	mu      sync.Mutex
	records []domain.Payment
	listErr error
	block   chan struct{}
}

func (f *fakeStore) List(context.Context) ([]domain.Payment, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Payment, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeStore) add(ps ...domain.Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, ps...)
}

type recordingSender struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
}

func (r *recordingSender) Send(_ context.Context, p domain.Payment, _ string) (notify.DeliveryResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, p.PaymentID)
	if r.sendErr != nil {
		return notify.DeliveryResult{Success: false, Error: r.sendErr.Error()}, r.sendErr
	}
	return notify.DeliveryResult{Success: true}, nil
}

func (r *recordingSender) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func row(id, status string, ts string) domain.Payment {
	return domain.Payment{
		PaymentID:    id,
		CustomerName: "Acme",
		Amount:       decimal.NewFromInt(100),
		Currency:     "INR",
		Status:       status,
		Timestamp:    ts,
	}
}

func recent() string { return baseTime.Add(-10 * time.Minute).Format("2006-01-02T15:04:05.000Z") }
func stale() string  { return baseTime.Add(-3 * time.Hour).Format("2006-01-02T15:04:05.000Z") }

func newTestMonitor(store *fakeStore, sender *recordingSender) *Monitor {
	m := New(store, sender, time.Second)
	m.now = func() time.Time { return baseTime }
	return m
}

func TestPollOnce_FirstPollOnlySetsWatermark(t *testing.T) {
	store := &fakeStore{}
	store.add(row("P1", "paid", recent()), row("P2", "paid", recent()))
	sender := &recordingSender{}
	m := newTestMonitor(store, sender)

	n, err := m.PollOnce(context.Background())
	if err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if n != 0 || len(sender.ids()) != 0 {
		t.Errorf("first poll alerted %d rows, want 0 (pre-existing rows)", n)
	}
}

func TestPollOnce_AlertsOnlyRowsPastWatermark(t *testing.T) {
	store := &fakeStore{}
	store.add(row("P1", "paid", recent()))
	sender := &recordingSender{}
	m := newTestMonitor(store, sender)
	ctx := context.Background()

	if _, err := m.PollOnce(ctx); err != nil {
		t.Fatal(err)
	}
	store.add(row("P2", "paid", recent()), row("P3", "pending", recent()))

	n, err := m.PollOnce(ctx)
	if err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if n != 1 {
		t.Errorf("alerted %d rows, want 1", n)
	}
	if got := sender.ids(); len(got) != 1 || got[0] != "P2" {
		t.Errorf("alerted %v, want [P2]: pending must not trigger", got)
	}

	// Same rows again: watermark advanced, nothing new.
	n, err = m.PollOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("repeat poll alerted %d rows, want 0", n)
	}
}

func TestPollOnce_StaleRowsAdvanceWatermarkWithoutAlert(t *testing.T) {
	store := &fakeStore{}
	sender := &recordingSender{}
	m := newTestMonitor(store, sender)
	ctx := context.Background()

	if _, err := m.PollOnce(ctx); err != nil {
		t.Fatal(err)
	}
	store.add(row("OLD", "paid", stale()))

	n, err := m.PollOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("alerted %d rows, want 0 for stale timestamp", n)
	}

	// The stale row must not resurface on the next poll.
	store.add(row("NEW", "paid", recent()))
	n, err = m.PollOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := sender.ids(); n != 1 || len(got) != 1 || got[0] != "NEW" {
		t.Errorf("alerted %v (n=%d), want only NEW", got, n)
	}
}

func TestPollOnce_UnparsableTimestampAssumedNew(t *testing.T) {
	store := &fakeStore{}
	sender := &recordingSender{}
	m := newTestMonitor(store, sender)
	ctx := context.Background()

	if _, err := m.PollOnce(ctx); err != nil {
		t.Fatal(err)
	}
	store.add(row("P1", "paid", "not-a-date"), row("P2", "processed", ""))

	n, err := m.PollOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("alerted %d rows, want 2: unparsable timestamps are assumed new", n)
	}
}

func TestPollOnce_SkipsHeaderAndBlankRows(t *testing.T) {
	store := &fakeStore{}
	sender := &recordingSender{}
	m := newTestMonitor(store, sender)
	ctx := context.Background()

	if _, err := m.PollOnce(ctx); err != nil {
		t.Fatal(err)
	}
	store.add(
		row("Payment ID", "Status", recent()),
		row("", "paid", recent()),
		row("P1", "process", recent()),
	)

	n, err := m.PollOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := sender.ids(); n != 1 || len(got) != 1 || got[0] != "P1" {
		t.Errorf("alerted %v (n=%d), want only P1", got, n)
	}
}

func TestPollOnce_ListErrorLeavesWatermark(t *testing.T) {
	store := &fakeStore{}
	sender := &recordingSender{}
	m := newTestMonitor(store, sender)
	ctx := context.Background()

	if _, err := m.PollOnce(ctx); err != nil {
		t.Fatal(err)
	}
	store.add(row("P1", "paid", recent()))

	store.mu.Lock()
	store.listErr = errors.New("sheet unavailable")
	store.mu.Unlock()
	if _, err := m.PollOnce(ctx); err == nil {
		t.Fatal("PollOnce should surface the list error")
	}

	store.mu.Lock()
	store.listErr = nil
	store.mu.Unlock()
	n, err := m.PollOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("alerted %d rows after recovery, want 1: failed poll must not advance watermark", n)
	}
}

func TestPollOnce_ShrunkenStoreLeavesWatermark(t *testing.T) {
	store := &fakeStore{}
	store.add(row("P1", "paid", recent()), row("P2", "paid", recent()))
	sender := &recordingSender{}
	m := newTestMonitor(store, sender)
	ctx := context.Background()

	if _, err := m.PollOnce(ctx); err != nil {
		t.Fatal(err)
	}

	store.mu.Lock()
	store.records = store.records[:1]
	store.mu.Unlock()
	n, err := m.PollOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("alerted %d rows after shrink, want 0", n)
	}

	// Refilling up to the old watermark still alerts nothing; only rows past
	// it are new.
	store.add(row("P3", "paid", recent()))
	n, err = m.PollOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("alerted %d rows at the old watermark, want 0", n)
	}

	store.add(row("P4", "paid", recent()))
	n, err = m.PollOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := sender.ids(); n != 1 || len(got) != 1 || got[0] != "P4" {
		t.Errorf("alerted %v (n=%d), want only P4 past the watermark", got, n)
	}
}

func TestPollOnce_SendFailureStillAdvancesWatermark(t *testing.T) {
	store := &fakeStore{}
	sender := &recordingSender{sendErr: errors.New("twilio unavailable")}
	m := newTestMonitor(store, sender)
	ctx := context.Background()

	if _, err := m.PollOnce(ctx); err != nil {
		t.Fatal(err)
	}
	store.add(row("P1", "paid", recent()))

	if _, err := m.PollOnce(ctx); err != nil {
		t.Fatalf("PollOnce must not surface a send error: %v", err)
	}
	if got := sender.ids(); len(got) != 1 || got[0] != "P1" {
		t.Fatalf("attempted %v, want one attempt for P1", got)
	}

	// The failed row is not retried: the watermark moved past it.
	n, err := m.PollOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || len(sender.ids()) != 1 {
		t.Errorf("repeat poll attempted %d alerts (%v), want 0", n, sender.ids())
	}
}

func TestPollOnce_OffsetTimestampKeepsWallClock(t *testing.T) {
	store := &fakeStore{}
	sender := &recordingSender{}
	m := newTestMonitor(store, sender)
	ctx := context.Background()

	if _, err := m.PollOnce(ctx); err != nil {
		t.Fatal(err)
	}
	// Stamped 13:00 local with a +05:30 suffix. The offset is dropped, so at
	// now=12:00 UTC the row is inside the recency window.
	store.add(row("IST", "paid", "2025-06-01T13:00:00+05:30"))

	n, err := m.PollOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := sender.ids(); n != 1 || len(got) != 1 || got[0] != "IST" {
		t.Errorf("alerted %v (n=%d), want the offset-stamped row to alert", got, n)
	}
}

func TestPollOnce_OverlappingPollSkipped(t *testing.T) {
	block := make(chan struct{})
	store := &fakeStore{block: block}
	sender := &recordingSender{}
	m := newTestMonitor(store, sender)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		_, _ = m.PollOnce(ctx)
		close(done)
	}()

	// Give the first poll time to take the lock and block in List.
	time.Sleep(20 * time.Millisecond)
	n, err := m.PollOnce(ctx)
	if err != nil {
		t.Fatalf("overlapping PollOnce: %v", err)
	}
	if n != 0 {
		t.Errorf("overlapping poll alerted %d rows, want 0 (skipped)", n)
	}

	close(block)
	<-done
}
