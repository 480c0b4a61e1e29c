package domain

import (
	"strings"
	"unicode/utf8"
)

// Bucket is the classifier's output category for a status string.
type Bucket int

const (
	// BucketUnknown is any status outside the paid/outstanding tables. Treated
	// as outstanding-adjacent by the dashboard but flagged separately so it is
	// never counted as collected revenue.
	BucketUnknown Bucket = iota
	// BucketPaid marks collected revenue.
	BucketPaid
	// BucketOutstanding marks uncollected revenue, including risk accounts.
	BucketOutstanding
)

// String returns the bucket name for logs.
func (b Bucket) String() string {
	switch b {
	case BucketPaid:
		return "paid"
	case BucketOutstanding:
		return "outstanding"
	default:
		return "unknown"
	}
}

var paidStatuses = map[string]struct{}{
	"paid": {}, "processed": {}, "complete": {}, "completed": {},
	"success": {}, "received": {},
}

var outstandingStatuses = map[string]struct{}{
	"pending": {}, "unpaid": {}, "overdue": {}, "created": {}, "draft": {},
	"issue": {}, "risk": {}, "follow up": {}, "follow-up": {}, "failed": {},
	"open": {}, "partial": {}, "awaiting payment": {},
}

// triggerStatuses are the normalized statuses that cause an outbound
// notification, shared by the webhook pipeline and the sheet monitor.
var triggerStatuses = map[string]struct{}{
	"paid": {}, "processed": {}, "process": {},
}

// Classification pairs the bucket with a human-readable label.
type Classification struct {
	Bucket Bucket
	// Risk refines the outstanding bucket: the status text mentions "risk" or "issue".
	Risk         bool
	DisplayLabel string
}

// Classify maps a free-text status to its bucket and display label.
// Total: every input produces a classification, never an error.
func Classify(status string) Classification {
	s := strings.ToLower(strings.TrimSpace(status))
	c := Classification{DisplayLabel: DisplayLabel(status)}
	switch {
	case isPaidStatus(s):
		c.Bucket = BucketPaid
	case isOutstandingStatus(s):
		c.Bucket = BucketOutstanding
		c.Risk = strings.Contains(s, "risk") || strings.Contains(s, "issue")
	default:
		c.Bucket = BucketUnknown
	}
	return c
}

func isPaidStatus(s string) bool {
	_, ok := paidStatuses[s]
	return ok
}

func isOutstandingStatus(s string) bool {
	_, ok := outstandingStatuses[s]
	return ok
}

// IsTriggerStatus reports whether the status (any case, untrimmed) dispatches
// a notification.
func IsTriggerStatus(status string) bool {
	_, ok := triggerStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// DisplayLabel title-cases each whitespace/underscore-delimited token of the
// raw status ("follow_up" → "Follow Up"). Empty input yields "Pending".
func DisplayLabel(status string) string {
	fields := strings.FieldsFunc(status, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '_'
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		r, size := utf8.DecodeRuneInString(f)
		words = append(words, strings.ToUpper(string(r))+f[size:])
	}
	label := strings.TrimSpace(strings.Join(words, " "))
	if label == "" {
		return "Pending"
	}
	return label
}
