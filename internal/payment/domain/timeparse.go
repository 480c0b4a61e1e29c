package domain

import (
	"regexp"
	"strings"
	"time"
)

// Spreadsheet rows arrive with a mix of timestamp spellings: RFC 3339 with a
// +05:30-style offset, a bare "Z", or no zone at all.
var (
	offsetSuffix = regexp.MustCompile(`\+\d{2}:\d{2}$`)
	clockPart    = regexp.MustCompile(`(\d{2}:\d{2}:\d{2})$`)
)

// NormalizeTimestamp rewrites common timezone-offset suffixes toward a
// UTC-suffixed form so a single parse pass can handle them. The offset is
// dropped, not converted: rows written locally are taken at face value.
func NormalizeTimestamp(ts string) string {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return ts
	}
	if strings.Contains(ts, "+") {
		return offsetSuffix.ReplaceAllString(ts, "Z")
	}
	if strings.HasSuffix(ts, "Z") {
		return ts
	}
	if !strings.Contains(ts, ".") {
		return clockPart.ReplaceAllString(ts, "$1.000Z")
	}
	return ts + "Z"
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a stored timestamp tolerantly, normalizing offset
// suffixes first. The normalized form wins over the raw one so an offset
// timestamp keeps its wall-clock time instead of being converted to UTC.
// ok is false for empty or unparsable input; parsing is never an error
// anywhere in the pipeline.
func ParseTimestamp(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, false
	}
	for _, candidate := range []string{NormalizeTimestamp(ts), ts} {
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// NowISO returns the current UTC time in the wire format used for record
// timestamps.
func NowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
