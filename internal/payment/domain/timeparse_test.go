package domain

import (
	"testing"
	"time"
)

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-01-15T10:30:00+05:30", "2025-01-15T10:30:00Z"},
		{"2025-01-15T10:30:00.123+02:00", "2025-01-15T10:30:00.123Z"},
		{"2025-01-15T10:30:00Z", "2025-01-15T10:30:00Z"},
		{"2025-01-15T10:30:00", "2025-01-15T10:30:00.000Z"},
		{"2025-01-15T10:30:00.500", "2025-01-15T10:30:00.500Z"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTimestamp(tt.in); got != tt.want {
			t.Errorf("NormalizeTimestamp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	got, ok := ParseTimestamp("2025-01-15T10:30:00+05:30")
	if !ok {
		t.Fatal("ParseTimestamp returned ok=false for offset timestamp")
	}
	// The offset is dropped, not converted: the wall-clock time stands.
	want := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parsed = %v, want %v", got, want)
	}

	got, ok = ParseTimestamp("2025-06-01T13:00:00+05:30")
	if !ok || !got.Equal(time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)) {
		t.Errorf("parsed = %v (ok=%v), want 13:00:00 UTC with the offset dropped", got, ok)
	}

	if _, ok := ParseTimestamp("2025-01-15"); !ok {
		t.Error("ParseTimestamp(date-only) ok = false, want true")
	}
	if _, ok := ParseTimestamp("2025-01-15 10:30:00"); !ok {
		t.Error("ParseTimestamp(space-separated) ok = false, want true")
	}
	if _, ok := ParseTimestamp("not a timestamp"); ok {
		t.Error("ParseTimestamp(garbage) ok = true, want false")
	}
	if _, ok := ParseTimestamp(""); ok {
		t.Error("ParseTimestamp(empty) ok = true, want false")
	}
}
