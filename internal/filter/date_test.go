package filter

import (
	"testing"
	"time"
)

func TestParseDateISO(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.Local)
	got, err := ParseDate("2026-01-15", now)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.January || got.Day() != 15 {
		t.Errorf("ParseDate = %v, want 2026-01-15", got)
	}
}

func TestParseDateRelative(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"7d", now.Add(-7 * 24 * time.Hour)},
		{"2w", now.Add(-14 * 24 * time.Hour)},
		{"1m", now.Add(-30 * 24 * time.Hour)},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.in, now)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDateInvalid(t *testing.T) {
	now := time.Now()
	if _, err := ParseDate("not-a-date", now); err == nil {
		t.Error("expected error for invalid date")
	}
	if _, err := ParseDate("5y", now); err == nil {
		t.Error("expected error for unknown unit")
	}
}
