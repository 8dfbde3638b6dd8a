package utils

import (
	"testing"
	"time"
)

func TestParseRFC3339(t *testing.T) {
	if _, err := ParseRFC3339(""); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := ParseRFC3339("yesterday"); err == nil {
		t.Fatalf("expected error for malformed input")
	}
	got, err := ParseRFC3339("2024-05-01T10:00:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRoundAndClamp(t *testing.T) {
	if Round1(74.349) != 74.3 {
		t.Fatalf("unexpected rounding: %v", Round1(74.349))
	}
	if Clamp(120, 0, 100) != 100 || Clamp(-3, 0, 100) != 0 || Clamp(42, 0, 100) != 42 {
		t.Fatalf("clamp out of bounds")
	}
}
