package compliance

import (
	"testing"
	"time"
)

func TestIsExpiredStrictlyBefore(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
	if IsExpired("2026-03-15", asOf) {
		t.Fatal("a document valid until today is not expired")
	}
	if !IsExpired("2026-03-14", asOf) {
		t.Fatal("expected yesterday to be expired")
	}
	if IsExpired("2026-03-16", asOf) {
		t.Fatal("future date should not be expired")
	}
}

func TestIsExpiredMalformed(t *testing.T) {
	for _, raw := range []string{"", "soon", "15/03/2020", "2026-13-40"} {
		if IsExpired(raw, testAsOf) {
			t.Fatalf("expected malformed %q to be treated as not expired", raw)
		}
	}
}

func TestIsExpiredUsesLocalCalendarDate(t *testing.T) {
	manila := time.FixedZone("PHT", 8*3600)
	// 00:30 local on the 15th is still the 14th in UTC.
	asOf := time.Date(2026, 3, 15, 0, 30, 0, 0, manila)
	if IsExpired("2026-03-15", asOf) {
		t.Fatal("date-only values must be read in the local zone")
	}
	if !IsExpired("2026-03-14", asOf) {
		t.Fatal("expected the previous local day to be expired")
	}
}

func TestIsExpiredTimestamp(t *testing.T) {
	if !IsExpired("2026-03-14T10:00:00Z", testAsOf) {
		t.Fatal("expected timestamp on the previous day to be expired")
	}
	if IsExpired("2026-03-15T00:00:00Z", testAsOf) {
		t.Fatal("timestamp on the same day should not be expired")
	}
}

func TestDeadlineSoon(t *testing.T) {
	cases := map[string]bool{
		"2026-03-15": true,
		"2026-03-22": true,
		"2026-03-23": false,
		"2026-03-14": false,
		"":           false,
		"friday":     false,
	}
	for deadline, want := range cases {
		if got := DeadlineSoon(deadline, testAsOf); got != want {
			t.Fatalf("deadline %q: expected %v, got %v", deadline, want, got)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, ok := ParseDate("not-a-date", time.UTC); ok {
		t.Fatal("expected parse failure")
	}
	got, ok := ParseDate(" 2026-02-01 ", nil)
	if !ok || got.Day() != 1 || got.Month() != time.February {
		t.Fatalf("unexpected parse result %v", got)
	}
}
