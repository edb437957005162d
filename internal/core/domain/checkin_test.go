package domain

import (
	"testing"
	"time"
)

func TestDayOf_UsesGivenLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 2026-08-28 04:30 UTC is still 2026-08-27 in central Mexico (UTC-6).
	instant := time.Date(2026, 8, 28, 4, 30, 0, 0, time.UTC)
	if got := DayOf(instant, loc); got != "2026-08-27" {
		t.Errorf("expected 2026-08-27, got %s", got)
	}
	if got := DayOf(instant, time.UTC); got != "2026-08-28" {
		t.Errorf("expected 2026-08-28 in UTC, got %s", got)
	}
}

func TestChecked_Invariant(t *testing.T) {
	now := time.Now()
	state := Checked(now, "display")
	if !state.IsCheckedIn {
		t.Error("IsCheckedIn must be true")
	}
	if state.LastCheckInTime == nil || !state.LastCheckInTime.Equal(now) {
		t.Errorf("unexpected last check-in time %v", state.LastCheckInTime)
	}
	if state.CurrentDateTime != "display" {
		t.Errorf("unexpected display value %q", state.CurrentDateTime)
	}
}
