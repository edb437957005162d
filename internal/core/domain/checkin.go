package domain

import (
	"errors"
	"time"
)

var ErrAlreadyCheckedInToday = errors.New("already checked in today")

// DayFormat is the calendar-date key used for the once-per-day constraint.
const DayFormat = "2006-01-02"

// CheckInEvent is one recorded presence check-in. Events are immutable once
// recorded and are never updated or deleted.
//
// RecordedAt is stamped by the ledger, not the client: the client-supplied
// wall-clock value is kept only as a display hint (ClientTime). Day is the
// calendar date of RecordedAt in the campus timezone and is the dedup key.
type CheckInEvent struct {
	ID         string    `json:"id"`
	User       string    `json:"user"` // student email
	RecordedAt time.Time `json:"date_time"`
	Day        string    `json:"-"`
	ClientTime string    `json:"client_time,omitempty"`
}

// DayOf returns the calendar-date key for t in the given location.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayFormat)
}

// CooldownState is the client's view of its most recent check-in. It is a
// cache derived from the ledger, never a source of truth: when the two
// disagree, the ledger wins and the state is overwritten.
//
// Invariant: IsCheckedIn == true iff LastCheckInTime != nil.
type CooldownState struct {
	IsCheckedIn     bool       `json:"is_checked_in"`
	LastCheckInTime *time.Time `json:"last_check_in_time,omitempty"`
	CurrentDateTime string     `json:"current_date_time,omitempty"`
}

// Checked returns a consistent CooldownState for a check-in at t.
func Checked(t time.Time, display string) CooldownState {
	return CooldownState{IsCheckedIn: true, LastCheckInTime: &t, CurrentDateTime: display}
}
