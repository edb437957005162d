package client

import (
	"math"
	"time"
)

// DefaultCooldown is the minimum interval between successive attempts. It is
// a UX throttle only — the server's daily dedup operates independently at
// calendar-day granularity.
const DefaultCooldown = time.Minute

// CooldownGate decides whether a new check-in attempt is allowed based on the
// last known check-in time. Pure predicate; no side effects.
type CooldownGate struct {
	Interval time.Duration
}

// NewCooldownGate returns a gate with the given interval, defaulting to
// DefaultCooldown when non-positive.
func NewCooldownGate(interval time.Duration) CooldownGate {
	if interval <= 0 {
		interval = DefaultCooldown
	}
	return CooldownGate{Interval: interval}
}

// CanAttempt reports whether an attempt at now is allowed. A nil last
// check-in always allows.
func (g CooldownGate) CanAttempt(now time.Time, last *time.Time) bool {
	if last == nil {
		return true
	}
	return !now.Before(last.Add(g.Interval))
}

// SecondsRemaining returns the whole seconds until the next allowed attempt,
// rounded up for display. Zero when an attempt is already allowed.
func (g CooldownGate) SecondsRemaining(now time.Time, last *time.Time) int {
	if g.CanAttempt(now, last) {
		return 0
	}
	remaining := last.Add(g.Interval).Sub(now)
	return int(math.Ceil(remaining.Seconds()))
}
