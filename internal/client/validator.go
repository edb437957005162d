package client

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/upsrj/checkin-system/internal/core/domain"
	"github.com/upsrj/checkin-system/internal/core/geo"
)

// State is a phase of a single check-in attempt.
type State string

const (
	StateIdle              State = "idle"
	StateLocationRequested State = "location_requested"
	StateGeofenceEvaluated State = "geofence_evaluated"
	StateCooldownEvaluated State = "cooldown_evaluated"
	StateSubmitting        State = "submitting"
	StateAccepted          State = "accepted"
	StateRejected          State = "rejected"
)

// Reason explains a rejected attempt.
type Reason string

const (
	ReasonPermissionDenied    Reason = "permission_denied"
	ReasonLocationTimeout     Reason = "location_timeout"
	ReasonLocationUnavailable Reason = "location_unavailable"
	ReasonOutOfRange          Reason = "out_of_range"
	ReasonCooldownActive      Reason = "cooldown_active"
	ReasonAlreadyCheckedIn    Reason = "already_checked_in_today"
	ReasonServerError         Reason = "server_error"
	ReasonAttemptInProgress   Reason = "attempt_in_progress"
)

// Outcome is the terminal result of one attempt.
type Outcome struct {
	State            State
	Reason           Reason
	Message          string
	DistanceKm       float64
	SecondsRemaining int
}

// Ledger is the slice of the server API the validator submits through.
type Ledger interface {
	Record(ctx context.Context, user, clientTime string) error
}

// SessionStore persists CooldownState across process restarts. Best-effort
// only: the ledger stays authoritative, and on disagreement the store is
// overwritten.
type SessionStore interface {
	Save(state domain.CooldownState) error
	Load() (domain.CooldownState, bool, error)
}

// Validator drives one check-in attempt through the client-side state
// machine: location → geofence → cooldown → submit. All client checks are
// advisory; the server re-validates and its verdict wins.
//
// A Validator allows a single in-flight attempt. A second Attempt while one
// is running is rejected immediately without touching the device or network.
type Validator struct {
	user            string
	target          geo.Point
	acceptKm        float64
	rejectKm        float64
	gate            CooldownGate
	provider        LocationProvider
	ledger          Ledger
	store           SessionStore
	locationTimeout time.Duration
	log             zerolog.Logger

	inFlight atomic.Bool
}

// ValidatorConfig collects the knobs for NewValidator.
type ValidatorConfig struct {
	User            string
	Target          geo.Point
	AcceptRadiusKm  float64
	RejectRadiusKm  float64
	Cooldown        time.Duration
	LocationTimeout time.Duration
}

// NewValidator builds a validator. store may be nil (no durable cache).
func NewValidator(cfg ValidatorConfig, provider LocationProvider, ledger Ledger, store SessionStore, log zerolog.Logger) *Validator {
	if cfg.AcceptRadiusKm <= 0 {
		cfg.AcceptRadiusKm = 0.25
	}
	if cfg.RejectRadiusKm < cfg.AcceptRadiusKm {
		cfg.RejectRadiusKm = cfg.AcceptRadiusKm
	}
	if cfg.LocationTimeout <= 0 {
		cfg.LocationTimeout = DefaultLocationTimeout
	}
	return &Validator{
		user:            cfg.User,
		target:          cfg.Target,
		acceptKm:        cfg.AcceptRadiusKm,
		rejectKm:        cfg.RejectRadiusKm,
		gate:            NewCooldownGate(cfg.Cooldown),
		provider:        provider,
		ledger:          ledger,
		store:           store,
		locationTimeout: cfg.LocationTimeout,
		log:             log,
	}
}

// Attempt runs one check-in attempt starting from state. It returns the
// terminal outcome and the (possibly updated) cooldown state. The state value
// is only advanced on confirmed server acceptance, or reconciled when the
// server reports the user already checked in today.
func (v *Validator) Attempt(ctx context.Context, state domain.CooldownState) (Outcome, domain.CooldownState) {
	if !v.inFlight.CompareAndSwap(false, true) {
		return Outcome{
			State:   StateRejected,
			Reason:  ReasonAttemptInProgress,
			Message: "a check-in attempt is already in progress",
		}, state
	}
	defer v.inFlight.Store(false)

	v.log.Debug().Str("state", string(StateLocationRequested)).Msg("attempt started")
	pos, err := acquire(ctx, v.provider, v.locationTimeout)
	if err != nil {
		return v.reject(locationReason(err), err.Error()), state
	}

	distance, err := geo.Distance(pos.Point, v.target)
	if err != nil {
		// A non-finite fix from the provider is a provider failure.
		return v.reject(ReasonLocationUnavailable, err.Error()), state
	}
	v.log.Debug().Str("state", string(StateGeofenceEvaluated)).Float64("distance_km", distance).Msg("geofence evaluated")

	if distance > v.acceptKm {
		// Anything past the accept radius is outside, including the
		// (accept, reject] band, which is logged but behaves identically.
		if distance <= v.rejectKm {
			v.log.Debug().Float64("distance_km", distance).Msg("inside ambiguity band, treating as outside")
		}
		out := v.reject(ReasonOutOfRange, "you are not near the allowed location")
		out.DistanceKm = distance
		return out, state
	}

	now := time.Now()
	if !v.gate.CanAttempt(now, state.LastCheckInTime) {
		remaining := v.gate.SecondsRemaining(now, state.LastCheckInTime)
		out := v.reject(ReasonCooldownActive, "cooldown active")
		out.SecondsRemaining = remaining
		out.DistanceKm = distance
		return out, state
	}
	v.log.Debug().Str("state", string(StateCooldownEvaluated)).Msg("cooldown evaluated")

	clientTime := now.Format(time.RFC3339)
	v.log.Debug().Str("state", string(StateSubmitting)).Msg("submitting")
	if err := v.ledger.Record(ctx, v.user, clientTime); err != nil {
		if errors.Is(err, domain.ErrAlreadyCheckedInToday) {
			// The server already holds a check-in for today that this client
			// did not know about. Adopt the authoritative verdict locally.
			state = domain.Checked(now, clientTime)
			v.persist(state)
			out := v.reject(ReasonAlreadyCheckedIn, "already checked in today")
			out.DistanceKm = distance
			return out, state
		}
		out := v.reject(ReasonServerError, err.Error())
		out.DistanceKm = distance
		return out, state
	}

	state = domain.Checked(now, clientTime)
	v.persist(state)

	v.log.Info().Float64("distance_km", distance).Msg("check-in accepted")
	return Outcome{
		State:      StateAccepted,
		Message:    "check-in successful",
		DistanceKm: distance,
	}, state
}

func (v *Validator) reject(reason Reason, msg string) Outcome {
	v.log.Info().Str("reason", string(reason)).Str("message", msg).Msg("check-in rejected")
	return Outcome{State: StateRejected, Reason: reason, Message: msg}
}

// persist writes the state to the session store, best-effort.
func (v *Validator) persist(state domain.CooldownState) {
	if v.store == nil {
		return
	}
	if err := v.store.Save(state); err != nil {
		v.log.Warn().Err(err).Msg("session cache save failed")
	}
}

func locationReason(err error) Reason {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return ReasonPermissionDenied
	case errors.Is(err, ErrLocationTimeout):
		return ReasonLocationTimeout
	default:
		return ReasonLocationUnavailable
	}
}
