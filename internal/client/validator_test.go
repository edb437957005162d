package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/upsrj/checkin-system/internal/core/domain"
	"github.com/upsrj/checkin-system/internal/core/geo"
)

var campus = geo.Point{Lat: 20.552893815932485, Lng: -100.41876323329602}

// offsetKm returns a point north of p by the given distance. The divisor sits
// fractionally above the true km-per-degree, so a requested offset lands just
// inside the distance it names rather than just past it.
func offsetKm(p geo.Point, km float64) geo.Point {
	const kmPerDegree = 111.195
	return geo.Point{Lat: p.Lat + km/kmPerDegree, Lng: p.Lng}
}

type stubProvider struct {
	pos Position
	err error
}

func (p stubProvider) CurrentPosition(context.Context) (Position, error) {
	if p.err != nil {
		return Position{}, p.err
	}
	return p.pos, nil
}

// slowProvider waits for release before answering, or honours ctx expiry.
type slowProvider struct {
	started chan struct{}
	release chan struct{}
	pos     Position
}

func (p *slowProvider) CurrentPosition(ctx context.Context) (Position, error) {
	select {
	case p.started <- struct{}{}:
	default:
	}
	select {
	case <-p.release:
		return p.pos, nil
	case <-ctx.Done():
		return Position{}, ctx.Err()
	}
}

type stubLedger struct {
	err   error
	calls int
}

func (l *stubLedger) Record(context.Context, string, string) error {
	l.calls++
	return l.err
}

type memStore struct {
	state domain.CooldownState
	ok    bool
	saves int
}

func (s *memStore) Save(state domain.CooldownState) error {
	s.state = state
	s.ok = true
	s.saves++
	return nil
}

func (s *memStore) Load() (domain.CooldownState, bool, error) {
	return s.state, s.ok, nil
}

func newTestValidator(provider LocationProvider, ledger Ledger, store SessionStore) *Validator {
	return NewValidator(ValidatorConfig{
		User:           "alice@upsrj.edu.mx",
		Target:         campus,
		AcceptRadiusKm: 0.25,
		RejectRadiusKm: 0.5,
		Cooldown:       time.Minute,
	}, provider, ledger, store, zerolog.Nop())
}

func TestAttempt_AcceptedAtTarget(t *testing.T) {
	ledger := &stubLedger{}
	store := &memStore{}
	v := newTestValidator(stubProvider{pos: Position{Point: campus}}, ledger, store)

	out, state := v.Attempt(context.Background(), domain.CooldownState{})
	if out.State != StateAccepted {
		t.Fatalf("expected accepted, got %s (%s: %s)", out.State, out.Reason, out.Message)
	}
	if ledger.calls != 1 {
		t.Errorf("expected 1 ledger submission, got %d", ledger.calls)
	}
	if !state.IsCheckedIn || state.LastCheckInTime == nil {
		t.Errorf("state not advanced after acceptance: %+v", state)
	}
	if store.saves != 1 {
		t.Errorf("expected state persisted once, got %d saves", store.saves)
	}
}

func TestAttempt_AcceptedInsideRadius(t *testing.T) {
	ledger := &stubLedger{}
	v := newTestValidator(stubProvider{pos: Position{Point: offsetKm(campus, 0.249)}}, ledger, nil)

	out, _ := v.Attempt(context.Background(), domain.CooldownState{})
	if out.State != StateAccepted {
		t.Fatalf("expected accepted at 0.249 km, got %s (%s)", out.State, out.Reason)
	}
	if out.DistanceKm <= 0 || out.DistanceKm > 0.25 {
		t.Errorf("unexpected distance %v", out.DistanceKm)
	}
}

func TestAttempt_AcceptRadiusIsInclusive(t *testing.T) {
	ledger := &stubLedger{}
	v := newTestValidator(stubProvider{pos: Position{Point: offsetKm(campus, 0.25)}}, ledger, nil)

	out, _ := v.Attempt(context.Background(), domain.CooldownState{})
	if out.State != StateAccepted {
		t.Fatalf("expected accepted at the 0.25 km boundary, got %s (%s)", out.State, out.Reason)
	}
	if ledger.calls != 1 {
		t.Errorf("expected 1 submission, got %d", ledger.calls)
	}
}

func TestAttempt_RejectedJustPastAcceptRadius(t *testing.T) {
	ledger := &stubLedger{}
	v := newTestValidator(stubProvider{pos: Position{Point: offsetKm(campus, 0.26)}}, ledger, nil)

	out, _ := v.Attempt(context.Background(), domain.CooldownState{})
	if out.State != StateRejected || out.Reason != ReasonOutOfRange {
		t.Fatalf("expected out_of_range at 0.26 km, got %s (%s)", out.State, out.Reason)
	}
	if ledger.calls != 0 {
		t.Error("geofence rejection must not reach the server")
	}
}

func TestAttempt_AmbiguityBandRejectedAsOutside(t *testing.T) {
	ledger := &stubLedger{}
	v := newTestValidator(stubProvider{pos: Position{Point: offsetKm(campus, 0.3)}}, ledger, nil)

	out, _ := v.Attempt(context.Background(), domain.CooldownState{})
	if out.State != StateRejected || out.Reason != ReasonOutOfRange {
		t.Fatalf("expected out_of_range at 0.3 km, got %s (%s)", out.State, out.Reason)
	}
	if ledger.calls != 0 {
		t.Error("geofence rejection must not reach the server")
	}
}

func TestAttempt_FarAwayRejected(t *testing.T) {
	v := newTestValidator(stubProvider{pos: Position{Point: offsetKm(campus, 12)}}, &stubLedger{}, nil)

	out, _ := v.Attempt(context.Background(), domain.CooldownState{})
	if out.Reason != ReasonOutOfRange {
		t.Fatalf("expected out_of_range, got %s", out.Reason)
	}
	if out.DistanceKm < 11 || out.DistanceKm > 13 {
		t.Errorf("expected distance ≈12 km in outcome, got %v", out.DistanceKm)
	}
}

func TestAttempt_PermissionDenied(t *testing.T) {
	ledger := &stubLedger{}
	v := newTestValidator(stubProvider{err: ErrPermissionDenied}, ledger, nil)

	out, _ := v.Attempt(context.Background(), domain.CooldownState{})
	if out.Reason != ReasonPermissionDenied {
		t.Fatalf("expected permission_denied, got %s", out.Reason)
	}
	if ledger.calls != 0 {
		t.Error("no submission expected when location is denied")
	}
}

func TestAttempt_LocationTimeout(t *testing.T) {
	provider := &slowProvider{started: make(chan struct{}, 1), release: make(chan struct{})}
	v := NewValidator(ValidatorConfig{
		User:            "alice@upsrj.edu.mx",
		Target:          campus,
		AcceptRadiusKm:  0.25,
		RejectRadiusKm:  0.5,
		Cooldown:        time.Minute,
		LocationTimeout: 20 * time.Millisecond,
	}, provider, &stubLedger{}, nil, zerolog.Nop())

	out, _ := v.Attempt(context.Background(), domain.CooldownState{})
	if out.Reason != ReasonLocationTimeout {
		t.Fatalf("expected location_timeout, got %s (%s)", out.Reason, out.Message)
	}
}

func TestAttempt_CooldownActive(t *testing.T) {
	ledger := &stubLedger{}
	v := newTestValidator(stubProvider{pos: Position{Point: campus}}, ledger, nil)

	last := time.Now().Add(-10 * time.Second)
	out, state := v.Attempt(context.Background(), domain.Checked(last, ""))
	if out.Reason != ReasonCooldownActive {
		t.Fatalf("expected cooldown_active, got %s", out.Reason)
	}
	if out.SecondsRemaining <= 0 || out.SecondsRemaining > 60 {
		t.Errorf("expected remaining seconds in (0,60], got %d", out.SecondsRemaining)
	}
	if ledger.calls != 0 {
		t.Error("cooldown rejection must not reach the server")
	}
	if state.LastCheckInTime == nil || !state.LastCheckInTime.Equal(last) {
		t.Errorf("state must be unchanged on cooldown rejection: %+v", state)
	}
}

func TestAttempt_CooldownExpiredAllows(t *testing.T) {
	v := newTestValidator(stubProvider{pos: Position{Point: campus}}, &stubLedger{}, nil)

	last := time.Now().Add(-2 * time.Minute)
	out, _ := v.Attempt(context.Background(), domain.Checked(last, ""))
	if out.State != StateAccepted {
		t.Fatalf("expected accepted after cooldown expiry, got %s (%s)", out.State, out.Reason)
	}
}

func TestAttempt_ServerDedupReconcilesState(t *testing.T) {
	ledger := &stubLedger{err: domain.ErrAlreadyCheckedInToday}
	store := &memStore{}
	v := newTestValidator(stubProvider{pos: Position{Point: campus}}, ledger, store)

	out, state := v.Attempt(context.Background(), domain.CooldownState{})
	if out.Reason != ReasonAlreadyCheckedIn {
		t.Fatalf("expected already_checked_in_today, got %s", out.Reason)
	}
	if !state.IsCheckedIn || state.LastCheckInTime == nil {
		t.Errorf("state must adopt the server verdict: %+v", state)
	}
	if store.saves != 1 {
		t.Errorf("reconciled state must be persisted, got %d saves", store.saves)
	}
}

func TestAttempt_ServerErrorLeavesStateUntouched(t *testing.T) {
	ledger := &stubLedger{err: errors.New("boom")}
	store := &memStore{}
	v := newTestValidator(stubProvider{pos: Position{Point: campus}}, ledger, store)

	out, state := v.Attempt(context.Background(), domain.CooldownState{})
	if out.Reason != ReasonServerError {
		t.Fatalf("expected server_error, got %s", out.Reason)
	}
	if state.IsCheckedIn {
		t.Errorf("state must not advance on server failure: %+v", state)
	}
	if store.saves != 0 {
		t.Errorf("nothing should be persisted on server failure, got %d saves", store.saves)
	}
}

func TestAttempt_SecondAttemptWhileInFlightRejected(t *testing.T) {
	provider := &slowProvider{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		pos:     Position{Point: campus},
	}
	ledger := &stubLedger{}
	v := newTestValidator(provider, ledger, nil)

	done := make(chan Outcome, 1)
	go func() {
		out, _ := v.Attempt(context.Background(), domain.CooldownState{})
		done <- out
	}()

	<-provider.started
	out, _ := v.Attempt(context.Background(), domain.CooldownState{})
	if out.Reason != ReasonAttemptInProgress {
		t.Fatalf("expected attempt_in_progress, got %s", out.Reason)
	}

	close(provider.release)
	first := <-done
	if first.State != StateAccepted {
		t.Fatalf("first attempt should complete normally, got %s (%s)", first.State, first.Reason)
	}
	if ledger.calls != 1 {
		t.Errorf("expected exactly 1 submission, got %d", ledger.calls)
	}

	// The guard resets once the attempt finishes.
	out, _ = v.Attempt(context.Background(), domain.CooldownState{})
	if out.Reason == ReasonAttemptInProgress {
		t.Error("guard did not reset after the first attempt finished")
	}
}
