package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/upsrj/checkin-system/internal/core/domain"
	"github.com/upsrj/checkin-system/internal/core/ports"
)

// DailyMarker abstracts the advisory dedup cache (Redis). A marker hit lets
// the ledger reject without touching the event store; a marker failure is
// never fatal because the storage-level constraint is the real gate.
type DailyMarker interface {
	Seen(ctx context.Context, user, day string) (bool, error)
	Mark(ctx context.Context, user, day string) error
}

// LedgerService is the authoritative once-per-calendar-day gate. The recording
// path is race-free twice over: a per-user critical section here, and the
// unique (user, day) constraint enforced by the repository at insert time.
type LedgerService struct {
	checkins ports.CheckInRepository
	students ports.StudentRepository
	marker   DailyMarker
	updates  ports.ProfileUpdater
	loc      *time.Location
	log      zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedgerService returns a ledger. loc is the timezone in which calendar
// days are interpreted; nil means the server's local zone. marker and updates
// may be nil, in which case the fast path and denormalization are skipped.
func NewLedgerService(
	checkins ports.CheckInRepository,
	students ports.StudentRepository,
	marker DailyMarker,
	updates ports.ProfileUpdater,
	loc *time.Location,
	log zerolog.Logger,
) *LedgerService {
	if loc == nil {
		loc = time.Local
	}
	return &LedgerService{
		checkins: checkins,
		students: students,
		marker:   marker,
		updates:  updates,
		loc:      loc,
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
}

// userLock returns the serialization mutex for one user's check-in writes.
func (s *LedgerService) userLock(user string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[user]
	if !ok {
		l = &sync.Mutex{}
		s.locks[user] = l
	}
	return l
}

// RecordCheckIn records a check-in for in.User, enforcing the once-per-day
// constraint. The event time is stamped server-side; the client-supplied
// value is kept as a display hint only.
func (s *LedgerService) RecordCheckIn(ctx context.Context, in ports.RecordCheckInInput) (*domain.CheckInEvent, error) {
	if in.User == "" {
		return nil, fmt.Errorf("record check-in: %w", domain.ErrStudentNotFound)
	}

	lock := s.userLock(in.User)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()
	day := domain.DayOf(now, s.loc)

	// Advisory fast path — a cache failure is logged and ignored.
	if s.marker != nil {
		seen, err := s.marker.Seen(ctx, in.User, day)
		if err != nil {
			s.log.Warn().Err(err).Str("user", in.User).Msg("dedup marker check failed, falling through to store")
		} else if seen {
			return nil, domain.ErrAlreadyCheckedInToday
		}
	}

	latest, err := s.checkins.FindLatestByUser(ctx, in.User)
	if err != nil {
		return nil, fmt.Errorf("record check-in: %w", err)
	}
	if latest != nil && domain.DayOf(latest.RecordedAt, s.loc) == day {
		return nil, domain.ErrAlreadyCheckedInToday
	}

	evt := &domain.CheckInEvent{
		ID:         uuid.NewString(),
		User:       in.User,
		RecordedAt: now,
		Day:        day,
		ClientTime: in.ClientTime,
	}

	// The repository's (user, day) uniqueness closes the check-then-act race
	// against writers outside this process.
	if err := s.checkins.Insert(ctx, evt); err != nil {
		return nil, err
	}

	if s.marker != nil {
		if err := s.marker.Mark(ctx, in.User, day); err != nil {
			s.log.Warn().Err(err).Str("user", in.User).Msg("failed to set dedup marker")
		}
	}

	if s.updates != nil {
		s.updates.Enqueue(ports.ProfileUpdateJob{User: in.User, CheckedInAt: now})
	}

	s.log.Info().
		Str("user", in.User).
		Str("day", day).
		Time("recorded_at", now).
		Msg("check-in recorded")

	return evt, nil
}

// ListCheckIns returns the user's check-in history ascending by recorded time,
// used by clients to bootstrap their cooldown state.
func (s *LedgerService) ListCheckIns(ctx context.Context, user string) ([]domain.CheckInEvent, error) {
	events, err := s.checkins.ListByUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	return events, nil
}

// ListStudents returns the roster.
func (s *LedgerService) ListStudents(ctx context.Context) ([]domain.Student, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}
