package ports

import (
	"context"
	"time"

	"github.com/upsrj/checkin-system/internal/core/domain"
)

// RecordCheckInInput is the DTO passed from the transport layer to the ledger.
// ClientTime is whatever wall-clock string the device reported; it is stored
// as a display hint and never used for the dedup decision.
type RecordCheckInInput struct {
	User       string
	ClientTime string
}

// LedgerService is the authoritative gate for check-in recording. Client-side
// geofence and cooldown checks are advisory only.
type LedgerService interface {
	RecordCheckIn(ctx context.Context, in RecordCheckInInput) (*domain.CheckInEvent, error)
	ListCheckIns(ctx context.Context, user string) ([]domain.CheckInEvent, error)
	ListStudents(ctx context.Context) ([]domain.Student, error)
}

// ProfileUpdateJob asks the background workers to refresh a student's
// denormalized last-check-in field after a successful recording.
type ProfileUpdateJob struct {
	User        string
	CheckedInAt time.Time
}

// ProfileUpdater enqueues denormalization jobs. Enqueue must not block the
// recording path beyond channel buffering.
type ProfileUpdater interface {
	Enqueue(job ProfileUpdateJob)
}
