package ports

import (
	"context"
	"time"

	"github.com/upsrj/checkin-system/internal/core/domain"
)

// StudentRepository defines persistence operations for the student roster.
type StudentRepository interface {
	// Create inserts a new student. Returns domain.ErrStudentExists when the
	// email or campus id is already taken.
	Create(ctx context.Context, s *domain.Student) error

	FindByEmail(ctx context.Context, email string) (*domain.Student, error)

	// List returns the full roster ordered by campus id.
	List(ctx context.Context) ([]domain.Student, error)

	// UpdateLastCheckIn sets the denormalized last-check-in field. Best-effort:
	// the ledger is the source of truth regardless of this field.
	UpdateLastCheckIn(ctx context.Context, email string, t time.Time) error
}
