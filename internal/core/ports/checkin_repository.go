package ports

import (
	"context"

	"github.com/upsrj/checkin-system/internal/core/domain"
)

// CheckInRepository defines persistence operations for check-in events.
type CheckInRepository interface {
	// Insert persists evt. Implementations must guarantee at most one event per
	// (user, day) at insert time — e.g. via a unique compound index — and return
	// domain.ErrAlreadyCheckedInToday when the constraint is violated.
	Insert(ctx context.Context, evt *domain.CheckInEvent) error

	// FindLatestByUser returns the most recent event for user ordered by
	// recorded time descending, or (nil, nil) when the user has none.
	FindLatestByUser(ctx context.Context, user string) (*domain.CheckInEvent, error)

	// ListByUser returns all events for user ascending by recorded time.
	ListByUser(ctx context.Context, user string) ([]domain.CheckInEvent, error)
}
