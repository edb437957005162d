package client

import (
	"context"
	"errors"
	"time"

	"github.com/upsrj/checkin-system/internal/core/geo"
)

// DefaultLocationTimeout bounds how long a location fix may take before the
// attempt is rejected.
const DefaultLocationTimeout = 15 * time.Second

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrLocationTimeout     = errors.New("location request timed out")
)

// Position is a device location fix.
type Position struct {
	Point     geo.Point
	AccuracyM float64
}

// LocationProvider abstracts the device's positioning capability.
// Implementations must honour ctx cancellation and return
// ErrPermissionDenied or ErrLocationUnavailable as typed outcomes.
type LocationProvider interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// acquire requests a position with a bounded timeout, mapping a deadline
// expiry to ErrLocationTimeout.
func acquire(ctx context.Context, provider LocationProvider, timeout time.Duration) (Position, error) {
	if timeout <= 0 {
		timeout = DefaultLocationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pos, err := provider.CurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Position{}, ErrLocationTimeout
		}
		return Position{}, err
	}
	return pos, nil
}
