package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/upsrj/checkin-system/internal/api/metrics"
)

// DailyMarker is the advisory fast path for the once-per-day rule: a Redis key
// per (user, day) that expires shortly after the campus-local midnight it
// refers to. The ledger treats any marker failure as a miss — the unique
// storage constraint remains the authoritative gate.
type DailyMarker struct {
	client *redis.Client
	loc    *time.Location
}

// NewDailyMarker wraps client. loc is the campus timezone used to compute
// key expiry; nil means the server's local zone.
func NewDailyMarker(client *redis.Client, loc *time.Location) *DailyMarker {
	if loc == nil {
		loc = time.Local
	}
	return &DailyMarker{client: client, loc: loc}
}

// Seen reports whether user already has a recorded check-in for day.
func (m *DailyMarker) Seen(ctx context.Context, user, day string) (bool, error) {
	n, err := m.client.Exists(ctx, m.key(user, day)).Result()
	if err != nil {
		return false, fmt.Errorf("marker check: %w", err)
	}
	if n > 0 {
		metrics.DedupCacheTotal.WithLabelValues("hit").Inc()
		return true, nil
	}
	metrics.DedupCacheTotal.WithLabelValues("miss").Inc()
	return false, nil
}

// Mark records that user checked in on day. The key lives until an hour past
// the next campus-local midnight, so clock skew cannot expire it early.
func (m *DailyMarker) Mark(ctx context.Context, user, day string) error {
	return m.client.Set(ctx, m.key(user, day), "1", m.ttl()).Err()
}

func (m *DailyMarker) key(user, day string) string {
	return fmt.Sprintf("checkin:seen:%s:%s", user, day)
}

func (m *DailyMarker) ttl() time.Duration {
	now := time.Now().In(m.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, m.loc).AddDate(0, 0, 1)
	return midnight.Sub(now) + time.Hour
}
