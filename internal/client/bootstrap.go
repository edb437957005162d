package client

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/upsrj/checkin-system/internal/core/domain"
)

// HistorySource is the slice of the server API used to bootstrap state.
type HistorySource interface {
	LastCheckIn(ctx context.Context, user string) (*time.Time, error)
}

// Bootstrap builds the session's CooldownState at startup. The ledger is
// authoritative: when it is reachable, its answer overwrites whatever the
// local cache holds. The cache is only trusted while the server cannot be
// reached.
func Bootstrap(ctx context.Context, src HistorySource, store SessionStore, user string, log zerolog.Logger) domain.CooldownState {
	last, err := src.LastCheckIn(ctx, user)
	if err != nil {
		log.Warn().Err(err).Msg("ledger unreachable, falling back to cached state")
		if store != nil {
			if cached, ok, loadErr := store.Load(); loadErr == nil && ok {
				return cached
			}
		}
		return domain.CooldownState{}
	}

	var state domain.CooldownState
	if last != nil {
		state = domain.Checked(*last, last.Format(time.RFC3339))
	}

	if store != nil {
		if err := store.Save(state); err != nil {
			log.Warn().Err(err).Msg("session cache save failed")
		}
	}
	return state
}
