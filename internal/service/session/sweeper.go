package session

import (
	"context"
	"time"

	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/sandevgo/tuskchat/pkg/srv"
)

// NewSweeper returns a service that evicts idle sessions every interval.
func NewSweeper(store *Store, interval time.Duration) *srv.Ticker {
	return srv.NewTicker("session-sweeper", srv.Every(interval), func(ctx context.Context) {
		res := store.SweepExpired(store.now())
		if res.Removed == 0 {
			return
		}
		log.FromCtx(ctx).Info().
			Str("component", "session-sweeper").
			Int("removed", res.Removed).
			Int("remaining", res.Remaining).
			Msg("expired sessions evicted")
	})
}
