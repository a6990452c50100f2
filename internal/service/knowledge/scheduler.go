package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/sandevgo/tuskchat/pkg/srv"
)

// NewRebuildScheduler returns a service that rebuilds the index on a cron schedule.
func NewRebuildScheduler(expr string, indexer *Indexer) (*srv.Ticker, error) {
	if !gronx.New().IsValid(expr) {
		return nil, fmt.Errorf("invalid cron expression %q", expr)
	}

	next := func(from time.Time) (time.Time, error) {
		return gronx.NextTickAfter(expr, from, false)
	}

	return srv.NewTicker("index-scheduler", next, func(ctx context.Context) {
		if _, err := indexer.Build(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Str("component", "index-scheduler").Msg("scheduled rebuild failed")
		}
	}), nil
}
