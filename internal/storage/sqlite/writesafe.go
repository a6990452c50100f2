package sqlite

import (
	"context"

	"github.com/sandevgo/tuskchat/pkg/log"
)

// writeSafe runs a persistence operation and logs its failure instead of returning it.
func writeSafe(ctx context.Context, label string, op func(ctx context.Context) error) {
	if err := op(ctx); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("op", label).Msg("persistence write failed")
	}
}
