package srv

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/tuskchat/pkg/log"
)

// NextFunc returns the next time a periodic job should run after from.
type NextFunc func(from time.Time) (time.Time, error)

// Every schedules a job at a fixed interval.
func Every(interval time.Duration) NextFunc {
	return func(from time.Time) (time.Time, error) {
		return from.Add(interval), nil
	}
}

// Ticker runs a job on a schedule until shut down.
type Ticker struct {
	name string
	next NextFunc
	job  func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTicker(name string, next NextFunc, job func(ctx context.Context)) *Ticker {
	return &Ticker{
		name: name,
		next: next,
		job:  job,
	}
}

func (t *Ticker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	t.mu.Lock()
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	defer close(done)

	logger := log.FromCtx(ctx).With().Str("component", t.name).Logger()

	for {
		at, err := t.next(time.Now())
		if err != nil {
			return err
		}

		timer := time.NewTimer(time.Until(at))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Debug().Msg("ticker stopped")
			return nil
		case <-timer.C:
			t.job(ctx)
		}
	}
}

func (t *Ticker) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
