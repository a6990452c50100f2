package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/sandevgo/tuskchat/pkg/retry"
)

var ErrCircuitOpen = errors.New("model server unavailable: circuit open")

type BreakerConfig struct {
	MaxFailures uint32
	Timeout     time.Duration
}

// Breaker guards a model client so that a dead model server fails requests fast
// instead of holding every chat turn for the full HTTP timeout.
type Breaker struct {
	client core.ModelClient
	cb     *gobreaker.CircuitBreaker
}

func NewBreaker(ctx context.Context, client core.ModelClient, cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	logger := log.FromCtx(ctx)

	settings := gobreaker.Settings{
		Name:        "model",
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// client errors and cancellations say nothing about server health
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var se *StatusError
			return errors.As(err, &se) && !se.Temporary()
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("component", "llm").
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("model circuit breaker state changed")
		},
	}

	return &Breaker{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *Breaker) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.client.Chat(ctx, history)
	})
	if err != nil {
		return core.Message{}, mapBreakerError(err)
	}
	return res.(core.Message), nil
}

func (b *Breaker) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.client.Embed(ctx, text)
	})
	if err != nil {
		return nil, mapBreakerError(err)
	}
	return res.([]float32), nil
}

// State returns closed, half-open or open.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

func mapBreakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return retry.Permanent(ErrCircuitOpen)
	}

	var se *StatusError
	if errors.As(err, &se) && !se.Temporary() {
		return retry.Permanent(err)
	}
	return err
}
