package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskchat/pkg/log"
)

type SessionConfig struct {
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	MaxMessages   int           `env:"SESSION_MAX_MESSAGES" envDefault:"30"`
	MaxChars      int           `env:"SESSION_MAX_CHARS" envDefault:"12000"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
}

func NewSessionConfig(ctx context.Context) *SessionConfig {
	c := &SessionConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Session config")
	}
	if c.MaxMessages < 2 {
		log.FromCtx(ctx).Fatal().Int("max_messages", c.MaxMessages).Msg("SESSION_MAX_MESSAGES must be at least 2")
	}
	return c
}

func (c SessionConfig) GetSessionTTL() time.Duration {
	return c.TTL
}

func (c SessionConfig) GetMaxMessages() int {
	return c.MaxMessages
}

func (c SessionConfig) GetMaxChars() int {
	return c.MaxChars
}
