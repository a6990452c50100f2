package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskchat/pkg/log"
)

type HTTPConfig struct {
	Port       int     `env:"PORT" envDefault:"3000"`
	CORSOrigin string  `env:"CORS_ORIGIN" envDefault:"http://localhost:3001"`
	APIKey     string  `env:"API_KEY"`
	RateRPS    float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateBurst  int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

func NewHTTPConfig(ctx context.Context) *HTTPConfig {
	c := &HTTPConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse HTTP config")
	}
	return c
}
