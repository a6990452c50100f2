package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskchat/pkg/log"
)

type LLMConfig struct {
	OllamaBaseURL    string `env:"OLLAMA_BASE_URL" envDefault:"http://127.0.0.1:11434"`
	OllamaAPIKey     string `env:"OLLAMA_API_KEY"`
	OllamaModel      string `env:"OLLAMA_MODEL" envDefault:"gemma3:1b"`
	OllamaEmbedModel string `env:"OLLAMA_EMBED_MODEL" envDefault:"nomic-embed-text"`

	OpenAIBaseURL    string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIModel      string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIEmbedModel string `env:"OPENAI_EMBED_MODEL" envDefault:"text-embedding-3-small"`

	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`

	BreakerMaxFailures uint32        `env:"LLM_BREAKER_MAX_FAILURES" envDefault:"3"`
	BreakerTimeout     time.Duration `env:"LLM_BREAKER_TIMEOUT" envDefault:"30s"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
