package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

// NewProvider creates the model client selected by LLM_PROVIDER, wrapped in a circuit breaker.
func NewProvider(ctx context.Context, app *config.AppConfig, cfg *config.LLMConfig) (*Breaker, error) {
	var client core.ModelClient
	var model, embedModel string

	switch app.LLMProvider {
	case "ollama":
		client = NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.OllamaModel, cfg.OllamaEmbedModel, cfg.Timeout)
		model, embedModel = cfg.OllamaModel, cfg.OllamaEmbedModel
	case "openai":
		client = NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    cfg.OpenAIBaseURL,
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			EmbedModel: cfg.OpenAIEmbedModel,
			Timeout:    cfg.Timeout,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		})
		model, embedModel = cfg.OpenAIModel, cfg.OpenAIEmbedModel
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", app.LLMProvider)
	}

	log.FromCtx(ctx).Info().
		Str("provider", app.LLMProvider).
		Str("model", model).
		Str("embed_model", embedModel).
		Msg("starting llm provider")

	return NewBreaker(ctx, client, BreakerConfig{
		MaxFailures: cfg.BreakerMaxFailures,
		Timeout:     cfg.BreakerTimeout,
	}), nil
}
