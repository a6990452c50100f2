package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/tuskchat/internal/core"
)

// Ollama talks to the native Ollama API (/api/chat, /api/embed).
type Ollama struct {
	baseProvider
}

func NewOllama(baseURL, apiKey, model, embedModel string, timeout time.Duration) *Ollama {
	return &Ollama{
		baseProvider: newBaseProvider(baseURL, apiKey, model, embedModel, timeout),
	}
}

func (o *Ollama) headers() map[string]string {
	if o.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + o.apiKey}
}

func (o *Ollama) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	payload := map[string]any{
		"model":    o.model,
		"messages": toWire(history),
		"stream":   false,
	}

	var result struct {
		Message wireMessage `json:"message"`
	}
	if err := o.postJSON(ctx, "/api/chat", payload, &result, o.headers()); err != nil {
		return core.Message{}, fmt.Errorf("ollama chat: %w", err)
	}

	return core.Message{
		Role:      core.RoleAssistant,
		Content:   result.Message.Content,
		Timestamp: time.Now(),
	}, nil
}

func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]any{
		"model": o.embedModel,
		"input": text,
	}

	var result struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := o.postJSON(ctx, "/api/embed", payload, &result, o.headers()); err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("ollama embed: empty embedding")
	}
	return result.Embeddings[0], nil
}
