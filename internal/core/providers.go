package core

import "context"

type AIProvider interface {
	Chat(ctx context.Context, history []Message) (Message, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ModelClient is the full remote model surface used by the chat backend.
type ModelClient interface {
	AIProvider
	Embedder
}
