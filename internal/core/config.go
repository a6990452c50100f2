package core

import "time"

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetSystemPromptPath() string
	IsHTTPSelected() bool
	IsTelegramSelected() bool
}

type SessionConfig interface {
	GetSessionTTL() time.Duration
	GetMaxMessages() int
	GetMaxChars() int
}

type RetrievalConfig interface {
	GetTopK() int
	GetMinSimilarity() float64
	GetEmbeddingDimensions() int
}
