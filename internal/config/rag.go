package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskchat/pkg/log"
)

type RAGConfig struct {
	KnowledgeBasePath   string   `env:"KNOWLEDGE_BASE_PATH"`
	TopK                int      `env:"RETRIEVAL_TOP_K" envDefault:"3"`
	MinSimilarity       float64  `env:"RETRIEVAL_MIN_SIMILARITY" envDefault:"0.3"`
	EmbeddingDimensions int      `env:"EMBEDDING_DIMENSIONS" envDefault:"0"`
	PersonalFiles       []string `env:"KNOWLEDGE_PERSONAL_FILES" envSeparator:"," envDefault:"brandon-details.md"`
	RebuildCron         string   `env:"INDEX_REBUILD_CRON"`
	IngestConcurrency   int      `env:"INGEST_CONCURRENCY" envDefault:"4"`
}

func NewRAGConfig(ctx context.Context, app *AppConfig) *RAGConfig {
	cfg := &RAGConfig{}
	if err := env.Parse(cfg); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse RAG config")
	}
	if cfg.KnowledgeBasePath == "" {
		cfg.KnowledgeBasePath = app.GetKnowledgeBasePath()
	}
	if cfg.IngestConcurrency < 1 {
		cfg.IngestConcurrency = 1
	}
	return cfg
}

func (c RAGConfig) GetTopK() int {
	return c.TopK
}

func (c RAGConfig) GetMinSimilarity() float64 {
	return c.MinSimilarity
}

func (c RAGConfig) GetEmbeddingDimensions() int {
	return c.EmbeddingDimensions
}
