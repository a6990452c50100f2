package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/providers/rag"
	"github.com/sandevgo/tuskchat/pkg/conv"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/sandevgo/tuskchat/pkg/retry"
)

var ErrKnowledgeBaseMissing = errors.New("knowledge base path does not exist")

type IndexerConfig struct {
	Path          string
	PersonalFiles []string
	Concurrency   int
}

// Reloader is notified after a successful rebuild.
type Reloader interface {
	Load(ctx context.Context) error
}

type Indexer struct {
	repo     core.ChunkRepository
	embedder core.Embedder
	reloader Reloader
	cfg      IndexerConfig
	retrier  *retry.Retrier
	tokens   func(string) int

	// one rebuild at a time
	mu sync.Mutex
}

func NewIndexer(repo core.ChunkRepository, embedder core.Embedder, reloader Reloader, cfg IndexerConfig) *Indexer {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Indexer{
		repo:     repo,
		embedder: embedder,
		reloader: reloader,
		cfg:      cfg,
		retrier:  retry.NewRetrier(retry.NewEmbeddingConfig()),
		tokens:   rag.CountTokens,
	}
}

// Build rebuilds the chunk index from the knowledge base directory.
// The stored index is replaced only after every chunk was embedded.
func (idx *Indexer) Build(ctx context.Context) (core.IndexStats, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	logger := log.FromCtx(ctx).With().Str("component", "indexer").Logger()
	start := time.Now()
	var stats core.IndexStats

	files, err := idx.listFiles()
	if err != nil {
		return stats, err
	}

	if len(files) == 0 {
		logger.Warn().Str("path", idx.cfg.Path).Msg("no knowledge files found")
		stats.Duration = time.Since(start)
		return stats, nil
	}

	chunkerCfg := rag.DefaultChunkerConfig()
	if len(idx.cfg.PersonalFiles) > 0 {
		chunkerCfg.PersonalFiles = idx.cfg.PersonalFiles
	}

	var chunks []core.DocumentChunk
	for _, file := range files {
		text, err := readKnowledgeFile(filepath.Join(idx.cfg.Path, file))
		if err != nil {
			return stats, err
		}

		fileChunks := rag.ChunkMarkdown(file, text, chunkerCfg)
		logger.Debug().Str("file", file).Int("chunks", len(fileChunks)).Msg("chunked")
		chunks = append(chunks, fileChunks...)
	}

	if err := idx.embedAll(ctx, chunks); err != nil {
		return stats, err
	}

	for _, c := range chunks {
		stats.TotalTokens += idx.tokens(c.Content)
	}

	if err := idx.repo.ReplaceChunks(ctx, chunks); err != nil {
		return stats, fmt.Errorf("failed to store chunks: %w", err)
	}

	if idx.reloader != nil {
		if err := idx.reloader.Load(ctx); err != nil {
			return stats, err
		}
	}

	stats.TotalFiles = len(files)
	stats.TotalChunks = len(chunks)
	stats.Duration = time.Since(start)

	logger.Info().
		Int("files", stats.TotalFiles).
		Int("chunks", stats.TotalChunks).
		Int("tokens", stats.TotalTokens).
		Dur("duration", stats.Duration).
		Msg("knowledge index rebuilt")

	return stats, nil
}

func (idx *Indexer) listFiles() ([]string, error) {
	entries, err := os.ReadDir(idx.cfg.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKnowledgeBaseMissing, idx.cfg.Path)
		}
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".md", ".html", ".htm":
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func readKnowledgeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		text, err := conv.HTMLToText(string(data))
		if err != nil {
			return "", fmt.Errorf("failed to convert %s: %w", path, err)
		}
		return text, nil
	default:
		return string(data), nil
	}
}

func (idx *Indexer) embedAll(ctx context.Context, chunks []core.DocumentChunk) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.cfg.Concurrency)

	for i := range chunks {
		g.Go(func() error {
			var vec []float32
			err := idx.retrier.Do(gctx, func() error {
				var err error
				vec, err = idx.embedder.Embed(gctx, chunks[i].Content)
				return err
			})
			if err != nil {
				return fmt.Errorf("failed to embed %s#%d: %w", chunks[i].SourceFile, chunks[i].ChunkIndex, err)
			}
			chunks[i].Embedding = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	dims := -1
	for _, c := range chunks {
		if dims == -1 {
			dims = len(c.Embedding)
		}
		if len(c.Embedding) != dims {
			return fmt.Errorf("embedder returned vectors of different sizes (%d and %d)", dims, len(c.Embedding))
		}
	}
	return nil
}
