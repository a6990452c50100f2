package retrieval

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/providers/rag"
	"github.com/sandevgo/tuskchat/pkg/log"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ChunkSource supplies the current in-memory chunk snapshot.
type ChunkSource interface {
	Chunks(ctx context.Context) []core.DocumentChunk
}

// Result is a retrieval outcome together with the classification that produced it.
type Result struct {
	Intent  core.Intent
	Results []core.RetrievalResult
	Latency time.Duration
}

type Retriever struct {
	embedder   core.Embedder
	source     ChunkSource
	dimensions int
}

// NewRetriever creates a retriever. dimensions > 0 enables a check of the query embedding size.
func NewRetriever(embedder core.Embedder, source ChunkSource, dimensions int) *Retriever {
	return &Retriever{
		embedder:   embedder,
		source:     source,
		dimensions: dimensions,
	}
}

// Retrieve returns up to topK chunks of the document type matching the query intent,
// ranked by cosine similarity and filtered by minSimilarity.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, minSimilarity float64) ([]core.RetrievalResult, error) {
	res, err := r.RetrieveWithInfo(ctx, query, topK, minSimilarity)
	if err != nil {
		return nil, err
	}
	return res.Results, nil
}

func (r *Retriever) RetrieveWithInfo(ctx context.Context, query string, topK int, minSimilarity float64) (Result, error) {
	logger := log.FromCtx(ctx).With().Str("component", "retrieval").Logger()
	start := time.Now()

	intent := Classify(query)
	res := Result{Intent: intent}

	docType, ok := intent.DocumentType()
	if !ok {
		logger.Debug().Str("intent", string(intent)).Msg("retrieval skipped")
		res.Latency = time.Since(start)
		r.observe(res)
		return res, nil
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		retrievalErrors.WithLabelValues("embed").Inc()
		return res, fmt.Errorf("embed query: %w", err)
	}

	if r.dimensions > 0 && len(embedding) != r.dimensions {
		retrievalErrors.WithLabelValues("dimensions").Inc()
		return res, fmt.Errorf("%w: query has %d, expected %d", ErrDimensionMismatch, len(embedding), r.dimensions)
	}

	chunks := r.source.Chunks(ctx)
	if len(chunks) == 0 {
		logger.Debug().Msg("no chunks available in cache")
		res.Latency = time.Since(start)
		r.observe(res)
		return res, nil
	}

	var ranked []core.RetrievalResult
	for _, chunk := range chunks {
		if chunk.DocumentType != docType {
			continue
		}
		if len(chunk.Embedding) != len(embedding) {
			retrievalErrors.WithLabelValues("dimensions").Inc()
			return res, fmt.Errorf("%w: chunk %s#%d has %d, query has %d",
				ErrDimensionMismatch, chunk.SourceFile, chunk.ChunkIndex, len(chunk.Embedding), len(embedding))
		}
		ranked = append(ranked, core.RetrievalResult{
			Chunk:      chunk,
			Similarity: rag.CosineSimilarity(embedding, chunk.Embedding),
		})
	}

	slices.SortStableFunc(ranked, func(a, b core.RetrievalResult) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		default:
			return 0
		}
	})

	for i, rr := range ranked[:min(5, len(ranked))] {
		heading := "No heading"
		if rr.Chunk.Heading != nil {
			heading = *rr.Chunk.Heading
		}
		logger.Debug().
			Int("rank", i+1).
			Float64("similarity", rr.Similarity).
			Str("source", rr.Chunk.SourceFile).
			Str("heading", heading).
			Msg("candidate")
	}

	filtered := ranked[:0]
	for _, rr := range ranked {
		if rr.Similarity >= minSimilarity {
			filtered = append(filtered, rr)
		}
	}
	if topK >= 0 && len(filtered) > topK {
		filtered = filtered[:topK]
	}

	res.Results = filtered
	res.Latency = time.Since(start)
	r.observe(res)

	logger.Debug().
		Str("intent", string(intent)).
		Int("candidates", len(ranked)).
		Int("returned", len(filtered)).
		Float64("min_similarity", minSimilarity).
		Msg("retrieval done")

	return res, nil
}

func (r *Retriever) observe(res Result) {
	retrievalLatency.WithLabelValues(string(res.Intent)).Observe(res.Latency.Seconds())
	retrievalChunks.WithLabelValues(string(res.Intent)).Observe(float64(len(res.Results)))
}

// FormatForContext renders results as labelled blocks for the system context message.
func FormatForContext(results []core.RetrievalResult) string {
	if len(results) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		source := strings.Replace(r.Chunk.SourceFile, ".md", "", 1)
		blocks = append(blocks, fmt.Sprintf("[RETRIEVED CONTEXT from %s]\n%s", source, r.Chunk.Content))
	}
	return strings.Join(blocks, "\n\n")
}
