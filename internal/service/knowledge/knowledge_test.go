package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/providers/rag"
	"github.com/sandevgo/tuskchat/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu         sync.Mutex
	chunks     []core.DocumentChunk
	clears     int
	loadErr    error
	replaceErr error
}

func (m *memRepo) LoadAllChunks(context.Context) ([]core.DocumentChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]core.DocumentChunk(nil), m.chunks...), nil
}

func (m *memRepo) InsertChunksBatch(_ context.Context, chunks []core.DocumentChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *memRepo) ClearChunks(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = nil
	m.clears++
	return nil
}

func (m *memRepo) ReplaceChunks(_ context.Context, chunks []core.DocumentChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.chunks = append([]core.DocumentChunk(nil), chunks...)
	m.clears++
	return nil
}

type lenEmbedder struct {
	err error
}

func (e lenEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func newTestIndexer(repo *memRepo, emb core.Embedder, reloader Reloader, path string) *Indexer {
	idx := NewIndexer(repo, emb, reloader, IndexerConfig{Path: path, Concurrency: 2})
	idx.retrier = retry.NewRetrier(&retry.Config{MaxRetries: 1, BackoffFactor: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond})
	idx.tokens = rag.CountWords
	return idx
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCache_LoadAndInvalidate(t *testing.T) {
	repo := &memRepo{chunks: []core.DocumentChunk{{SourceFile: "a.md"}, {SourceFile: "b.md"}}}
	cache := NewCache(repo)
	ctx := context.Background()

	assert.False(t, cache.Loaded())
	assert.Empty(t, cache.Chunks(ctx))

	require.NoError(t, cache.Load(ctx))
	assert.True(t, cache.Loaded())
	assert.Equal(t, 2, cache.Len())
	assert.Len(t, cache.Chunks(ctx), 2)

	cache.Invalidate()
	assert.Equal(t, 0, cache.Len())
	assert.Empty(t, cache.Chunks(ctx))
}

func TestCache_FailedLoadKeepsSnapshot(t *testing.T) {
	repo := &memRepo{chunks: []core.DocumentChunk{{SourceFile: "a.md"}}}
	cache := NewCache(repo)
	ctx := context.Background()
	require.NoError(t, cache.Load(ctx))

	repo.loadErr = errors.New("db locked")
	assert.Error(t, cache.Load(ctx))
	assert.Equal(t, 1, cache.Len())
}

func TestIndexer_Build(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "project-tusk.md", "## Tusk\nA chat backend written in Go.")
	writeFile(t, dir, "brandon-details.md", "## About\nBorn somewhere sunny.")
	writeFile(t, dir, "faq.html", "<html><body><h2>FAQ</h2><p>Ask anything.</p></body></html>")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.md"), 0o755))

	repo := &memRepo{chunks: []core.DocumentChunk{{SourceFile: "stale.md"}}}
	cache := NewCache(repo)
	idx := newTestIndexer(repo, lenEmbedder{}, cache, dir)

	stats, err := idx.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalFiles)
	assert.Equal(t, 3, stats.TotalChunks)
	assert.Positive(t, stats.TotalTokens)
	assert.Equal(t, 1, repo.clears)

	chunks := cache.Chunks(context.Background())
	require.Len(t, chunks, 3)

	types := map[string]core.DocumentType{}
	for _, c := range chunks {
		assert.Len(t, c.Embedding, 2)
		assert.Equal(t, float32(len(c.Content)), c.Embedding[0])
		types[c.SourceFile] = c.DocumentType
	}
	assert.Equal(t, core.DocumentProject, types["project-tusk.md"])
	assert.Equal(t, core.DocumentPersonalInfo, types["brandon-details.md"])
	assert.Equal(t, core.DocumentGeneral, types["faq.html"])
	assert.NotContains(t, types, "stale.md")
}

func TestIndexer_MissingPath(t *testing.T) {
	repo := &memRepo{}
	idx := newTestIndexer(repo, lenEmbedder{}, nil, filepath.Join(t.TempDir(), "absent"))

	_, err := idx.Build(context.Background())
	assert.ErrorIs(t, err, ErrKnowledgeBaseMissing)
	assert.Equal(t, 0, repo.clears)
}

func TestIndexer_EmptyDirectory(t *testing.T) {
	repo := &memRepo{chunks: []core.DocumentChunk{{SourceFile: "kept.md"}}}
	idx := newTestIndexer(repo, lenEmbedder{}, nil, t.TempDir())

	stats, err := idx.Build(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalFiles)
	assert.Zero(t, stats.TotalChunks)
	assert.Equal(t, 0, repo.clears)
	assert.Len(t, repo.chunks, 1)
}

func TestIndexer_EmbedFailureKeepsIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "project-tusk.md", "## Tusk\nbody")

	repo := &memRepo{chunks: []core.DocumentChunk{{SourceFile: "kept.md"}}}
	boom := errors.New("embedding model missing")
	idx := newTestIndexer(repo, lenEmbedder{err: boom}, nil, dir)

	_, err := idx.Build(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, repo.clears)
	assert.Len(t, repo.chunks, 1)
}

func TestIndexer_StoreFailureKeepsIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "project-tusk.md", "## Tusk\nbody")

	diskFull := errors.New("disk full")
	repo := &memRepo{chunks: []core.DocumentChunk{{SourceFile: "kept.md"}}, replaceErr: diskFull}
	cache := NewCache(repo)
	require.NoError(t, cache.Load(context.Background()))
	idx := newTestIndexer(repo, lenEmbedder{}, cache, dir)

	_, err := idx.Build(context.Background())
	assert.ErrorIs(t, err, diskFull)
	require.Len(t, repo.chunks, 1)
	assert.Equal(t, "kept.md", repo.chunks[0].SourceFile)
	assert.Equal(t, 1, cache.Len())
}

func TestNewRebuildScheduler(t *testing.T) {
	idx := newTestIndexer(&memRepo{}, lenEmbedder{}, nil, t.TempDir())

	_, err := NewRebuildScheduler("not a cron", idx)
	assert.Error(t, err)

	ticker, err := NewRebuildScheduler("0 3 * * *", idx)
	require.NoError(t, err)
	assert.NotNil(t, ticker)
}
