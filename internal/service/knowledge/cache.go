package knowledge

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

// Cache holds the in-memory chunk snapshot used for retrieval.
// A new snapshot replaces the old one only after it is fully loaded,
// so readers never observe a partial index.
type Cache struct {
	repo     core.ChunkRepository
	snapshot atomic.Pointer[[]core.DocumentChunk]
}

func NewCache(repo core.ChunkRepository) *Cache {
	return &Cache{repo: repo}
}

func (c *Cache) Load(ctx context.Context) error {
	chunks, err := c.repo.LoadAllChunks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load chunks: %w", err)
	}
	if chunks == nil {
		chunks = []core.DocumentChunk{}
	}

	c.snapshot.Store(&chunks)

	log.FromCtx(ctx).Info().
		Str("component", "knowledge").
		Int("chunks", len(chunks)).
		Msg("retrieval cache loaded")
	return nil
}

// Chunks returns the current snapshot. The slice is shared and must not be modified.
func (c *Cache) Chunks(ctx context.Context) []core.DocumentChunk {
	p := c.snapshot.Load()
	if p == nil {
		log.FromCtx(ctx).Warn().Str("component", "knowledge").Msg("retrieval cache not loaded")
		return nil
	}
	return *p
}

func (c *Cache) Invalidate() {
	c.snapshot.Store(nil)
}

func (c *Cache) Loaded() bool {
	return c.snapshot.Load() != nil
}

func (c *Cache) Len() int {
	p := c.snapshot.Load()
	if p == nil {
		return 0
	}
	return len(*p)
}
