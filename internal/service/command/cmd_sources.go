package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/sandevgo/tuskchat/internal/core"
)

type ChunkSource interface {
	Chunks(ctx context.Context) []core.DocumentChunk
}

type SourcesCommand struct {
	source    ChunkSource
	formatter *ResponseFormatter
}

func NewSourcesCommand(source ChunkSource) core.Command {
	return &SourcesCommand{
		source:    source,
		formatter: NewResponseFormatter(),
	}
}

func (c *SourcesCommand) Name() string {
	return "sources"
}

func (c *SourcesCommand) Description() string {
	return "List indexed knowledge files"
}

func (c *SourcesCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	chunks := c.source.Chunks(ctx)
	if len(chunks) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Knowledge Base"),
			c.formatter.Label("Status", "empty"),
			c.formatter.Tip("Run `tuskchat ingest` to build the index"),
		), nil
	}

	type fileInfo struct {
		chunks  int
		docType core.DocumentType
	}
	files := make(map[string]*fileInfo)
	for _, ch := range chunks {
		fi, ok := files[ch.SourceFile]
		if !ok {
			fi = &fileInfo{docType: ch.DocumentType}
			files[ch.SourceFile] = fi
		}
		fi.chunks++
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]string, len(names))
	for i, name := range names {
		items[i] = fmt.Sprintf("**%s** (%s, %d chunks)", name, files[name].docType, files[name].chunks)
	}

	return c.formatter.Combine(
		c.formatter.Info("Knowledge Base"),
		c.formatter.Label("Chunks", fmt.Sprintf("%d", len(chunks))),
		c.formatter.List(items),
	), nil
}
