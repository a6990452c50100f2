package rag

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(prefix string, n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix
	}
	return strings.Join(out, " ")
}

func TestChunkMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		cfg      ChunkerConfig
		contents []string
		headings []string
	}{
		{
			name:     "Empty input",
			text:     "",
			cfg:      DefaultChunkerConfig(),
			contents: nil,
		},
		{
			name:     "No headings",
			text:     "Hello world.",
			cfg:      DefaultChunkerConfig(),
			contents: []string{"Hello world."},
			headings: []string{""},
		},
		{
			name:     "Small sections are merged",
			text:     "## A\nalpha beta\n## B\ngamma",
			cfg:      DefaultChunkerConfig(),
			contents: []string{"## A\n\nalpha beta\n\n## B\n\ngamma"},
			headings: []string{"## A"},
		},
		{
			name:     "Untitled preamble takes the next heading",
			text:     "intro line\n## Next\nbody",
			cfg:      DefaultChunkerConfig(),
			contents: []string{"intro line\n\n## Next\n\nbody"},
			headings: []string{"## Next"},
		},
		{
			name:     "Level three headings do not split",
			text:     "## Top\nfirst\n### Sub\nsecond",
			cfg:      ChunkerConfig{MaxWords: 600, MinWords: 0},
			contents: []string{"## Top\n\nfirst\n### Sub\nsecond"},
			headings: []string{"## Top"},
		},
		{
			name: "Oversized section splits at paragraphs",
			text: "## Big\n" + words("a", 6) + "\n\n" + words("b", 6),
			cfg:  ChunkerConfig{MaxWords: 10, MinWords: 0},
			contents: []string{
				"## Big\n\n" + words("a", 6),
				"## Big\n\n" + words("b", 6),
			},
			headings: []string{"## Big", "## Big"},
		},
		{
			name: "Merge skipped when it would exceed the limit",
			text: "## A\n" + words("a", 3) + "\n## B\n" + words("b", 8),
			cfg:  ChunkerConfig{MaxWords: 10, MinWords: 6},
			contents: []string{
				"## A\n\n" + words("a", 3),
				"## B\n\n" + words("b", 8),
			},
			headings: []string{"## A", "## B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkMarkdown("notes.md", tt.text, tt.cfg)
			require.Len(t, chunks, len(tt.contents))

			for i, c := range chunks {
				assert.Equal(t, tt.contents[i], c.Content, "chunk %d", i)
				assert.Equal(t, i, c.ChunkIndex)
				assert.Equal(t, "notes.md", c.SourceFile)
				assert.Equal(t, utf8.RuneCountInString(c.Content), c.CharCount)
				assert.Equal(t, CountWords(c.Content), c.WordCount)
				if tt.headings[i] == "" {
					assert.Nil(t, c.Heading)
				} else {
					require.NotNil(t, c.Heading)
					assert.Equal(t, tt.headings[i], *c.Heading)
				}
			}
		})
	}
}

func TestChunkMarkdown_CharCountIsRunes(t *testing.T) {
	chunks := ChunkMarkdown("notes.md", "Café naïve 日本語", DefaultChunkerConfig())
	require.Len(t, chunks, 1)
	assert.Equal(t, 22, len(chunks[0].Content))
	assert.Equal(t, 14, chunks[0].CharCount)
}

func TestChunkMarkdown_DocumentType(t *testing.T) {
	chunks := ChunkMarkdown("project-tusk.md", "## One\nbody", DefaultChunkerConfig())
	require.Len(t, chunks, 1)
	assert.Equal(t, core.DocumentProject, chunks[0].DocumentType)
}

func TestInferDocumentType(t *testing.T) {
	personal := []string{"brandon-details.md"}
	tests := []struct {
		file string
		want core.DocumentType
	}{
		{"brandon-details.md", core.DocumentPersonalInfo},
		{"Brandon-Details.md", core.DocumentPersonalInfo},
		{"kb/brandon-details.md", core.DocumentPersonalInfo},
		{"project-tusk.md", core.DocumentProject},
		{"tusk-overview.md", core.DocumentProject},
		{"faq.md", core.DocumentGeneral},
		{"overview.md", core.DocumentGeneral},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, InferDocumentType(tt.file, personal), tt.file)
	}
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("  \n\t "))
	assert.Equal(t, 2, CountWords("hello   world"))
	assert.Equal(t, 3, CountWords("## heading\nline"))
}
