package mcp

import (
	"context"
	"errors"
	"testing"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/retrieval"
)

type fakeSearcher struct {
	res     retrieval.Result
	err     error
	gotTopK int
	gotMin  float64
}

func (f *fakeSearcher) RetrieveWithInfo(_ context.Context, _ string, topK int, minSimilarity float64) (retrieval.Result, error) {
	f.gotTopK, f.gotMin = topK, minSimilarity
	return f.res, f.err
}

func callRequest(args map[string]any) mcpproto.CallToolRequest {
	req := mcpproto.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcpproto.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcpproto.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestSearchKnowledge(t *testing.T) {
	fs := &fakeSearcher{res: retrieval.Result{
		Intent: core.IntentProject,
		Results: []core.RetrievalResult{{
			Chunk:      core.DocumentChunk{SourceFile: "project-tusk.md", Content: "Tusk is a bot."},
			Similarity: 0.8,
		}},
	}}
	s := NewServer(fs, config.RAGConfig{TopK: 3, MinSimilarity: 0.3})

	res, err := s.handleSearch(context.Background(), callRequest(map[string]any{"query": "what projects?"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "[RETRIEVED CONTEXT from project-tusk]\nTusk is a bot.", resultText(t, res))
	assert.Equal(t, 3, fs.gotTopK)
	assert.InDelta(t, 0.3, fs.gotMin, 1e-9)

	_, err = s.handleSearch(context.Background(), callRequest(map[string]any{
		"query": "what projects?", "top_k": 5, "min_similarity": 0.0,
	}))
	require.NoError(t, err)
	assert.Equal(t, 5, fs.gotTopK)
	assert.Zero(t, fs.gotMin)
}

func TestSearchKnowledge_Errors(t *testing.T) {
	s := NewServer(&fakeSearcher{err: errors.New("embed down")}, config.RAGConfig{TopK: 3})

	res, err := s.handleSearch(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleSearch(context.Background(), callRequest(map[string]any{"query": "projects"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "embed down")
}

func TestSearchKnowledge_NoResults(t *testing.T) {
	s := NewServer(&fakeSearcher{res: retrieval.Result{Intent: core.IntentGreeting}}, config.RAGConfig{TopK: 3})

	res, err := s.handleSearch(context.Background(), callRequest(map[string]any{"query": "hi"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "greeting")
}

func TestClassifyQuery(t *testing.T) {
	s := NewServer(&fakeSearcher{}, config.RAGConfig{})

	res, err := s.handleClassify(context.Background(), callRequest(map[string]any{"query": "hello there"}))
	require.NoError(t, err)
	assert.Equal(t, "greeting", resultText(t, res))

	res, err = s.handleClassify(context.Background(), callRequest(map[string]any{"query": "   "}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
