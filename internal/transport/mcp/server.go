package mcp

import (
	"context"
	"fmt"
	"os"
	"strings"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/retrieval"
	"github.com/sandevgo/tuskchat/pkg/log"
)

type Searcher interface {
	RetrieveWithInfo(ctx context.Context, query string, topK int, minSimilarity float64) (retrieval.Result, error)
}

// Server exposes the knowledge base to MCP clients over stdio.
type Server struct {
	searcher Searcher
	cfg      core.RetrievalConfig
	mcp      *server.MCPServer
}

func NewServer(searcher Searcher, cfg core.RetrievalConfig) *Server {
	s := &Server{
		searcher: searcher,
		cfg:      cfg,
		mcp:      server.NewMCPServer(core.TuskName, core.TuskVersion, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcpproto.NewTool("search_knowledge",
		mcpproto.WithDescription("Search the knowledge base and return the matching passages formatted as context"),
		mcpproto.WithString("query", mcpproto.Required(), mcpproto.Description("Natural language question")),
		mcpproto.WithNumber("top_k", mcpproto.Description("Maximum number of passages")),
		mcpproto.WithNumber("min_similarity", mcpproto.Description("Cosine similarity threshold between 0 and 1")),
	), s.handleSearch)

	s.mcp.AddTool(mcpproto.NewTool("classify_query",
		mcpproto.WithDescription("Classify a query as greeting, project, personal or general"),
		mcpproto.WithString("query", mcpproto.Required(), mcpproto.Description("Natural language question")),
	), s.handleClassify)

	return s
}

// Serve blocks on stdin/stdout until ctx is cancelled or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("serving MCP over stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) handleSearch(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}

	topK := req.GetInt("top_k", s.cfg.GetTopK())
	minSim := req.GetFloat("min_similarity", s.cfg.GetMinSimilarity())

	res, err := s.searcher.RetrieveWithInfo(ctx, query, topK, minSim)
	if err != nil {
		return mcpproto.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
	}

	if len(res.Results) == 0 {
		return mcpproto.NewToolResultText(fmt.Sprintf("No relevant passages (intent: %s).", res.Intent)), nil
	}
	return mcpproto.NewToolResultText(retrieval.FormatForContext(res.Results)), nil
}

func (s *Server) handleClassify(_ context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(query) == "" {
		return mcpproto.NewToolResultError("query must not be empty"), nil
	}
	return mcpproto.NewToolResultText(string(retrieval.Classify(query))), nil
}
