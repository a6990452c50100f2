package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/retrieval"
)

type Searcher interface {
	RetrieveWithInfo(ctx context.Context, query string, topK int, minSimilarity float64) (retrieval.Result, error)
}

type SearchCommand struct {
	searcher  Searcher
	cfg       core.RetrievalConfig
	formatter *ResponseFormatter
}

func NewSearchCommand(searcher Searcher, cfg core.RetrievalConfig) core.Command {
	return &SearchCommand{
		searcher:  searcher,
		cfg:       cfg,
		formatter: NewResponseFormatter(),
	}
}

func (c *SearchCommand) Name() string {
	return "search"
}

func (c *SearchCommand) Description() string {
	return "Show what the knowledge base returns for a query"
}

func (c *SearchCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Usage("/search <query>"),
			c.formatter.Examples([]string{
				"/search what projects have you built",
				"/search where did you study",
			}),
		), nil
	}

	query := strings.Join(args, " ")
	res, err := c.searcher.RetrieveWithInfo(ctx, query, c.cfg.GetTopK(), c.cfg.GetMinSimilarity())
	if err != nil {
		return c.formatter.Error(c.Name(), err), nil
	}

	header := c.formatter.Combine(
		c.formatter.Info("Search"),
		c.formatter.Label("Intent", string(res.Intent)),
		c.formatter.Label("Results", fmt.Sprintf("%d", len(res.Results))),
	)
	if len(res.Results) == 0 {
		return header, nil
	}

	items := make([]string, len(res.Results))
	for i, r := range res.Results {
		heading := ""
		if r.Chunk.Heading != nil {
			heading = " " + strings.TrimSpace(strings.TrimLeft(*r.Chunk.Heading, "#"))
		}
		items[i] = fmt.Sprintf("`%.3f` **%s**%s", r.Similarity, r.Chunk.SourceFile, heading)
	}

	return c.formatter.Combine(header, c.formatter.List(items)), nil
}
