package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/ui"
	"github.com/spf13/cobra"
)

var defaultProbeQueries = []string{
	"What projects have you built?",
	"Tell me about your background",
	"What technologies do you use?",
	"What are your hobbies?",
	"hello",
}

const (
	probeTopK    = 5
	previewChars = 100
)

var probeCmd = &cobra.Command{
	Use:   "probe [query...]",
	Short: "Run sample queries against the index and print similarity scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		d, err := newDeps(ctx)
		if err != nil {
			return err
		}
		defer d.db.Close()

		if err := d.cache.Load(ctx); err != nil {
			return err
		}

		queries := defaultProbeQueries
		if len(args) > 0 {
			queries = []string{strings.Join(args, " ")}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.TitleStyle.Render(fmt.Sprintf("Probing %d chunks", d.cache.Len())))

		for _, q := range queries {
			res, err := d.retriever.RetrieveWithInfo(ctx, q, probeTopK, 0)
			if err != nil {
				fmt.Fprintln(out, ui.ErrorStyle.Render(fmt.Sprintf("%q: %v", q, err)))
				continue
			}
			printProbe(out, q, res.Intent, res.Results)
		}
		return nil
	},
}

func printProbe(out io.Writer, query string, intent core.Intent, results []core.RetrievalResult) {
	fmt.Fprintf(out, "\n%s %s\n", ui.UsageStyle.Render(query), ui.DescStyle.Render("("+string(intent)+")"))

	if len(results) == 0 {
		fmt.Fprintln(out, ui.DescStyle.Render("  no results"))
		return
	}

	var weak, strong int
	for i, r := range results {
		heading := "(no heading)"
		if r.Chunk.Heading != nil {
			heading = *r.Chunk.Heading
		}
		fmt.Fprintf(out, "  %d. %s %s %s\n", i+1, ui.Score(r.Similarity), r.Chunk.SourceFile, heading)
		fmt.Fprintf(out, "     %s\n", ui.DescStyle.Render(preview(r.Chunk.Content)))

		if r.Similarity > ui.WeakMatch {
			weak++
		}
		if r.Similarity > ui.StrongMatch {
			strong++
		}
	}
	fmt.Fprintf(out, "  above %.1f: %d, above %.1f: %d\n", ui.WeakMatch, weak, ui.StrongMatch, strong)
}

func preview(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	r := []rune(s)
	if len(r) <= previewChars {
		return s
	}
	return string(r[:previewChars]) + "..."
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
