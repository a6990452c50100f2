package main

import (
	"fmt"
	"time"

	"github.com/sandevgo/tuskchat/internal/service/ui"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Rebuild the knowledge index from the knowledge base directory",
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

		log.FromCtx(ctx).Info().Str("path", d.ragCfg.KnowledgeBasePath).Msg("building knowledge index")

		stats, err := d.indexer.Build(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.TitleStyle.Render("Index built"))
		fmt.Fprintf(out, "  files:    %s\n", ui.UsageStyle.Render(fmt.Sprint(stats.TotalFiles)))
		fmt.Fprintf(out, "  chunks:   %s\n", ui.UsageStyle.Render(fmt.Sprint(stats.TotalChunks)))
		fmt.Fprintf(out, "  tokens:   %s\n", ui.DescStyle.Render(fmt.Sprintf("~%d", stats.TotalTokens)))
		fmt.Fprintf(out, "  duration: %s\n", ui.DescStyle.Render(stats.Duration.Round(time.Millisecond).String()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
