package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/tuskchat/internal/transport/mcp"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve knowledge search as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// stdout carries the protocol
		var flushLog func()
		ctx, flushLog = log.NewContextWithOptions(ctx, log.Options{Debug: isDebug(), Out: os.Stderr})
		defer flushLog()

		d, err := newDeps(ctx)
		if err != nil {
			return err
		}
		defer d.db.Close()
		d.loadCache(ctx)

		return mcp.NewServer(d.retriever, d.ragCfg).Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
