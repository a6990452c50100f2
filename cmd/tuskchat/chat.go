package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/tuskchat/internal/transport/cli"
	"github.com/sandevgo/tuskchat/pkg/srv"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the knowledge base in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		d, err := newDeps(ctx)
		if err != nil {
			return err
		}
		d.loadCache(ctx)

		services, err := d.backgroundServices(ctx)
		if err != nil {
			d.db.Close()
			return err
		}

		repl, err := cli.NewReadLine(d.chat, d.router, d.appCfg)
		if err != nil {
			d.db.Close()
			return err
		}
		services = append(services, repl)

		srv.StartServices(ctx, services[:len(services)-1])

		// The REPL owns the terminal; leaving it ends the command.
		replErr := repl.Start(ctx)
		stop()
		srv.ShutdownServices(ctx, services)

		return replErr
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
