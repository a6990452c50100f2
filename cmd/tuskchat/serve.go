package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/sandevgo/tuskchat/pkg/srv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat backend",
	Long:  `Starts the enabled transports (HTTP, Telegram) together with the session sweeper and the analytics recorder.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting tuskchat")

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
		transports, err := d.transports(ctx)
		if err != nil {
			d.db.Close()
			return err
		}
		services = append(services, transports...)

		// Start services
		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("tuskchat has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
