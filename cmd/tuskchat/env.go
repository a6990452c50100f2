package main

import (
	"fmt"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/pkg/env"
	"github.com/spf13/cobra"
)

var showSecrets bool

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the effective configuration as a .env file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		app := config.NewAppConfig(ctx)
		sections := []struct {
			title string
			cfg   any
		}{
			{"app", app},
			{"session", config.NewSessionConfig(ctx)},
			{"retrieval", config.NewRAGConfig(ctx, app)},
			{"llm", config.NewLLMConfig(ctx)},
			{"http", config.NewHTTPConfig(ctx)},
		}

		out := cmd.OutOrStdout()
		for _, s := range sections {
			body, err := env.MarshalEnv(s.cfg, !showSecrets)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "# %s\n%s\n", s.title, body)
		}
		return nil
	},
}

func init() {
	envCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print API keys and tokens unmasked")
	rootCmd.AddCommand(envCmd)
}
