package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/internal/service/ui"
	"github.com/sandevgo/tuskchat/pkg/conv"
	"github.com/sandevgo/tuskchat/pkg/log"
)

const defaultSessionID = "cli-local"

type Chatter interface {
	Run(ctx context.Context, sessionID, input string) (chat.Reply, error)
}

type ReadLine struct {
	cfg    *config.AppConfig
	chat   Chatter
	router core.CmdRouter
	rl     *readline.Instance
	out    io.Writer
}

func NewReadLine(chat Chatter, router core.CmdRouter, cfg *config.AppConfig) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:    cfg,
		chat:   chat,
		router: router,
		rl:     rl,
		out:    rl.Stdout(),
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("ReadLine chat started. Type 'exit' to quit, /help for commands.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		r.handle(ctx, line)
	}
}

func (r *ReadLine) handle(ctx context.Context, line string) {
	if reply, ok := r.router.Execute(ctx, defaultSessionID, line); ok {
		fmt.Fprintln(r.out, plain(reply))
		return
	}

	reply, err := r.chat.Run(ctx, defaultSessionID, line)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("chat turn failed")
		fmt.Fprintln(r.out, ui.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))
		return
	}

	fmt.Fprintf(r.out, "%s %s\n", ui.PromptStyle.Render("tusk>"), plain(reply.Text))
	if len(reply.Sources) > 0 {
		fmt.Fprintln(r.out, ui.DescStyle.Render("sources: "+strings.Join(reply.Sources, ", ")))
	}
}

// plain renders markdown for the terminal, falling back to the raw text.
func plain(md string) string {
	text, err := conv.MarkdownToPlainText(md)
	if err != nil {
		return md
	}
	return text
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
