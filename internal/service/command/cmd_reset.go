package command

import (
	"context"

	"github.com/sandevgo/tuskchat/internal/core"
)

type Resetter interface {
	Reset(ctx context.Context, sessionID string)
}

type ResetCommand struct {
	chat      Resetter
	formatter *ResponseFormatter
}

func NewResetCommand(chat Resetter) core.Command {
	return &ResetCommand{
		chat:      chat,
		formatter: NewResponseFormatter(),
	}
}

func (c *ResetCommand) Name() string {
	return "reset"
}

func (c *ResetCommand) Description() string {
	return "Start a new conversation"
}

func (c *ResetCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	c.chat.Reset(ctx, sessionID)
	return c.formatter.Success("Conversation cleared"), nil
}
