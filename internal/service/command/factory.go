package command

import (
	"github.com/sandevgo/tuskchat/internal/core"
)

func NewCommands(
	chat Resetter,
	searcher Searcher,
	source ChunkSource,
	cfg core.RetrievalConfig,
) []core.Command {
	return []core.Command{
		NewResetCommand(chat),
		NewSearchCommand(searcher, cfg),
		NewSourcesCommand(source),
	}
}
