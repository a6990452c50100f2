package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/providers/rag"
	"github.com/sandevgo/tuskchat/internal/service/retrieval"
	"github.com/sandevgo/tuskchat/internal/service/session"
	"github.com/sandevgo/tuskchat/pkg/log"
)

type Retriever interface {
	RetrieveWithInfo(ctx context.Context, query string, topK int, minSimilarity float64) (retrieval.Result, error)
}

// Reply is the outcome of one chat turn.
type Reply struct {
	Text    string
	TurnID  string
	Intent  core.Intent
	Sources []string
}

type Service struct {
	store     *session.Store
	retriever Retriever
	ai        core.AIProvider
	sink      core.Sink
	cfg       core.RetrievalConfig
	newID     func() string
	now       func() time.Time
}

func NewService(
	store *session.Store,
	retriever Retriever,
	ai core.AIProvider,
	sink core.Sink,
	cfg core.RetrievalConfig,
) *Service {
	if sink == nil {
		sink = core.NopSink{}
	}
	return &Service{
		store:     store,
		retriever: retriever,
		ai:        ai,
		sink:      sink,
		cfg:       cfg,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Run executes one turn: retrieve, append the user message, call the model, append the reply.
// A retrieval failure leaves the session untouched; a model failure leaves only the user message.
func (s *Service) Run(ctx context.Context, sessionID, input string) (Reply, error) {
	logger := log.FromCtx(ctx).With().Str("session_id", sessionID).Logger()
	turnID := s.newID()
	userAt := s.now()

	found, err := s.retriever.RetrieveWithInfo(ctx, input, s.cfg.GetTopK(), s.cfg.GetMinSimilarity())
	if err != nil {
		turnErrors.WithLabelValues("retrieval").Inc()
		return Reply{}, fmt.Errorf("retrieval failed: %w", err)
	}

	s.sink.InsertRetrievalLog(core.RetrievalLog{
		SessionID:       sessionID,
		TurnID:          turnID,
		Query:           input,
		ChunksRetrieved: len(found.Results),
		LatencyMs:       found.Latency.Milliseconds(),
		Classification:  found.Intent,
		CreatedAt:       s.now(),
	})

	s.store.AppendUser(sessionID, input)

	messages := s.store.ComposeForInference(sessionID, retrieval.FormatForContext(found.Results))
	contextWords := ContextWordCount(messages)

	t0 := time.Now()
	resp, err := s.ai.Chat(ctx, messages)
	latency := time.Since(t0)
	if err != nil {
		turnErrors.WithLabelValues("model").Inc()
		return Reply{}, fmt.Errorf("ai chat error: %w", err)
	}

	assistantAt := s.now()
	s.store.AppendAssistant(sessionID, resp.Content)

	s.sink.InsertTurnLog(core.TurnLog{
		SessionID: sessionID,
		TurnID:    turnID,
		User: core.LoggedMessage{
			Role:      core.RoleUser,
			Content:   input,
			At:        userAt,
			WordCount: rag.CountWords(input),
		},
		Assistant: core.LoggedMessage{
			Role:      core.RoleAssistant,
			Content:   resp.Content,
			At:        assistantAt,
			WordCount: rag.CountWords(resp.Content),
		},
		LatencyMs:        latency.Milliseconds(),
		ContextWordCount: contextWords,
	})

	turnLatency.WithLabelValues(string(found.Intent)).Observe(latency.Seconds())
	contextSize.Observe(float64(contextWords))

	logger.Debug().
		Str("turn_id", turnID).
		Str("intent", string(found.Intent)).
		Int("chunks", len(found.Results)).
		Int("context_words", contextWords).
		Dur("latency", latency).
		Msg("turn completed")

	return Reply{
		Text:    resp.Content,
		TurnID:  turnID,
		Intent:  found.Intent,
		Sources: sources(found.Results),
	}, nil
}

// Reset clears the conversation of a session.
func (s *Service) Reset(ctx context.Context, sessionID string) {
	s.store.Reset(sessionID)
	log.FromCtx(ctx).Debug().Str("session_id", sessionID).Msg("session reset")
}

func (s *Service) SessionCount() int {
	return s.store.Len()
}

// History returns the current window of a session without refreshing it.
func (s *Service) History(sessionID string) ([]core.Message, bool) {
	w, ok := s.store.Snapshot(sessionID)
	return w.Messages, ok
}

// ContextWordCount is the word footprint of the messages sent to the model.
func ContextWordCount(messages []core.Message) int {
	total := 0
	for _, m := range messages {
		total += rag.CountWords(m.Content)
	}
	return total
}

func sources(results []core.RetrievalResult) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range results {
		if !seen[r.Chunk.SourceFile] {
			seen[r.Chunk.SourceFile] = true
			out = append(out, r.Chunk.SourceFile)
		}
	}
	return out
}
