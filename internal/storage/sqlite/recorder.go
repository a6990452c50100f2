package sqlite

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

const defaultQueueSize = 1024

type event struct {
	label string
	op    func(ctx context.Context) error
}

// Recorder is a write-behind core.Sink. Events are applied by a single worker
// in the order they were enqueued; a full queue drops events.
type Recorder struct {
	sessions  *SessionsRepo
	messages  *MessagesRepo
	analytics *AnalyticsRepo

	queue chan event
	done  chan struct{}

	mu     sync.Mutex
	closed bool
	ctx    context.Context
}

func NewRecorder(ctx context.Context, db *sql.DB, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Recorder{
		sessions:  NewSessionsRepo(db),
		messages:  NewMessagesRepo(db),
		analytics: NewAnalyticsRepo(db),
		queue:     make(chan event, queueSize),
		done:      make(chan struct{}),
		ctx:       log.WithComponent(ctx, "recorder"),
	}
}

// Start applies queued events until Shutdown closes the queue.
func (r *Recorder) Start(ctx context.Context) error {
	defer close(r.done)

	// Writes outlive the serve context so that Shutdown can drain.
	wctx := context.WithoutCancel(log.WithComponent(ctx, "recorder"))
	for ev := range r.queue {
		writeSafe(wctx, ev.label, ev.op)
	}
	return nil
}

// Shutdown stops accepting events and waits for the queue to drain.
func (r *Recorder) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) enqueue(label string, op func(ctx context.Context) error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		log.FromCtx(r.ctx).Warn().Str("op", label).Msg("recorder closed, event dropped")
		return
	}

	select {
	case r.queue <- event{label: label, op: op}:
	default:
		log.FromCtx(r.ctx).Warn().Str("op", label).Msg("recorder queue full, event dropped")
	}
}

func (r *Recorder) CreateSession(sessionID string, at time.Time) {
	r.enqueue("create_session", func(ctx context.Context) error {
		return r.sessions.CreateSession(ctx, sessionID, at)
	})
}

func (r *Recorder) UpdateLastSeen(sessionID string, at time.Time) {
	r.enqueue("update_last_seen", func(ctx context.Context) error {
		return r.sessions.UpdateLastSeen(ctx, sessionID, at)
	})
}

func (r *Recorder) MarkExpired(sessionIDs []string, at time.Time) {
	ids := append([]string(nil), sessionIDs...)
	r.enqueue("mark_expired", func(ctx context.Context) error {
		return r.sessions.MarkExpired(ctx, ids, at)
	})
}

func (r *Recorder) IncrementReset(sessionID string) {
	r.enqueue("increment_reset", func(ctx context.Context) error {
		return r.sessions.IncrementReset(ctx, sessionID)
	})
}

func (r *Recorder) InsertMessage(sessionID string, msg core.Message, position int) {
	r.enqueue("insert_message", func(ctx context.Context) error {
		return r.messages.InsertMessage(ctx, sessionID, msg, position)
	})
}

func (r *Recorder) MarkTrimmed(sessionID string, positions []int) {
	p := append([]int(nil), positions...)
	r.enqueue("mark_trimmed", func(ctx context.Context) error {
		return r.messages.MarkTrimmed(ctx, sessionID, p)
	})
}

func (r *Recorder) InsertTurnLog(turn core.TurnLog) {
	r.enqueue("insert_turn_log", func(ctx context.Context) error {
		return r.analytics.InsertTurnLog(ctx, turn)
	})
}

func (r *Recorder) InsertRetrievalLog(l core.RetrievalLog) {
	r.enqueue("insert_retrieval_log", func(ctx context.Context) error {
		return r.analytics.InsertRetrievalLog(ctx, l)
	})
}
