package session

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sandevgo/tuskchat/internal/core"
)

// Window is a point-in-time copy of a session's conversation window.
type Window struct {
	Messages   []core.Message
	CreatedAt  time.Time
	LastSeenAt time.Time
}

type SweepResult struct {
	Removed   int
	Remaining int
}

type window struct {
	mu         sync.Mutex
	messages   []core.Message
	createdAt  time.Time
	lastSeenAt time.Time
	// set by the sweeper once the window left the map
	evicted bool
}

type Option func(*Store)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store owns the in-memory conversation windows of all live sessions.
type Store struct {
	cfg          core.SessionConfig
	systemPrompt string
	sink         core.Sink
	now          func() time.Time

	mu      sync.RWMutex
	windows map[string]*window
}

func NewStore(cfg core.SessionConfig, systemPrompt string, sink core.Sink, opts ...Option) *Store {
	if sink == nil {
		sink = core.NopSink{}
	}
	s := &Store{
		cfg:          cfg,
		systemPrompt: systemPrompt,
		sink:         sink,
		now:          time.Now,
		windows:      make(map[string]*window),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// acquire returns the locked window for id, creating it when absent.
// The caller must unlock it.
func (s *Store) acquire(id string) *window {
	for {
		s.mu.RLock()
		w := s.windows[id]
		s.mu.RUnlock()

		created := false
		if w == nil {
			s.mu.Lock()
			if w = s.windows[id]; w == nil {
				w = s.newWindow()
				s.windows[id] = w
				created = true
			}
			s.mu.Unlock()
		}

		w.mu.Lock()
		if w.evicted {
			// lost a race with the sweeper, start over with a fresh window
			w.mu.Unlock()
			continue
		}

		if created {
			s.sink.CreateSession(id, w.createdAt)
			s.sink.InsertMessage(id, w.messages[0], 0)
		} else {
			w.lastSeenAt = s.now()
		}
		return w
	}
}

func (s *Store) newWindow() *window {
	t := s.now()
	return &window{
		messages:   []core.Message{s.systemMessage(t)},
		createdAt:  t,
		lastSeenAt: t,
	}
}

func (s *Store) systemMessage(at time.Time) core.Message {
	return core.Message{Role: core.RoleSystem, Content: s.systemPrompt, Timestamp: at}
}

// GetOrCreate returns a copy of the session window, creating it on first use.
// It refreshes the activity timestamp of an existing window.
func (s *Store) GetOrCreate(id string) Window {
	w := s.acquire(id)
	defer w.mu.Unlock()
	return w.snapshot()
}

func (s *Store) AppendUser(id, text string) {
	s.appendMessage(id, core.RoleUser, text)
}

func (s *Store) AppendAssistant(id, text string) {
	s.appendMessage(id, core.RoleAssistant, text)
}

func (s *Store) appendMessage(id, role, text string) {
	w := s.acquire(id)
	defer w.mu.Unlock()

	t := s.now()
	msg := core.Message{Role: role, Content: text, Timestamp: t}
	position := len(w.messages)

	w.messages = append(w.messages, msg)
	w.lastSeenAt = t

	s.sink.UpdateLastSeen(id, t)
	s.sink.InsertMessage(id, msg, position)

	if trimmed := s.trim(w); len(trimmed) > 0 {
		s.sink.MarkTrimmed(id, trimmed)
	}
}

// trim restores the window invariants and returns the removal positions.
func (s *Store) trim(w *window) []int {
	var removed []int

	if len(w.messages) == 0 || w.messages[0].Role != core.RoleSystem {
		w.messages = append([]core.Message{s.systemMessage(s.now())}, w.messages...)
	}

	for len(w.messages) > s.cfg.GetMaxMessages() && len(w.messages) > 1 {
		w.messages = removeAt(w.messages, 1)
		removed = append(removed, 1)
	}

	for totalChars(w.messages) > s.cfg.GetMaxChars() && len(w.messages) > 2 {
		w.messages = removeAt(w.messages, 1)
		removed = append(removed, 1)
	}

	return removed
}

// ComposeForInference returns the message list for one model call.
// With retrieved context it is [system, context, ...history] where history keeps the
// newest messages that fit the character budget. The stored window is never modified.
func (s *Store) ComposeForInference(id, retrievedContext string) []core.Message {
	w := s.acquire(id)
	messages := cloneMessages(w.messages)
	w.mu.Unlock()

	if retrievedContext == "" {
		return messages
	}

	system := messages[0]
	injected := core.Message{Role: core.RoleSystem, Content: retrievedContext, Timestamp: s.now()}

	var history []core.Message
	for _, m := range messages[1:] {
		if m.Role != core.RoleSystem {
			history = append(history, m)
		}
	}

	budget := s.cfg.GetMaxChars() - charCount(system.Content) - charCount(injected.Content)

	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		size := charCount(history[i].Content)
		if size > budget {
			break
		}
		budget -= size
		start = i
	}

	out := make([]core.Message, 0, 2+len(history)-start)
	out = append(out, system, injected)
	return append(out, history[start:]...)
}

// Reset replaces the window with a fresh system message. createdAt is kept.
func (s *Store) Reset(id string) {
	w := s.acquire(id)
	defer w.mu.Unlock()

	t := s.now()
	w.messages = []core.Message{s.systemMessage(t)}
	w.lastSeenAt = t

	s.sink.UpdateLastSeen(id, t)
	s.sink.IncrementReset(id)
}

// SweepExpired evicts every window idle for longer than the session TTL.
func (s *Store) SweepExpired(now time.Time) SweepResult {
	ttl := s.cfg.GetSessionTTL()
	var expired []string

	s.mu.Lock()
	for id, w := range s.windows {
		w.mu.Lock()
		if now.Sub(w.lastSeenAt) > ttl {
			w.evicted = true
			delete(s.windows, id)
			expired = append(expired, id)
		}
		w.mu.Unlock()
	}
	remaining := len(s.windows)
	s.mu.Unlock()

	if len(expired) > 0 {
		s.sink.MarkExpired(expired, now)
	}

	return SweepResult{Removed: len(expired), Remaining: remaining}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows)
}

// Snapshot returns a copy of the window without touching its activity timestamp.
func (s *Store) Snapshot(id string) (Window, bool) {
	s.mu.RLock()
	w := s.windows[id]
	s.mu.RUnlock()

	if w == nil {
		return Window{}, false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.evicted {
		return Window{}, false
	}
	return w.snapshot(), true
}

func (w *window) snapshot() Window {
	return Window{
		Messages:   cloneMessages(w.messages),
		CreatedAt:  w.createdAt,
		LastSeenAt: w.lastSeenAt,
	}
}

func removeAt(msgs []core.Message, i int) []core.Message {
	copy(msgs[i:], msgs[i+1:])
	msgs[len(msgs)-1] = core.Message{}
	return msgs[:len(msgs)-1]
}

func cloneMessages(msgs []core.Message) []core.Message {
	return append([]core.Message(nil), msgs...)
}

func charCount(s string) int {
	return utf8.RuneCountInString(s)
}

func totalChars(msgs []core.Message) int {
	n := 0
	for _, m := range msgs {
		n += charCount(m.Content)
	}
	return n
}
