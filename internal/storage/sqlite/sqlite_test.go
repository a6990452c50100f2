package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/tuskchat/internal/core"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func TestChunksRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewChunksRepo(newTestDB(t))

	in := []core.DocumentChunk{
		{
			SourceFile:   "project-tusk.md",
			ChunkIndex:   0,
			Heading:      strPtr("## Tusk"),
			Content:      "## Tusk\nA chat backend with ünïcode.",
			Embedding:    []float32{0.1, -0.25, 3.5e-7, 1},
			CharCount:    36,
			WordCount:    6,
			DocumentType: core.DocumentProject,
		},
		{
			SourceFile:   "about.md",
			ChunkIndex:   0,
			Content:      "No heading here.",
			Embedding:    []float32{1, 0, 0, 0},
			CharCount:    16,
			WordCount:    3,
			DocumentType: core.DocumentGeneral,
		},
	}
	require.NoError(t, repo.InsertChunksBatch(ctx, in))

	out, err := repo.LoadAllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// ordered by source_file
	assert.Equal(t, "about.md", out[0].SourceFile)
	assert.Nil(t, out[0].Heading)
	assert.Equal(t, in[1].Embedding, out[0].Embedding)

	got := out[1]
	require.NotNil(t, got.Heading)
	assert.Equal(t, *in[0].Heading, *got.Heading)
	assert.Equal(t, in[0].Content, got.Content)
	assert.Equal(t, in[0].Embedding, got.Embedding)
	assert.Equal(t, core.DocumentProject, got.DocumentType)
	assert.Equal(t, 36, got.CharCount)
	assert.NotZero(t, got.ID)

	require.NoError(t, repo.ClearChunks(ctx))
	out, err = repo.LoadAllChunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestChunksRepo_DuplicateIndexRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewChunksRepo(newTestDB(t))

	dup := core.DocumentChunk{SourceFile: "a.md", Content: "x", Embedding: []float32{1}, DocumentType: core.DocumentGeneral}
	err := repo.InsertChunksBatch(ctx, []core.DocumentChunk{dup, dup})
	require.Error(t, err)

	out, err := repo.LoadAllChunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestChunksRepo_ReplaceChunks(t *testing.T) {
	ctx := context.Background()
	repo := NewChunksRepo(newTestDB(t))

	old := core.DocumentChunk{SourceFile: "old.md", Content: "old", Embedding: []float32{1}, DocumentType: core.DocumentGeneral}
	require.NoError(t, repo.InsertChunksBatch(ctx, []core.DocumentChunk{old}))

	fresh := core.DocumentChunk{SourceFile: "new.md", Content: "new", Embedding: []float32{2}, DocumentType: core.DocumentGeneral}
	require.NoError(t, repo.ReplaceChunks(ctx, []core.DocumentChunk{fresh}))

	out, err := repo.LoadAllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "new.md", out[0].SourceFile)
}

func TestChunksRepo_FailedReplaceKeepsOldChunks(t *testing.T) {
	ctx := context.Background()
	repo := NewChunksRepo(newTestDB(t))

	old := core.DocumentChunk{SourceFile: "old.md", Content: "old", Embedding: []float32{1}, DocumentType: core.DocumentGeneral}
	require.NoError(t, repo.InsertChunksBatch(ctx, []core.DocumentChunk{old}))

	dup := core.DocumentChunk{SourceFile: "a.md", Content: "x", Embedding: []float32{1}, DocumentType: core.DocumentGeneral}
	require.Error(t, repo.ReplaceChunks(ctx, []core.DocumentChunk{dup, dup}))

	out, err := repo.LoadAllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "old.md", out[0].SourceFile)
}

func TestSessionsRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionsRepo(newTestDB(t))
	t0 := time.UnixMilli(1_700_000_000_000)

	require.NoError(t, repo.CreateSession(ctx, "session-1", t0))
	require.NoError(t, repo.IncrementReset(ctx, "session-1"))
	require.NoError(t, repo.IncrementReset(ctx, "session-1"))
	require.NoError(t, repo.UpdateLastSeen(ctx, "session-1", t0.Add(time.Minute)))

	row, err := repo.GetSession(ctx, "session-1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 2, row.ResetCount)
	assert.True(t, row.LastSeenAt.Equal(t0.Add(time.Minute)))
	assert.Nil(t, row.ExpiredAt)

	require.NoError(t, repo.MarkExpired(ctx, []string{"session-1"}, t0.Add(time.Hour)))
	row, err = repo.GetSession(ctx, "session-1")
	require.NoError(t, err)
	require.NotNil(t, row.ExpiredAt)

	// re-creation after expiry revives the row
	require.NoError(t, repo.CreateSession(ctx, "session-1", t0.Add(2*time.Hour)))
	row, err = repo.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Nil(t, row.ExpiredAt)
	assert.True(t, row.CreatedAt.Equal(t0))
	assert.Equal(t, 2, row.ResetCount)

	missing, err := repo.GetSession(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMessagesRepo_MarkTrimmed(t *testing.T) {
	ctx := context.Background()
	repo := NewMessagesRepo(newTestDB(t))
	at := time.UnixMilli(1_700_000_000_000)

	for i, role := range []string{core.RoleSystem, core.RoleUser, core.RoleAssistant} {
		require.NoError(t, repo.InsertMessage(ctx, "s", core.Message{Role: role, Content: role, Timestamp: at}, i))
	}
	require.NoError(t, repo.MarkTrimmed(ctx, "s", []int{1}))

	msgs, err := repo.ListMessages(ctx, "s")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.False(t, msgs[0].WasTrimmed)
	assert.True(t, msgs[1].WasTrimmed)
	assert.False(t, msgs[2].WasTrimmed)
	assert.True(t, msgs[2].Timestamp.Equal(at))
}

func TestRecorder_DrainsOnShutdown(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	rec := NewRecorder(ctx, db, 64)

	go func() { _ = rec.Start(ctx) }()

	now := time.UnixMilli(1_700_000_000_000)
	rec.CreateSession("session-abc", now)
	rec.InsertMessage("session-abc", core.Message{Role: core.RoleSystem, Content: "sys", Timestamp: now}, 0)
	rec.IncrementReset("session-abc")
	rec.InsertTurnLog(core.TurnLog{
		SessionID: "session-abc",
		TurnID:    "turn-1",
		User:      core.LoggedMessage{Role: core.RoleUser, Content: "hi there", At: now, WordCount: 2},
		Assistant: core.LoggedMessage{Role: core.RoleAssistant, Content: "hello", At: now, WordCount: 1},
		LatencyMs: 42,
	})
	rec.InsertRetrievalLog(core.RetrievalLog{
		SessionID: "session-abc", TurnID: "turn-1", Query: "hi there",
		Classification: core.IntentGreeting, CreatedAt: now,
	})

	require.NoError(t, rec.Shutdown(ctx))

	row, err := NewSessionsRepo(db).GetSession(ctx, "session-abc")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 1, row.ResetCount)

	msgs, err := NewMessagesRepo(db).ListMessages(ctx, "session-abc")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	analytics := NewAnalyticsRepo(db)
	turns, err := analytics.ListTurns(ctx, "session-abc")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, int64(42), turns[0].LatencyMs)
	assert.Equal(t, "hello", turns[0].Assistant.Content)

	logs, err := analytics.ListRetrievalLogs(ctx, "session-abc")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, core.IntentGreeting, logs[0].Classification)

	// events after shutdown are dropped, not panicking on a closed channel
	rec.IncrementReset("session-abc")
	require.NoError(t, rec.Shutdown(ctx))
}

func TestRecorder_FullQueueDrops(t *testing.T) {
	rec := NewRecorder(context.Background(), newTestDB(t), 1)

	// worker not started: the second event cannot be queued
	rec.IncrementReset("a")
	rec.IncrementReset("b")
	assert.Len(t, rec.queue, 1)
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 1e-9}
	blob, err := serializeVector(in)
	require.NoError(t, err)
	assert.Len(t, blob, 16)

	out, err := deserializeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = deserializeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
