package core

import (
	"context"
	"time"
)

// Sink is the durable, write-behind analytics store.
// Implementations must never block the caller on I/O and never surface errors:
// callers may invoke it while holding per-session locks.
type Sink interface {
	CreateSession(sessionID string, at time.Time)
	UpdateLastSeen(sessionID string, at time.Time)
	MarkExpired(sessionIDs []string, at time.Time)
	IncrementReset(sessionID string)
	InsertMessage(sessionID string, msg Message, position int)
	MarkTrimmed(sessionID string, positions []int)
	InsertTurnLog(turn TurnLog)
	InsertRetrievalLog(log RetrievalLog)
}

type ChunkRepository interface {
	LoadAllChunks(ctx context.Context) ([]DocumentChunk, error)
	InsertChunksBatch(ctx context.Context, chunks []DocumentChunk) error
	ClearChunks(ctx context.Context) error
	// ReplaceChunks swaps the whole index in one transaction.
	// On error the previous chunks stay in place.
	ReplaceChunks(ctx context.Context, chunks []DocumentChunk) error
}

type TurnReader interface {
	ListTurns(ctx context.Context, sessionID string) ([]TurnLog, error)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) CreateSession(string, time.Time) {}
func (NopSink) UpdateLastSeen(string, time.Time) {}
func (NopSink) MarkExpired([]string, time.Time) {}
func (NopSink) IncrementReset(string) {}
func (NopSink) InsertMessage(string, Message, int) {}
func (NopSink) MarkTrimmed(string, []int) {}
func (NopSink) InsertTurnLog(TurnLog) {}
func (NopSink) InsertRetrievalLog(RetrievalLog) {}
