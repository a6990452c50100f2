package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/tuskchat/internal/core"
)

type AnalyticsRepo struct {
	db *sql.DB
}

func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo {
	return &AnalyticsRepo{db: db}
}

func (r *AnalyticsRepo) InsertTurnLog(ctx context.Context, turn core.TurnLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO turn_logs (
			session_id, turn_id,
			user_content, user_at, user_word_count,
			assistant_content, assistant_at, assistant_word_count,
			latency_ms, context_word_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.SessionID, turn.TurnID,
		turn.User.Content, toMillis(turn.User.At), turn.User.WordCount,
		turn.Assistant.Content, toMillis(turn.Assistant.At), turn.Assistant.WordCount,
		turn.LatencyMs, turn.ContextWordCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn log: %w", err)
	}
	return nil
}

// ListTurns returns the turn logs of a session in chronological order.
func (r *AnalyticsRepo) ListTurns(ctx context.Context, sessionID string) ([]core.TurnLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT turn_id, user_content, user_at, user_word_count,
		       assistant_content, assistant_at, assistant_word_count,
		       latency_ms, context_word_count
		FROM turn_logs
		WHERE session_id = ?
		ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	turns := []core.TurnLog{}
	for rows.Next() {
		var t core.TurnLog
		var userAt, assistAt int64
		if err := rows.Scan(
			&t.TurnID, &t.User.Content, &userAt, &t.User.WordCount,
			&t.Assistant.Content, &assistAt, &t.Assistant.WordCount,
			&t.LatencyMs, &t.ContextWordCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.SessionID = sessionID
		t.User.Role = core.RoleUser
		t.User.At = fromMillis(userAt)
		t.Assistant.Role = core.RoleAssistant
		t.Assistant.At = fromMillis(assistAt)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (r *AnalyticsRepo) InsertRetrievalLog(ctx context.Context, l core.RetrievalLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO retrieval_logs (session_id, turn_id, query, chunks_retrieved, retrieval_latency_ms, classification, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.SessionID, nullString(l.TurnID), l.Query, l.ChunksRetrieved, l.LatencyMs,
		nullString(string(l.Classification)), toMillis(l.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert retrieval log: %w", err)
	}
	return nil
}

func (r *AnalyticsRepo) ListRetrievalLogs(ctx context.Context, sessionID string) ([]core.RetrievalLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT turn_id, query, chunks_retrieved, retrieval_latency_ms, classification, created_at
		FROM retrieval_logs
		WHERE session_id = ?
		ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query retrieval logs: %w", err)
	}
	defer rows.Close()

	var out []core.RetrievalLog
	for rows.Next() {
		var (
			l                      core.RetrievalLog
			turnID, classification sql.NullString
			created                int64
		)
		if err := rows.Scan(&turnID, &l.Query, &l.ChunksRetrieved, &l.LatencyMs, &classification, &created); err != nil {
			return nil, fmt.Errorf("failed to scan retrieval log: %w", err)
		}
		l.SessionID = sessionID
		l.TurnID = turnID.String
		l.Classification = core.Intent(classification.String)
		l.CreatedAt = fromMillis(created)
		out = append(out, l)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
