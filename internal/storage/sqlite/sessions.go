package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SessionRow struct {
	SessionID   string
	CreatedAt   time.Time
	FirstSeenAt time.Time
	LastSeenAt  time.Time
	ExpiredAt   *time.Time
	ResetCount  int
}

type SessionsRepo struct {
	db *sql.DB
}

func NewSessionsRepo(db *sql.DB) *SessionsRepo {
	return &SessionsRepo{db: db}
}

// CreateSession inserts a session, or revives it when the id was seen before an expiry.
func (r *SessionsRepo) CreateSession(ctx context.Context, sessionID string, at time.Time) error {
	ms := toMillis(at)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, created_at, first_seen_at, last_seen_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET last_seen_at = excluded.last_seen_at, expired_at = NULL`,
		sessionID, ms, ms, ms,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionsRepo) UpdateLastSeen(ctx context.Context, sessionID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET last_seen_at = ? WHERE session_id = ?`, toMillis(at), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}
	return nil
}

func (r *SessionsRepo) MarkExpired(ctx context.Context, sessionIDs []string, at time.Time) error {
	if len(sessionIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE sessions SET expired_at = ? WHERE session_id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare expiry: %w", err)
	}
	defer stmt.Close()

	ms := toMillis(at)
	for _, id := range sessionIDs {
		if _, err := stmt.ExecContext(ctx, ms, id); err != nil {
			return fmt.Errorf("failed to mark %s expired: %w", id, err)
		}
	}

	return tx.Commit()
}

func (r *SessionsRepo) IncrementReset(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET reset_count = reset_count + 1 WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to increment reset count: %w", err)
	}
	return nil
}

func (r *SessionsRepo) GetSession(ctx context.Context, sessionID string) (*SessionRow, error) {
	var row SessionRow
	var created, firstSeen, lastSeen int64
	var expired sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT session_id, created_at, first_seen_at, last_seen_at, expired_at, reset_count
		FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&row.SessionID, &created, &firstSeen, &lastSeen, &expired, &row.ResetCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	row.CreatedAt = fromMillis(created)
	row.FirstSeenAt = fromMillis(firstSeen)
	row.LastSeenAt = fromMillis(lastSeen)
	if expired.Valid {
		t := fromMillis(expired.Int64)
		row.ExpiredAt = &t
	}
	return &row, nil
}
