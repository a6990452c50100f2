package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/tuskchat/internal/core"
)

type StoredMessage struct {
	core.Message
	Position   int
	WasTrimmed bool
}

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

func (h *MessagesRepo) InsertMessage(ctx context.Context, sessionID string, msg core.Message, position int) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, position, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, msg.Role, msg.Content, position, toMillis(msg.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// MarkTrimmed flags messages of a session at the given window positions as trimmed.
func (h *MessagesRepo) MarkTrimmed(ctx context.Context, sessionID string, positions []int) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range positions {
		if _, err := tx.ExecContext(ctx,
			`UPDATE messages SET was_trimmed = 1 WHERE session_id = ? AND position = ?`, sessionID, p,
		); err != nil {
			return fmt.Errorf("failed to mark message trimmed: %w", err)
		}
	}

	return tx.Commit()
}

func (h *MessagesRepo) ListMessages(ctx context.Context, sessionID string) ([]StoredMessage, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT role, content, position, created_at, was_trimmed
		FROM messages
		WHERE session_id = ?
		ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var out []StoredMessage
	for rows.Next() {
		var (
			m       StoredMessage
			created int64
		)
		if err := rows.Scan(&m.Role, &m.Content, &m.Position, &created, &m.WasTrimmed); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Timestamp = fromMillis(created)
		out = append(out, m)
	}
	return out, rows.Err()
}
