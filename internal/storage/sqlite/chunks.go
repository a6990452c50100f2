package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/tuskchat/internal/core"
)

type ChunksRepo struct {
	db *sql.DB
}

func NewChunksRepo(db *sql.DB) *ChunksRepo {
	return &ChunksRepo{db: db}
}

func (r *ChunksRepo) LoadAllChunks(ctx context.Context) ([]core.DocumentChunk, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source_file, chunk_index, heading, content, embedding, char_count, word_count, document_type
		FROM knowledge_chunks
		ORDER BY source_file, chunk_index`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []core.DocumentChunk
	for rows.Next() {
		var (
			c       core.DocumentChunk
			heading sql.NullString
			blob    []byte
			docType string
		)
		if err := rows.Scan(&c.ID, &c.SourceFile, &c.ChunkIndex, &heading, &c.Content, &blob,
			&c.CharCount, &c.WordCount, &docType); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}

		if heading.Valid {
			h := heading.String
			c.Heading = &h
		}
		c.DocumentType = core.DocumentType(docType)

		c.Embedding, err = deserializeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %s#%d: %w", c.SourceFile, c.ChunkIndex, err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// InsertChunksBatch stores all chunks in one transaction.
func (r *ChunksRepo) InsertChunksBatch(ctx context.Context, chunks []core.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertChunks(ctx, tx, chunks); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceChunks deletes every stored chunk and inserts the new set in the
// same transaction, so a failed insert leaves the old index untouched.
func (r *ChunksRepo) ReplaceChunks(ctx context.Context, chunks []core.DocumentChunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM knowledge_chunks`); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}
	if err := insertChunks(ctx, tx, chunks); err != nil {
		return err
	}
	return tx.Commit()
}

func insertChunks(ctx context.Context, tx *sql.Tx, chunks []core.DocumentChunk) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO knowledge_chunks
			(source_file, chunk_index, heading, content, embedding, char_count, word_count, document_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	now := toMillis(time.Now())
	for _, c := range chunks {
		blob, err := serializeVector(c.Embedding)
		if err != nil {
			return err
		}

		var heading sql.NullString
		if c.Heading != nil {
			heading = sql.NullString{String: *c.Heading, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			c.SourceFile, c.ChunkIndex, heading, c.Content, blob,
			c.CharCount, c.WordCount, string(c.DocumentType), now,
		); err != nil {
			return fmt.Errorf("failed to insert chunk %s#%d: %w", c.SourceFile, c.ChunkIndex, err)
		}
	}
	return nil
}

func (r *ChunksRepo) ClearChunks(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM knowledge_chunks`); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}
	return nil
}
