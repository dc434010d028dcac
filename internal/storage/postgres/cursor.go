package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yieldRecon/internal/model"
)

// LoadCursor returns the last processed block for a stream.
func (s *Store) LoadCursor(ctx context.Context, stream string) (model.Cursor, bool, error) {
	if stream == "" {
		return model.Cursor{}, false, fmt.Errorf("stream name required")
	}
	cur := model.Cursor{Stream: stream}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block, updated_at FROM reconcile_cursors WHERE stream=$1`, stream)
	if err := row.Scan(&block, &cur.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Cursor{}, false, nil
		}
		return model.Cursor{}, false, storageErr("load cursor", err)
	}
	cur.LastProcessedBlock = uint64(block)
	return cur, true, nil
}

// SaveCursor upserts last_processed_block for a stream.
func (s *Store) SaveCursor(ctx context.Context, stream string, block uint64) error {
	if stream == "" {
		return fmt.Errorf("stream name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reconcile_cursors (stream, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (stream) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, stream, int64(block))
	if err != nil {
		return storageErr("save cursor", err)
	}
	return nil
}
