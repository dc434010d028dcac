package postgres

import "context"

// CheckAndMark inserts the fingerprint and reports whether the row is new.
func (s *Store) CheckAndMark(ctx context.Context, fp string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (fingerprint, created_at)
		VALUES ($1, now())
		ON CONFLICT (fingerprint) DO NOTHING
	`, fp)
	if err != nil {
		return false, storageErr("mark fingerprint", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Clear removes the fingerprint so the event can be applied again.
func (s *Store) Clear(ctx context.Context, fp string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE fingerprint=$1`, fp); err != nil {
		return storageErr("clear fingerprint", err)
	}
	return nil
}
