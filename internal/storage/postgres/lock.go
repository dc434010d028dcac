package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"yieldRecon/internal/lock"
	"yieldRecon/internal/model"
)

// Acquire takes the lease when the key is free or its previous holder expired.
func (s *Store) Acquire(ctx context.Context, key string, ttl time.Duration) (*lock.Lease, error) {
	if err := lock.CheckTTL(ttl); err != nil {
		return nil, err
	}
	lease := lock.NewLease(key, ttl)
	var owner string
	row := s.pool.QueryRow(ctx, `
		INSERT INTO reconcile_locks (lock_key, owner, expires_at)
		VALUES ($1, $2, now() + $3 * interval '1 millisecond')
		ON CONFLICT (lock_key) DO UPDATE
		SET owner = EXCLUDED.owner, expires_at = EXCLUDED.expires_at
		WHERE reconcile_locks.expires_at < now()
		RETURNING owner
	`, key, lease.Owner, ttl.Milliseconds())
	if err := row.Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: acquire %s: %w", model.ErrStorageUnavailable, key, err)
	}
	return lease, nil
}

// Release deletes the lock row only while the lease owner still holds it.
func (s *Store) Release(ctx context.Context, lease *lock.Lease) error {
	if lease == nil {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM reconcile_locks WHERE lock_key=$1 AND owner=$2`, lease.Key, lease.Owner); err != nil {
		return fmt.Errorf("%w: release %s: %w", model.ErrStorageUnavailable, lease.Key, err)
	}
	return nil
}
