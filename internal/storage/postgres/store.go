package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"yieldRecon/internal/model"
)

// Store provides Postgres persistence for cursors, idempotency keys, locks,
// distribution records and the loan registry.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: pg dsn is required", model.ErrConfig)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrStorageUnavailable, err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks connectivity, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return storageErr("ping", err)
	}
	return nil
}

// UpsertLoans inserts or updates loan registry rows.
func (s *Store) UpsertLoans(ctx context.Context, loans []model.Loan) error {
	if len(loans) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, loan := range loans {
		batch.Queue(`
			INSERT INTO loans (id, loan_hash, pool_id, pool_address)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id)
			DO UPDATE SET
				loan_hash = EXCLUDED.loan_hash,
				pool_id = EXCLUDED.pool_id,
				pool_address = EXCLUDED.pool_address
		`,
			loan.ID,
			loan.Hash,
			loan.PoolID,
			loan.PoolAddress,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range loans {
		if _, err := br.Exec(); err != nil {
			return storageErr("upsert loans", err)
		}
	}
	return nil
}

// ResolveLoan looks a loan up by its on-chain hash, ignoring case.
func (s *Store) ResolveLoan(ctx context.Context, hash string) (model.Loan, bool, error) {
	var loan model.Loan
	row := s.pool.QueryRow(ctx, `
		SELECT id, loan_hash, pool_id, pool_address
		FROM loans
		WHERE lower(loan_hash) = lower($1)
	`, hash)
	if err := row.Scan(&loan.ID, &loan.Hash, &loan.PoolID, &loan.PoolAddress); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Loan{}, false, nil
		}
		return model.Loan{}, false, storageErr("resolve loan", err)
	}
	return loan, true, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", model.ErrStorageUnavailable, op, err)
}
