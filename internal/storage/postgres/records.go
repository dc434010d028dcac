package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"

	"yieldRecon/internal/model"
)

// Begin writes rec as PENDING. A FAILED row for the same fingerprint is moved
// back to PENDING with its attempt counter incremented. It returns the attempt
// number, or model.ErrAlreadyCompleted when the row is already finalized.
func (s *Store) Begin(ctx context.Context, rec model.DistributionRecord) (int, error) {
	var attempts int
	row := s.pool.QueryRow(ctx, `
		INSERT INTO distribution_records (
			fingerprint, stream, pool_id, loan_id,
			principal_amount, interest_amount, total_amount,
			source_block_number, source_tx_hash, source_log_index,
			status, attempts, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5::numeric,$6::numeric,$7::numeric,$8,$9,$10,'PENDING',1,now(),now())
		ON CONFLICT (fingerprint)
		DO UPDATE SET
			status = 'PENDING',
			attempts = distribution_records.attempts + 1,
			last_error = NULL,
			updated_at = now()
		WHERE distribution_records.status <> 'COMPLETED'
		RETURNING attempts
	`,
		rec.Fingerprint,
		rec.Stream,
		rec.PoolID,
		rec.LoanID,
		bigString(rec.PrincipalAmount),
		bigString(rec.InterestAmount),
		bigString(rec.TotalAmount),
		int64(rec.SourceBlockNumber),
		rec.SourceTxHash,
		int64(rec.SourceLogIndex),
	)
	if err := row.Scan(&attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrAlreadyCompleted
		}
		return 0, storageErr("begin distribution", err)
	}
	return attempts, nil
}

// Complete marks the record COMPLETED with the ledger reference.
func (s *Store) Complete(ctx context.Context, fp, actionRef string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE distribution_records
		SET status = 'COMPLETED', action_tx_ref = $2, last_error = NULL, completed_at = now(), updated_at = now()
		WHERE fingerprint = $1
	`, fp, actionRef)
	if err != nil {
		return storageErr("complete distribution", err)
	}
	return nil
}

// Fail marks the record FAILED with the failure reason.
func (s *Store) Fail(ctx context.Context, fp, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE distribution_records
		SET status = 'FAILED', last_error = $2, updated_at = now()
		WHERE fingerprint = $1 AND status <> 'COMPLETED'
	`, fp, reason)
	if err != nil {
		return storageErr("fail distribution", err)
	}
	return nil
}

// Get returns the record for a fingerprint.
func (s *Store) Get(ctx context.Context, fp string) (model.DistributionRecord, bool, error) {
	rows, err := s.pool.Query(ctx, selectRecords+` WHERE fingerprint = $1`, fp)
	if err != nil {
		return model.DistributionRecord{}, false, storageErr("get distribution", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return model.DistributionRecord{}, false, err
	}
	if len(recs) == 0 {
		return model.DistributionRecord{}, false, nil
	}
	return recs[0], true, nil
}

// ListFailed returns FAILED records of a stream ordered by source position.
func (s *Store) ListFailed(ctx context.Context, stream string, limit int) ([]model.DistributionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, selectRecords+`
		WHERE stream = $1 AND status = 'FAILED'
		ORDER BY source_block_number, source_log_index
		LIMIT $2
	`, stream, limit)
	if err != nil {
		return nil, storageErr("list failed distributions", err)
	}
	return scanRecords(rows)
}

const selectRecords = `
	SELECT fingerprint, stream, pool_id, loan_id,
		principal_amount::text, interest_amount::text, total_amount::text,
		source_block_number, source_tx_hash, source_log_index,
		COALESCE(action_tx_ref, ''), status, attempts, COALESCE(last_error, ''),
		created_at, completed_at
	FROM distribution_records`

func scanRecords(rows pgx.Rows) ([]model.DistributionRecord, error) {
	defer rows.Close()

	var out []model.DistributionRecord
	for rows.Next() {
		var (
			rec                        model.DistributionRecord
			principal, interest, total string
			block, logIndex            int64
			status                     string
			completedAt                *time.Time
		)
		if err := rows.Scan(
			&rec.Fingerprint, &rec.Stream, &rec.PoolID, &rec.LoanID,
			&principal, &interest, &total,
			&block, &rec.SourceTxHash, &logIndex,
			&rec.ActionTxRef, &status, &rec.Attempts, &rec.LastError,
			&rec.CreatedAt, &completedAt,
		); err != nil {
			return nil, storageErr("scan distribution", err)
		}
		var err error
		if rec.PrincipalAmount, err = parseBig(principal); err != nil {
			return nil, err
		}
		if rec.InterestAmount, err = parseBig(interest); err != nil {
			return nil, err
		}
		if rec.TotalAmount, err = parseBig(total); err != nil {
			return nil, err
		}
		rec.SourceBlockNumber = uint64(block)
		rec.SourceLogIndex = uint64(logIndex)
		rec.Status = model.DistributionStatus(status)
		rec.CompletedAt = completedAt
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate distributions", err)
	}
	return out, nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseBig(raw string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("parse numeric %q", raw)
	}
	return v, nil
}
