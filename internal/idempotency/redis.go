package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"yieldRecon/internal/model"
)

const redisKeyPrefix = "idempotency:"

// RedisLedger stores fingerprints as Redis keys written with SET NX.
// A zero ttl keeps marks forever.
type RedisLedger struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedisLedger creates a Redis-backed ledger.
func NewRedisLedger(rdb redis.UniversalClient, ttl time.Duration) *RedisLedger {
	return &RedisLedger{rdb: rdb, ttl: ttl}
}

func (r *RedisLedger) key(fp string) string {
	return redisKeyPrefix + fp
}

// CheckAndMark sets the fingerprint key only if it does not exist.
func (r *RedisLedger) CheckAndMark(ctx context.Context, fp string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, r.key(fp), time.Now().UTC().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: redis setnx: %w", model.ErrStorageUnavailable, err)
	}
	return ok, nil
}

// Clear deletes the fingerprint key.
func (r *RedisLedger) Clear(ctx context.Context, fp string) error {
	if err := r.rdb.Del(ctx, r.key(fp)).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %w", model.ErrStorageUnavailable, err)
	}
	return nil
}
