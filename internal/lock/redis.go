package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"yieldRecon/internal/model"
)

const redisKeyPrefix = "lock:"

// Compare-and-delete so only the owner token can release.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX.
type RedisLocker struct {
	rdb redis.UniversalClient
}

// NewRedisLocker creates a Redis-backed locker.
func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

// Acquire sets the key only if absent, with the ttl as expiry.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	if err := CheckTTL(ttl); err != nil {
		return nil, err
	}
	lease := NewLease(key, ttl)
	ok, err := r.rdb.SetNX(ctx, redisKeyPrefix+key, lease.Owner, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: redis lock %s: %w", model.ErrStorageUnavailable, key, err)
	}
	if !ok {
		return nil, nil
	}
	return lease, nil
}

// Release deletes the key when it still carries the lease owner token.
func (r *RedisLocker) Release(ctx context.Context, lease *Lease) error {
	if lease == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, r.rdb, []string{redisKeyPrefix + lease.Key}, lease.Owner).Err(); err != nil {
		return fmt.Errorf("%w: redis unlock %s: %w", model.ErrStorageUnavailable, lease.Key, err)
	}
	return nil
}
