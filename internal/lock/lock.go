// Package lock provides a cross-instance mutual exclusion lease with a TTL.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"yieldRecon/internal/model"
)

// Lease is a held lock. It is only valid until ExpiresAt; after that another
// instance may acquire the same key.
type Lease struct {
	Key       string
	Owner     string
	ExpiresAt time.Time
}

// Expired reports whether the lease deadline has passed.
func (l *Lease) Expired() bool {
	return l == nil || !time.Now().Before(l.ExpiresAt)
}

// Locker acquires and releases leases.
//
// Acquire returns (nil, nil) when the key is held by someone else.
// Release must only remove the lock when the lease owner still holds it.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error)
	Release(ctx context.Context, lease *Lease) error
}

// Result is the outcome of RunExclusive.
type Result[T any] struct {
	Acquired bool
	Value    T
}

type leaseKey struct{}

// FromContext returns the lease held by the surrounding RunExclusive call.
func FromContext(ctx context.Context) *Lease {
	lease, _ := ctx.Value(leaseKey{}).(*Lease)
	return lease
}

// RunExclusive runs fn only while holding key. When another holder has the key
// fn is not invoked and Result.Acquired is false. Release is attempted on every
// exit path, including fn errors and panics.
func RunExclusive[T any](ctx context.Context, locker Locker, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (result Result[T], err error) {
	lease, err := locker.Acquire(ctx, key, ttl)
	if err != nil {
		return result, err
	}
	if lease == nil {
		return result, nil
	}
	result.Acquired = true

	defer func() {
		// Release with a fresh context so a cancelled caller still frees the key.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if relErr := locker.Release(releaseCtx, lease); relErr != nil && err == nil {
			err = fmt.Errorf("release lock %s: %w", key, relErr)
		}
	}()

	result.Value, err = fn(context.WithValue(ctx, leaseKey{}, lease))
	return result, err
}

// NewLease creates a lease with a fresh owner token expiring after ttl.
func NewLease(key string, ttl time.Duration) *Lease {
	return &Lease{
		Key:       key,
		Owner:     uuid.NewString(),
		ExpiresAt: time.Now().Add(ttl),
	}
}

// CheckTTL rejects non-positive lease durations.
func CheckTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: lock ttl must be positive", model.ErrConfig)
	}
	return nil
}
