// Package cursor tracks the last processed block per event stream.
package cursor

import (
	"context"
	"fmt"

	"yieldRecon/internal/model"
)

// Store returns and persists the last processed block of a stream.
type Store interface {
	Get(ctx context.Context, stream string) (uint64, error)
	Set(ctx context.Context, stream string, block uint64) error
}

// Backend is the raw persistence for cursors. Found is false when the stream has
// never been written.
type Backend interface {
	LoadCursor(ctx context.Context, stream string) (model.Cursor, bool, error)
	SaveCursor(ctx context.Context, stream string, block uint64) error
}

// SeededStore falls back to a per-stream seed block when the backend has no row.
type SeededStore struct {
	backend Backend
	seeds   map[string]uint64
}

// NewSeededStore wraps backend with deployment block seeds keyed by stream.
func NewSeededStore(backend Backend, seeds map[string]uint64) *SeededStore {
	copied := make(map[string]uint64, len(seeds))
	for k, v := range seeds {
		copied[k] = v
	}
	return &SeededStore{backend: backend, seeds: copied}
}

// Get returns the stored cursor or the seed block.
func (s *SeededStore) Get(ctx context.Context, stream string) (uint64, error) {
	if stream == "" {
		return 0, fmt.Errorf("stream name required")
	}
	cur, ok, err := s.backend.LoadCursor(ctx, stream)
	if err != nil {
		return 0, err
	}
	if !ok {
		return s.seeds[stream], nil
	}
	return cur.LastProcessedBlock, nil
}

// Set upserts the cursor.
func (s *SeededStore) Set(ctx context.Context, stream string, block uint64) error {
	if stream == "" {
		return fmt.Errorf("stream name required")
	}
	return s.backend.SaveCursor(ctx, stream, block)
}
