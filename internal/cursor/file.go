package cursor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"yieldRecon/internal/model"
)

type fileEntry struct {
	LastProcessedBlock uint64 `json:"last_processed_block"`
	UpdatedAt          string `json:"updated_at"`
}

// FileBackend persists cursors of all streams in one JSON file. It is meant for
// single-host runs; writes go through a tmp file and rename.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) LoadCursor(_ context.Context, stream string) (model.Cursor, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return model.Cursor{}, false, err
	}
	entry, ok := entries[stream]
	if !ok {
		return model.Cursor{}, false, nil
	}
	updatedAt, _ := time.Parse(time.RFC3339Nano, entry.UpdatedAt)
	return model.Cursor{
		Stream:             stream,
		LastProcessedBlock: entry.LastProcessedBlock,
		UpdatedAt:          updatedAt,
	}, true, nil
}

func (f *FileBackend) SaveCursor(_ context.Context, stream string, block uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}
	entries[stream] = fileEntry{
		LastProcessedBlock: block,
		UpdatedAt:          time.Now().UTC().Format(time.RFC3339Nano),
	}

	dir := filepath.Dir(f.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create cursor dir: %w", model.ErrStorageUnavailable, err)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cursors: %w", err)
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: write cursor tmp: %w", model.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("%w: rename cursor file: %w", model.ErrStorageUnavailable, err)
	}
	return nil
}

func (f *FileBackend) read() (map[string]fileEntry, error) {
	stat, err := os.Stat(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]fileEntry), nil
		}
		return nil, fmt.Errorf("%w: stat cursor file: %w", model.ErrStorageUnavailable, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%w: cursor path is a directory", model.ErrConfig)
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read cursor file: %w", model.ErrStorageUnavailable, err)
	}
	entries := make(map[string]fileEntry)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: parse cursor file: %w", model.ErrStorageUnavailable, err)
	}
	return entries, nil
}
