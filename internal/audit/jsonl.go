// Package audit appends finalized distribution records to a JSON lines file.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"yieldRecon/internal/model"
)

// Sink receives finalized records.
type Sink interface {
	Record(records ...model.DistributionRecord) error
}

// Discard drops every record.
type Discard struct{}

func (Discard) Record(...model.DistributionRecord) error { return nil }

// JsonlSink writes distribution records to a JSONL file.
type JsonlSink struct {
	path string
	mu   sync.Mutex
}

func NewJsonlSink(path string) *JsonlSink {
	return &JsonlSink{path: path}
}

// Record appends records as JSON lines.
func (s *JsonlSink) Record(records ...model.DistributionRecord) error {
	if len(records) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create audit dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal distribution record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write distribution record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush audit: %w", err)
	}

	return nil
}
