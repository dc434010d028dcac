package model

import "time"

// Cursor is the last block fully processed for a stream.
type Cursor struct {
	Stream             string    `json:"stream"`
	LastProcessedBlock uint64    `json:"last_processed_block"`
	UpdatedAt          time.Time `json:"updated_at"`
}
