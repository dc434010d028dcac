package model

// Phase is the state of a reconciliation pass.
type Phase string

const (
	PhaseIdle            Phase = "IDLE"
	PhaseLockAcquired    Phase = "LOCK_ACQUIRED"
	PhaseLockNotAcquired Phase = "LOCK_NOT_ACQUIRED"
	PhaseScanning        Phase = "SCANNING"
	PhaseMatching        Phase = "MATCHING"
	PhaseApplying        Phase = "APPLYING"
	PhaseCursorAdvanced  Phase = "CURSOR_ADVANCED"
	PhaseAborted         Phase = "ABORTED"
)

// Summary is the structured result of one reconciliation pass.
type Summary struct {
	Stream     string `json:"stream"`
	FromBlock  uint64 `json:"from_block"`
	ToBlock    uint64 `json:"to_block"`
	Processed  int    `json:"processed"`
	Applied    int    `json:"applied"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
	Unmatched  int    `json:"unmatched"`
	DurationMs int64  `json:"duration_ms"`
	Phase      Phase  `json:"phase"`
	Idle       bool   `json:"idle,omitempty"`
}
