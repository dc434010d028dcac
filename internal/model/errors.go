package model

import "errors"

// Error kinds shared across the reconciliation pipeline. Callers wrap them with
// context and test with errors.Is.
var (
	ErrConfig             = errors.New("config error")
	// ErrLockUnavailable marks a pass skipped because another instance holds the
	// lock. It is a skip signal, not a failure; lock backend outages are
	// ErrStorageUnavailable.
	ErrLockUnavailable    = errors.New("lock unavailable")
	ErrRPCTransient       = errors.New("rpc transient error")
	ErrRPCRejected        = errors.New("rpc rejected request")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrActionFailure      = errors.New("action failure")
	ErrLeaseExpired       = errors.New("lease expired")

	// ErrAlreadyCompleted is returned when a record for the fingerprint was already finalized.
	ErrAlreadyCompleted = errors.New("distribution already completed")
)
