package model

import (
	"math/big"
	"time"
)

// DistributionStatus is the lifecycle state of a DistributionRecord.
type DistributionStatus string

const (
	StatusPending   DistributionStatus = "PENDING"
	StatusCompleted DistributionStatus = "COMPLETED"
	StatusFailed    DistributionStatus = "FAILED"
)

// DistributionRecord tracks the yield transfer triggered by one repayment event.
// There is at most one record per fingerprint.
type DistributionRecord struct {
	Fingerprint       string             `json:"fingerprint"`
	Stream            string             `json:"stream"`
	PoolID            string             `json:"pool_id"`
	LoanID            string             `json:"loan_id"`
	PrincipalAmount   *big.Int           `json:"principal_amount"`
	InterestAmount    *big.Int           `json:"interest_amount"`
	TotalAmount       *big.Int           `json:"total_amount"`
	SourceBlockNumber uint64             `json:"source_block_number"`
	SourceTxHash      string             `json:"source_tx_hash"`
	SourceLogIndex    uint64             `json:"source_log_index"`
	ActionTxRef       string             `json:"action_tx_ref,omitempty"`
	Status            DistributionStatus `json:"status"`
	Attempts          int                `json:"attempts"`
	LastError         string             `json:"last_error,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	CompletedAt       *time.Time         `json:"completed_at,omitempty"`
}
