// Package idempotency records which source events already produced a side effect.
package idempotency

import (
	"context"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"yieldRecon/internal/model"
)

// NamespaceYield prefixes fingerprints of repayment-driven distributions.
const NamespaceYield = "yield"

// Ledger is an atomic mark-if-absent set of fingerprints.
//
// CheckAndMark returns true and durably records fp when it was not seen before.
// Clear removes fp so the event becomes eligible again after its effect failed.
type Ledger interface {
	CheckAndMark(ctx context.Context, fp string) (bool, error)
	Clear(ctx context.Context, fp string) error
}

// Fingerprint derives the deterministic key for a repayment applied to a loan.
func Fingerprint(stream string, event model.RawEvent, loanID string) string {
	parts := []string{
		stream,
		strconv.FormatUint(event.BlockNumber, 10),
		strings.ToLower(event.TxHash),
		strconv.FormatUint(event.LogIndex, 10),
		loanID,
	}
	sum := crypto.Keccak256Hash([]byte(strings.Join(parts, "|")))
	return NamespaceYield + ":" + sum.Hex()
}
