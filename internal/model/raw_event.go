package model

import (
	"fmt"
	"math/big"
)

// Arg is one decoded event argument, kept in ABI order.
type Arg struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// RawEvent is a decoded chain log. It is never persisted directly.
type RawEvent struct {
	Contract    string `json:"contract"`
	EventName   string `json:"event_name"`
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	Args        []Arg  `json:"args"`
}

// Arg returns the argument with the given name.
func (e RawEvent) Arg(name string) (Arg, bool) {
	for _, arg := range e.Args {
		if arg.Name == name {
			return arg, true
		}
	}
	return Arg{}, false
}

// Key identifies the log position within the chain.
func (e RawEvent) Key() string {
	return fmt.Sprintf("%d:%s:%d", e.BlockNumber, e.TxHash, e.LogIndex)
}

// Before reports whether e sorts before other by block number then log index.
func (e RawEvent) Before(other RawEvent) bool {
	if e.BlockNumber != other.BlockNumber {
		return e.BlockNumber < other.BlockNumber
	}
	return e.LogIndex < other.LogIndex
}

// Repayment is the typed payload of a LoanRepaid event.
type Repayment struct {
	Event     RawEvent
	LoanHash  string
	Payer     string
	Principal *big.Int
	Interest  *big.Int
}

// Total returns principal plus interest.
func (r Repayment) Total() *big.Int {
	total := new(big.Int)
	if r.Principal != nil {
		total.Add(total, r.Principal)
	}
	if r.Interest != nil {
		total.Add(total, r.Interest)
	}
	return total
}
