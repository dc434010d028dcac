package contracts

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestDecodeLoanRepaid(t *testing.T) {
	poolABI, err := LendingPoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	loanHash := crypto.Keccak256Hash([]byte("loan-L"))
	pool := common.HexToAddress("0x1111111111111111111111111111111111111111")
	payer := common.HexToAddress("0x2222222222222222222222222222222222222222")

	data, err := poolABI.Events[EventLoanRepaid].Inputs.NonIndexed().Pack(payer, big.NewInt(10_000), big.NewInt(500))
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	log := types.Log{
		Address:     common.HexToAddress("0x9999999999999999999999999999999999999999"),
		Topics:      []common.Hash{poolABI.Events[EventLoanRepaid].ID, loanHash, PoolTopic(pool)},
		Data:        data,
		BlockNumber: 130,
		TxHash:      common.HexToHash("0xdead"),
		Index:       4,
	}

	event, err := decoder.Decode(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.EventName != EventLoanRepaid || event.BlockNumber != 130 || event.LogIndex != 4 {
		t.Fatalf("event mismatch: %+v", event)
	}
	wantOrder := []string{"loanId", "pool", "payer", "principal", "interest"}
	if len(event.Args) != len(wantOrder) {
		t.Fatalf("args mismatch: %+v", event.Args)
	}
	for i, name := range wantOrder {
		if event.Args[i].Name != name {
			t.Fatalf("arg %d = %s, want %s", i, event.Args[i].Name, name)
		}
	}

	repayment, err := decoder.Repayment(event)
	if err != nil {
		t.Fatalf("repayment: %v", err)
	}
	if repayment.LoanHash != strings.ToLower(loanHash.Hex()) {
		t.Fatalf("loan hash mismatch: %s", repayment.LoanHash)
	}
	if repayment.Principal.Int64() != 10_000 || repayment.Interest.Int64() != 500 {
		t.Fatalf("split mismatch: %s/%s", repayment.Principal, repayment.Interest)
	}
	if repayment.Total().Int64() != 10_500 {
		t.Fatalf("total mismatch: %s", repayment.Total())
	}
	if repayment.Payer != payer.Hex() {
		t.Fatalf("payer mismatch: %s", repayment.Payer)
	}
}

func TestDecodeRejectsUnknownTopic(t *testing.T) {
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	if _, err := decoder.Decode(types.Log{Topics: []common.Hash{common.HexToHash("0x01")}}); err == nil {
		t.Fatalf("expected unsupported topic error")
	}
	if _, err := decoder.Decode(types.Log{}); err == nil {
		t.Fatalf("expected missing topics error")
	}
}

func TestEventID(t *testing.T) {
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	id, err := decoder.EventID(EventLoanRepaid)
	if err != nil {
		t.Fatalf("event id: %v", err)
	}
	want := crypto.Keccak256Hash([]byte("LoanRepaid(bytes32,address,address,uint256,uint256)"))
	if id != want {
		t.Fatalf("event id = %s, want %s", id.Hex(), want.Hex())
	}
	if _, err := decoder.EventID("Nope"); err == nil {
		t.Fatalf("expected unknown event error")
	}
}
