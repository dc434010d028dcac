package contracts

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// EventLoanRepaid is the lending pool event that carries a repayment split.
const EventLoanRepaid = "LoanRepaid"

const lendingPoolABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "bytes32", "name": "loanId", "type": "bytes32"},
      {"indexed": true, "internalType": "address", "name": "pool", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "payer", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "principal", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "interest", "type": "uint256"}
    ],
    "name": "LoanRepaid",
    "type": "event"
  }
]`

var (
	lendingPoolABI     abi.ABI
	lendingPoolABIOnce sync.Once
	lendingPoolABIErr  error
)

// LendingPoolABI returns the parsed lending pool ABI.
func LendingPoolABI() (abi.ABI, error) {
	lendingPoolABIOnce.Do(func() {
		lendingPoolABI, lendingPoolABIErr = abi.JSON(strings.NewReader(lendingPoolABIJSON))
	})
	return lendingPoolABI, lendingPoolABIErr
}
