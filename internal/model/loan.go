package model

// Loan is the off-chain record a repayment event resolves to.
type Loan struct {
	ID          string `json:"id"`
	Hash        string `json:"hash"`
	PoolID      string `json:"pool_id"`
	PoolAddress string `json:"pool_address"`
}
