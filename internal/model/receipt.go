package model

import "math/big"

// Receipt is the raw outcome of a submitted transaction.
//
// GasUsed is in gas units and EffectiveGasPrice in wei. Both are unreliable
// when TransactionException is set.
type Receipt struct {
	Status               uint64   `json:"status"`
	GasUsed              *big.Int `json:"gas_used,omitempty"`
	EffectiveGasPrice    *big.Int `json:"effective_gas_price,omitempty"`
	TransactionException bool     `json:"transaction_exception"`
	TxHash               string   `json:"tx_hash,omitempty"`
	Err                  string   `json:"error,omitempty"`
}

// ExceptionReceipt builds the receipt returned when submission itself failed.
func ExceptionReceipt(txHash string, err error) Receipt {
	r := Receipt{TransactionException: true, TxHash: txHash}
	if err != nil {
		r.Err = err.Error()
	}
	return r
}
