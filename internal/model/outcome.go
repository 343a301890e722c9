package model

import "github.com/shopspring/decimal"

// Outcome is a receipt reduced to what accounting needs.
type Outcome struct {
	BetExecuted bool            `json:"bet_executed"`
	TxGasFee    decimal.Decimal `json:"tx_gas_fee"`
}

// ClaimOutcome is the result of a claim attempt. A skipped claim and a
// free no-op claim share the same shape.
type ClaimOutcome struct {
	Status               uint64          `json:"status"`
	TxGasFee             decimal.Decimal `json:"tx_gas_fee"`
	TransactionException bool            `json:"transaction_exception"`
	TxHash               string          `json:"tx_hash,omitempty"`
}

// NoClaim is the sentinel returned when no claim was attempted.
func NoClaim() ClaimOutcome {
	return ClaimOutcome{Status: 0, TxGasFee: decimal.Zero}
}

func (c ClaimOutcome) Succeeded() bool {
	return c.Status == 1
}
