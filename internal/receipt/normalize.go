// Package receipt reduces raw transaction receipts to accounting outcomes.
package receipt

import (
	"github.com/shopspring/decimal"

	"predictionBot/internal/model"
	"predictionBot/internal/units"
)

// Normalize converts a raw receipt into an Outcome.
//
// A receipt flagged with TransactionException never reached the chain in a
// reliable state, so its fee is zero. A reverted receipt (status 0) still
// pays gas and keeps its fee.
func Normalize(r model.Receipt) model.Outcome {
	out := model.Outcome{
		BetExecuted: r.Status == 1,
		TxGasFee:    decimal.Zero,
	}
	if r.TransactionException {
		return out
	}
	out.TxGasFee = GasFee(r)
	return out
}

// GasFee returns gasUsed * effectiveGasPrice in native token units. Both
// operands are formatted before multiplying.
func GasFee(r model.Receipt) decimal.Decimal {
	// gasUsed is a plain unit count; the price is wei per unit.
	gasUsed := units.FormatUnits(r.GasUsed, units.GasDecimals)
	gasPrice := units.FormatUnits(r.EffectiveGasPrice, units.NativeDecimals)
	return units.Fixed(gasUsed.Mul(gasPrice))
}

// Claim builds a ClaimOutcome from a claim transaction receipt.
func Claim(r model.Receipt) model.ClaimOutcome {
	out := Normalize(r)
	return model.ClaimOutcome{
		Status:               r.Status,
		TxGasFee:             out.TxGasFee,
		TransactionException: r.TransactionException,
		TxHash:               r.TxHash,
	}
}
