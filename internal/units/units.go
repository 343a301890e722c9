package units

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// NativeDecimals is the base-unit precision of the native token (wei).
	NativeDecimals int32 = 18
	// GasDecimals formats gas counters, which carry no fractional part.
	GasDecimals int32 = 0
	// FeePrecision is the number of decimal places kept on computed fees.
	FeePrecision int32 = 18
)

// FormatUnits converts a raw base-unit integer into a decimal amount.
func FormatUnits(value *big.Int, decimals int32) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -decimals)
}

// FormatEther is FormatUnits with NativeDecimals.
func FormatEther(value *big.Int) decimal.Decimal {
	return FormatUnits(value, NativeDecimals)
}

// ParseUnits converts a decimal amount into base units, truncating any
// precision below one base unit.
func ParseUnits(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).BigInt()
}

// ParseEther is ParseUnits with NativeDecimals.
func ParseEther(amount decimal.Decimal) *big.Int {
	return ParseUnits(amount, NativeDecimals)
}

// Fixed rounds an amount to the fee precision.
func Fixed(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(FeePrecision)
}
