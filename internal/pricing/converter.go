package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"predictionBot/internal/units"
)

// Converter converts between fiat amounts and native token amounts at a
// fixed price expressed as fiat per native token.
type Converter struct {
	price decimal.Decimal
}

func NewConverter(price decimal.Decimal) (*Converter, error) {
	if !price.IsPositive() {
		return nil, fmt.Errorf("native price must be positive, got %s", price)
	}
	return &Converter{price: price}, nil
}

// ToCrypto converts a fiat amount into native token units.
func (c *Converter) ToCrypto(fiat decimal.Decimal) decimal.Decimal {
	return fiat.DivRound(c.price, units.FeePrecision)
}

// FeeToFiat converts a native token fee into fiat.
func (c *Converter) FeeToFiat(crypto decimal.Decimal) decimal.Decimal {
	return crypto.Mul(c.price)
}
