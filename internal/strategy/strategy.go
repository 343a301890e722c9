// Package strategy places bets and claims rewards for a single round and
// settles the accounting around them.
package strategy

import (
	"context"

	"github.com/shopspring/decimal"

	"predictionBot/internal/model"
)

// Converter converts between fiat and native token amounts.
type Converter interface {
	ToCrypto(fiat decimal.Decimal) decimal.Decimal
	FeeToFiat(crypto decimal.Decimal) decimal.Decimal
}

// Contract is the prediction contract client.
type Contract interface {
	PlaceBet(ctx context.Context, dir model.Direction, amount decimal.Decimal, epoch model.Epoch) (model.Receipt, error)
	IsClaimable(ctx context.Context, epoch model.Epoch) (bool, error)
	Claim(ctx context.Context, epochs []model.Epoch) (model.ClaimOutcome, error)
}

type HistoryStore interface {
	Append(ctx context.Context, records []model.BetRecord) error
}

// Ledger is the balance that stake and fees are debited from.
type Ledger interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
	Debit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
}

// Metrics observes strategy results. It may be nil.
type Metrics interface {
	ObserveBet(dir model.Direction, executed bool, fee decimal.Decimal)
	ObserveClaim(outcome model.ClaimOutcome, attempted bool)
}

// Settings are read by the caller before every invocation so that changes
// take effect on the next round.
type Settings struct {
	BetAmount    decimal.Decimal
	ClaimRewards bool
}
