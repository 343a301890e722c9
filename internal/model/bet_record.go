package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetRecord is one history row, written once per bet attempt.
type BetRecord struct {
	ID          string          `json:"id"`
	Round       string          `json:"round"`
	BetAmount   decimal.Decimal `json:"bet_amount"`
	Bet         Direction       `json:"bet"`
	BetExecuted bool            `json:"bet_executed"`
	TxGasFee    decimal.Decimal `json:"tx_gas_fee"`
	TxHash      string          `json:"tx_hash,omitempty"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

// HistorySummary aggregates a slice of bet records.
type HistorySummary struct {
	Total       int
	Executed    int
	Up          int
	Down        int
	TotalAmount decimal.Decimal
	TotalFees   decimal.Decimal
}

// Summarize totals records. Amounts are counted only for executed bets.
func Summarize(records []BetRecord) HistorySummary {
	sum := HistorySummary{TotalAmount: decimal.Zero, TotalFees: decimal.Zero}
	for _, r := range records {
		sum.Total++
		switch r.Bet {
		case DirectionUp:
			sum.Up++
		case DirectionDown:
			sum.Down++
		}
		sum.TotalFees = sum.TotalFees.Add(r.TxGasFee)
		if r.BetExecuted {
			sum.Executed++
			sum.TotalAmount = sum.TotalAmount.Add(r.BetAmount)
		}
	}
	return sum
}
