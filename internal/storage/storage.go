package storage

import (
	"context"

	"predictionBot/internal/model"
)

// HistoryStore is a sink for bet records.
type HistoryStore interface {
	Append(ctx context.Context, records []model.BetRecord) error
}

// HistoryReader lists stored bet records, newest last.
type HistoryReader interface {
	List(ctx context.Context, limit int) ([]model.BetRecord, error)
}
