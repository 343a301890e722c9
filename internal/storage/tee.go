package storage

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"predictionBot/internal/model"
)

// Tee appends every batch to the primary store and then to each mirror.
// Only the primary decides the outcome: once it holds the records, a
// failing mirror is logged and the append still succeeds.
type Tee struct {
	primary HistoryStore
	mirrors []HistoryStore
	logger  *zap.Logger
}

func NewTee(primary HistoryStore, logger *zap.Logger, mirrors ...HistoryStore) *Tee {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tee{primary: primary, mirrors: mirrors, logger: logger}
}

func (t *Tee) Append(ctx context.Context, records []model.BetRecord) error {
	if t.primary == nil {
		return errors.New("primary history store is nil")
	}
	if err := t.primary.Append(ctx, records); err != nil {
		return err
	}
	for i, m := range t.mirrors {
		if err := m.Append(ctx, records); err != nil {
			t.logger.Error("history mirror append failed",
				zap.Int("mirror", i),
				zap.Strings("rounds", rounds(records)),
				zap.Error(err),
			)
		}
	}
	return nil
}

// List reads from the primary store when it supports reads.
func (t *Tee) List(ctx context.Context, limit int) ([]model.BetRecord, error) {
	reader, ok := t.primary.(HistoryReader)
	if !ok {
		return nil, errors.New("primary history store is not readable")
	}
	return reader.List(ctx, limit)
}

func rounds(records []model.BetRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Round)
	}
	return out
}
