// Package claimer sweeps a range of finished rounds and claims every
// claimable reward.
package claimer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"predictionBot/internal/model"
	"predictionBot/internal/strategy"
)

const defaultBatchSize = 50

// Claimer is satisfied by *strategy.ClaimStrategy.
type Claimer interface {
	Execute(ctx context.Context, settings strategy.Settings, epoch model.Epoch) (model.ClaimOutcome, error)
}

// SettingsFunc returns the settings for the next round.
type SettingsFunc func() strategy.Settings

type Config struct {
	BatchSize uint64
}

// Result summarizes a sweep.
type Result struct {
	Checked   int
	Claimed   int
	Failed    int
	Skipped   int
	TotalFees decimal.Decimal
	Last      model.Epoch
}

// Sweeper runs a Claimer over epoch ranges, checkpointing after every batch.
type Sweeper struct {
	cfg        Config
	claimer    Claimer
	checkpoint Checkpoint
	logger     *zap.Logger
}

// NewSweeper builds a Sweeper. checkpoint may be nil.
func NewSweeper(cfg Config, claimer Claimer, checkpoint Checkpoint, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Sweeper{cfg: cfg, claimer: claimer, checkpoint: checkpoint, logger: logger}
}

// Run claims every epoch in [from, to]. When the same range was swept
// before, epochs at or below its checkpoint are skipped. On error the
// checkpoint stays at the last finished batch.
func (s *Sweeper) Run(ctx context.Context, settings SettingsFunc, from, to model.Epoch) (Result, error) {
	res := Result{TotalFees: decimal.Zero}
	if s.claimer == nil {
		return res, fmt.Errorf("claimer is nil")
	}
	if settings == nil {
		return res, fmt.Errorf("settings func is nil")
	}

	requested := EpochRange{From: from, To: to}
	if s.checkpoint != nil {
		last, ok, err := s.checkpoint.Load(ctx, requested)
		if err != nil {
			return res, fmt.Errorf("load checkpoint: %w", err)
		}
		if ok && last.Cmp(from) >= 0 {
			from = last.Add(1)
			s.logger.Info("resume from checkpoint",
				zap.String("range", requested.Key()),
				zap.String("last_processed", last.String()),
				zap.String("from", from.String()),
			)
		}
	}

	if from.Cmp(to) > 0 {
		s.logger.Info("nothing to claim", zap.String("from", from.String()), zap.String("to", to.String()))
		return res, nil
	}

	ranges, err := SplitRange(from, to, s.cfg.BatchSize)
	if err != nil {
		return res, err
	}

	for _, r := range ranges {
		for _, epoch := range r.Epochs() {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			default:
			}

			out, err := s.claimer.Execute(ctx, settings(), epoch)
			if err != nil {
				return res, fmt.Errorf("claim round %s: %w", epoch, err)
			}
			res.add(out)
		}

		if s.checkpoint != nil {
			if err := s.checkpoint.Save(ctx, requested, r.To); err != nil {
				return res, fmt.Errorf("save checkpoint: %w", err)
			}
		}
		res.Last = r.To
		s.logger.Info("claim batch complete",
			zap.String("from", r.From.String()),
			zap.String("to", r.To.String()),
			zap.Int("claimed", res.Claimed),
		)
	}
	return res, nil
}

func (r *Result) add(out model.ClaimOutcome) {
	r.Checked++
	r.TotalFees = r.TotalFees.Add(out.TxGasFee)
	switch {
	case out.Succeeded():
		r.Claimed++
	case out.TransactionException || !out.TxGasFee.IsZero():
		r.Failed++
	default:
		r.Skipped++
	}
}
