package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"predictionBot/internal/model"
	"predictionBot/internal/receipt"
)

// BetDeps are the collaborators of a BetStrategy.
type BetDeps struct {
	Converter Converter
	Contract  Contract
	History   HistoryStore
	Ledger    Ledger
	Metrics   Metrics
}

// BetStrategy bets one direction on a round.
type BetStrategy struct {
	dir    model.Direction
	deps   BetDeps
	now    func() time.Time
	logger *zap.Logger
}

func NewBetStrategy(dir model.Direction, deps BetDeps, logger *zap.Logger) (*BetStrategy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !dir.Valid() {
		return nil, fmt.Errorf("invalid direction: %q", dir)
	}
	if deps.Converter == nil || deps.Contract == nil || deps.History == nil || deps.Ledger == nil {
		return nil, fmt.Errorf("bet strategy: converter, contract, history and ledger are required")
	}
	return &BetStrategy{
		dir:    dir,
		deps:   deps,
		now:    time.Now,
		logger: logger.With(zap.String("bet", string(dir))),
	}, nil
}

// Execute places the bet for epoch and records it. It reports whether the
// bet transaction succeeded on chain.
//
// Stake and fee are debited from the ledger whatever the outcome, and
// exactly one history record is appended afterwards.
func (s *BetStrategy) Execute(ctx context.Context, settings Settings, epoch model.Epoch) (bool, error) {
	amount := s.deps.Converter.ToCrypto(settings.BetAmount)

	raw, err := s.deps.Contract.PlaceBet(ctx, s.dir, amount, epoch)
	if err != nil {
		return false, fmt.Errorf("%w: place bet round %s: %w", ErrContract, epoch, err)
	}
	outcome := receipt.Normalize(raw)
	if raw.TransactionException {
		s.logger.Warn("bet transaction exception",
			zap.String("round", epoch.String()),
			zap.String("tx", raw.TxHash),
			zap.String("error", raw.Err),
		)
	}

	feeFiat := s.deps.Converter.FeeToFiat(outcome.TxGasFee)
	balance, err := s.deps.Ledger.Debit(ctx, settings.BetAmount.Add(feeFiat))
	if err != nil {
		return false, fmt.Errorf("%w: debit round %s: %w", ErrLedger, epoch, err)
	}

	record := model.BetRecord{
		ID:          uuid.NewString(),
		Round:       epoch.String(),
		BetAmount:   amount,
		Bet:         s.dir,
		BetExecuted: outcome.BetExecuted,
		TxGasFee:    outcome.TxGasFee,
		TxHash:      raw.TxHash,
		RecordedAt:  s.now().UTC(),
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveBet(s.dir, outcome.BetExecuted, outcome.TxGasFee)
	}

	if err := s.deps.History.Append(ctx, []model.BetRecord{record}); err != nil {
		s.logger.Error("history append failed",
			zap.String("id", record.ID),
			zap.String("round", record.Round),
			zap.String("bet_amount", record.BetAmount.String()),
			zap.Bool("bet_executed", record.BetExecuted),
			zap.String("tx_gas_fee", record.TxGasFee.String()),
			zap.String("tx", record.TxHash),
			zap.Error(err),
		)
		return false, fmt.Errorf("%w: append round %s: %w", ErrHistory, epoch, err)
	}

	s.logger.Info("bet settled",
		zap.String("round", record.Round),
		zap.String("amount", amount.String()),
		zap.Bool("executed", outcome.BetExecuted),
		zap.String("fee", outcome.TxGasFee.String()),
		zap.String("balance", balance.String()),
	)
	return outcome.BetExecuted, nil
}
