package strategy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"predictionBot/internal/model"
)

// ClaimStrategy collects the reward of a finished round.
type ClaimStrategy struct {
	contract Contract
	metrics  Metrics
	logger   *zap.Logger
}

func NewClaimStrategy(contract Contract, metrics Metrics, logger *zap.Logger) (*ClaimStrategy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if contract == nil {
		return nil, fmt.Errorf("claim strategy: contract is required")
	}
	return &ClaimStrategy{contract: contract, metrics: metrics, logger: logger}, nil
}

// Execute claims epoch when claiming is enabled and the round is claimable.
// Otherwise it returns model.NoClaim().
func (s *ClaimStrategy) Execute(ctx context.Context, settings Settings, epoch model.Epoch) (model.ClaimOutcome, error) {
	if !settings.ClaimRewards {
		return s.skip(), nil
	}

	claimable, err := s.contract.IsClaimable(ctx, epoch)
	if err != nil {
		return model.ClaimOutcome{}, fmt.Errorf("%w: claimable round %s: %w", ErrContract, epoch, err)
	}
	if !claimable {
		s.logger.Debug("round not claimable", zap.String("round", epoch.String()))
		return s.skip(), nil
	}

	outcome, err := s.contract.Claim(ctx, []model.Epoch{epoch})
	if err != nil {
		return model.ClaimOutcome{}, fmt.Errorf("%w: claim round %s: %w", ErrContract, epoch, err)
	}
	if s.metrics != nil {
		s.metrics.ObserveClaim(outcome, true)
	}

	s.logger.Info("claim settled",
		zap.String("round", epoch.String()),
		zap.Uint64("status", outcome.Status),
		zap.Bool("exception", outcome.TransactionException),
		zap.String("fee", outcome.TxGasFee.String()),
		zap.String("tx", outcome.TxHash),
	)
	return outcome, nil
}

func (s *ClaimStrategy) skip() model.ClaimOutcome {
	out := model.NoClaim()
	if s.metrics != nil {
		s.metrics.ObserveClaim(out, false)
	}
	return out
}
