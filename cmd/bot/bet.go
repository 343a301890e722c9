package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"predictionBot/internal/model"
	"predictionBot/internal/strategy"
)

func newBetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bet",
		Short: "Place one bet on a round",
		RunE:  runBet,
	}
	cmd.Flags().String("direction", "", "up or down")
	cmd.Flags().String("epoch", "", "round to bet on, defaults to the current round")
	_ = cmd.MarkFlagRequired("direction")
	return cmd
}

func runBet(cmd *cobra.Command, _ []string) error {
	rawDir, _ := cmd.Flags().GetString("direction")
	dir, err := model.ParseDirection(rawDir)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd, appOptions{chain: true, converter: true, ledger: true, history: true})
	if err != nil {
		return err
	}
	defer a.close()

	epoch, err := epochFlag(ctx, cmd, "epoch", a.contract.CurrentEpoch)
	if err != nil {
		return err
	}

	bet, err := strategy.NewBetStrategy(dir, strategy.BetDeps{
		Converter: a.converter,
		Contract:  a.contract,
		History:   a.history,
		Ledger:    a.ledger,
		Metrics:   a.metrics(),
	}, a.logger)
	if err != nil {
		return err
	}

	settings := a.src.Settings()
	a.logger.Info("bet start",
		zap.String("bet", string(dir)),
		zap.String("round", epoch.String()),
		zap.String("bet_amount", settings.BetAmount.String()),
		zap.Bool("simulation", a.cfg.Simulation),
	)

	executed, err := bet.Execute(ctx, settings, epoch)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "round %s %s executed=%t\n", epoch, dir, executed)
	if a.cfg.Simulation {
		balance, err := a.ledger.Balance(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "simulated balance %s\n", balance.StringFixed(4))
	}
	return nil
}

// epochFlag parses the named flag, or asks fallback when it is empty.
func epochFlag(ctx context.Context, cmd *cobra.Command, name string, fallback func(context.Context) (model.Epoch, error)) (model.Epoch, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		epoch, err := fallback(ctx)
		if err != nil {
			return model.Epoch{}, fmt.Errorf("current epoch: %w", err)
		}
		return epoch, nil
	}
	epoch, err := model.ParseEpoch(raw)
	if err != nil {
		return model.Epoch{}, fmt.Errorf("--%s: %w", name, err)
	}
	return epoch, nil
}
