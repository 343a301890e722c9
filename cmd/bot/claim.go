package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"predictionBot/internal/claimer"
	"predictionBot/internal/model"
	"predictionBot/internal/strategy"
)

// A round can be claimed two epochs after it opened for bets.
const claimLag = 2

func newClaimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim rewards of one round or sweep a range of rounds",
		RunE:  runClaim,
	}
	cmd.Flags().String("epoch", "", "round to claim, defaults to the last finished round")
	cmd.Flags().String("from", "", "first round of a sweep (inclusive)")
	cmd.Flags().String("to", "", "last round of a sweep (inclusive), defaults to the last finished round")
	cmd.MarkFlagsMutuallyExclusive("epoch", "from")
	cmd.MarkFlagsMutuallyExclusive("epoch", "to")
	return cmd
}

func runClaim(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd, appOptions{chain: true, history: true})
	if err != nil {
		return err
	}
	defer a.close()

	claim, err := strategy.NewClaimStrategy(a.contract, a.metrics(), a.logger)
	if err != nil {
		return err
	}

	lastFinished := func(ctx context.Context) (model.Epoch, error) {
		current, err := a.contract.CurrentEpoch(ctx)
		if err != nil {
			return model.Epoch{}, err
		}
		if current.Cmp(model.NewEpoch(claimLag)) < 0 {
			return model.Epoch{}, fmt.Errorf("no finished round yet (current %s)", current)
		}
		n := current.Big()
		return model.EpochFromBig(n.Sub(n, big.NewInt(claimLag))), nil
	}

	if from, _ := cmd.Flags().GetString("from"); from != "" {
		start, err := model.ParseEpoch(from)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		end, err := epochFlag(ctx, cmd, "to", lastFinished)
		if err != nil {
			return err
		}

		sweeper := claimer.NewSweeper(claimer.Config{BatchSize: a.cfg.ClaimBatchSize}, claim, a.checkpoint(), a.logger)
		res, err := sweeper.Run(ctx, a.src.Settings, start, end)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "checked %d rounds: claimed=%d failed=%d skipped=%d fees=%s\n",
			res.Checked, res.Claimed, res.Failed, res.Skipped, res.TotalFees)
		return nil
	}

	epoch, err := epochFlag(ctx, cmd, "epoch", lastFinished)
	if err != nil {
		return err
	}
	out, err := claim.Execute(ctx, a.src.Settings(), epoch)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "round %s status=%d exception=%t fee=%s tx=%s\n",
		epoch, out.Status, out.TransactionException, out.TxGasFee, out.TxHash)
	return nil
}
