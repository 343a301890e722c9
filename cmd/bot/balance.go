package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"predictionBot/internal/pricing"
	"predictionBot/internal/units"
)

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the simulated balance or the wallet balance",
		RunE:  runBalance,
	}
}

func runBalance(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd, appOptions{ledger: true})
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	if a.cfg.Simulation {
		balance, err := a.ledger.Balance(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "simulated balance %s (%s ledger)\n", balance.StringFixed(4), a.cfg.Ledger)
		return nil
	}

	if err := a.openChain(ctx); err != nil {
		return err
	}
	wei, err := a.chain.BalanceAt(ctx, a.contract.From())
	if err != nil {
		return fmt.Errorf("wallet balance: %w", err)
	}
	native := units.FormatEther(wei)
	fmt.Fprintf(out, "wallet %s balance %s\n", a.contract.From().Hex(), native)

	if a.cfg.NativePrice.Sign() > 0 {
		converter, err := pricing.NewConverter(a.cfg.NativePrice)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "fiat value %s\n", converter.FeeToFiat(native).StringFixed(2))
	}
	return nil
}
