package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"predictionBot/internal/model"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded bets",
		RunE:  runHistory,
	}
	cmd.Flags().Int("limit", 20, "number of most recent bets, 0 shows all")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cmd, appOptions{history: true})
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.reader.List(ctx, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "no bets recorded")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header("Round", "Bet", "Amount", "Executed", "Gas fee", "Tx", "Recorded")
	for _, r := range records {
		if err := table.Append(
			r.Round,
			string(r.Bet),
			r.BetAmount.String(),
			fmt.Sprintf("%t", r.BetExecuted),
			r.TxGasFee.String(),
			shortHash(r.TxHash),
			r.RecordedAt.Format("2006-01-02 15:04:05"),
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	sum := model.Summarize(records)
	fmt.Fprintf(out, "%d bets (%d up, %d down), %d executed, staked %s, gas %s\n",
		sum.Total, sum.Up, sum.Down, sum.Executed, sum.TotalAmount, sum.TotalFees)
	return nil
}

func shortHash(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:8] + "…" + h[len(h)-4:]
}
