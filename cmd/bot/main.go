package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bot",
		Short:        "Prediction round bet and claim bot",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("rpc", "", "BSC RPC URL")
	flags.String("contract", "", "prediction contract address")
	flags.String("private-key", "", "wallet private key (hex)")
	flags.Int64("chain-id", 56, "chain id, 0 reads it from the node")
	flags.String("bet-amount", "5", "bet size in fiat")
	flags.Bool("claim-rewards", true, "claim rewards of won rounds")
	flags.Bool("simulation", false, "debit a simulated balance instead of the wallet")
	flags.String("simulation-balance", "1000", "initial simulated balance in fiat")
	flags.String("ledger", "memory", "simulated ledger (memory, redis)")
	flags.String("redis-addr", "localhost:6379", "redis address for the redis ledger")
	flags.String("native-price", "", "fiat price of one native token")
	flags.String("history", "jsonl", "history backend (jsonl, sqlite, postgres)")
	flags.String("history-path", "./data/history.jsonl", "history file for jsonl and sqlite")
	flags.String("pg-dsn", "", "Postgres DSN")
	flags.StringSlice("kafka-brokers", nil, "kafka brokers mirroring history (comma-separated)")
	flags.String("kafka-topic", "prediction.bets", "kafka topic for history")
	flags.Duration("receipt-timeout", 60*time.Second, "how long to wait for a transaction receipt")
	flags.Int("max-retries", 3, "maximum retry attempts for contract reads")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.Float64("rpc-rate", 10, "RPC requests per second, 0 disables throttling")
	flags.String("checkpoint", "./data/claim_checkpoint.json", "claim sweep checkpoint file")
	flags.Uint64("claim-batch-size", 50, "epochs per claim sweep batch")
	flags.String("metrics-addr", "", "serve /metrics and /healthz on this address")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newBetCmd(), newClaimCmd(), newHistoryCmd(), newBalanceCmd())
	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
