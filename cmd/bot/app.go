package main

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"predictionBot/internal/chain"
	"predictionBot/internal/claimer"
	"predictionBot/internal/config"
	"predictionBot/internal/ledger"
	"predictionBot/internal/metrics"
	"predictionBot/internal/prediction"
	"predictionBot/internal/pricing"
	"predictionBot/internal/storage"
	"predictionBot/internal/storage/postgres"
	"predictionBot/internal/storage/sqlite"
	"predictionBot/internal/strategy"
)

// app holds the wired collaborators of one command run.
type app struct {
	src    *config.Source
	cfg    config.Config
	logger *zap.Logger

	chain     *chain.Client
	contract  *prediction.Contract
	converter *pricing.Converter
	ledger    ledger.Ledger
	history   storage.HistoryStore
	reader    storage.HistoryReader
	pg        *postgres.Store
	recorder  *metrics.Recorder

	closers []func()
}

type appOptions struct {
	chain     bool
	converter bool
	ledger    bool
	history   bool
}

func newApp(ctx context.Context, cmd *cobra.Command, opts appOptions) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	src, err := config.NewSource(cfgFile, cmd.Flags(), nil)
	if err != nil {
		return nil, err
	}
	cfg := src.Config()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	src.Watch(logger)

	a := &app{src: src, cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	if err := a.wire(ctx, opts); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context, opts appOptions) error {
	cfg := a.cfg

	if opts.converter {
		converter, err := pricing.NewConverter(cfg.NativePrice)
		if err != nil {
			return fmt.Errorf("native-price: %w", err)
		}
		a.converter = converter
	}

	if opts.chain {
		if err := a.openChain(ctx); err != nil {
			return err
		}
	}

	if opts.ledger {
		l, err := a.openLedger(ctx)
		if err != nil {
			return err
		}
		a.ledger = l
	}

	if opts.history {
		if err := a.openHistory(ctx); err != nil {
			return err
		}
	}

	if cfg.MetricsAddr != "" {
		a.recorder = metrics.NewRecorder()
		srv := metrics.StartServer(cfg.MetricsAddr, metrics.NewHandler(a.recorder.Registry(), a.health), a.logger)
		a.closers = append(a.closers, func() { shutdownServer(srv) })
	}
	return nil
}

func (a *app) openChain(ctx context.Context) error {
	cfg := a.cfg
	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.Contract) {
		return fmt.Errorf("invalid contract address: %q", cfg.Contract)
	}
	if cfg.PrivateKey == "" {
		return fmt.Errorf("private key is required")
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, cfg.RPCRate)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	a.chain = chainClient
	a.closers = append(a.closers, chainClient.Close)

	contract, err := prediction.NewContract(ctx, chainClient, prediction.Config{
		Address:        common.HexToAddress(cfg.Contract),
		PrivateKeyHex:  cfg.PrivateKey,
		ChainID:        big.NewInt(cfg.ChainID),
		ReceiptTimeout: cfg.ReceiptTimeout,
		MaxRetries:     cfg.MaxRetries,
		RetryBackoff:   cfg.RetryBackoff,
	}, a.logger)
	if err != nil {
		return err
	}
	a.contract = contract
	return nil
}

func (a *app) openLedger(ctx context.Context) (ledger.Ledger, error) {
	if !a.cfg.Simulation {
		return ledger.Select(false, nil), nil
	}

	switch a.cfg.Ledger {
	case "redis":
		client, err := ledger.Connect(ctx, a.cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		rl := ledger.NewRedis(client, "")
		if err := rl.Init(ctx, a.cfg.SimulationBalance); err != nil {
			return nil, err
		}
		return ledger.Select(true, rl), nil
	default:
		a.logger.Warn("memory ledger is not persisted, simulated balance resets every run; use --ledger redis to keep it",
			zap.String("initial_balance", a.cfg.SimulationBalance.String()),
		)
		return ledger.Select(true, ledger.NewMemory(a.cfg.SimulationBalance)), nil
	}
}

func (a *app) openHistory(ctx context.Context) error {
	type historyBackend interface {
		storage.HistoryStore
		storage.HistoryReader
	}

	var primary historyBackend
	switch a.cfg.History {
	case "sqlite":
		store, err := sqlite.NewStore(a.cfg.HistoryPath)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		primary = store
	case "postgres":
		store, err := postgres.NewStore(ctx, a.cfg.PGDSN)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, store.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		a.pg = store
		primary = store
	default:
		primary = storage.NewJsonlStorage(a.cfg.HistoryPath)
	}

	a.reader = primary
	a.history = primary
	if len(a.cfg.KafkaBrokers) > 0 {
		kafkaStore := storage.NewKafkaStorage(storage.NewKafkaWriter(a.cfg.KafkaBrokers, a.cfg.KafkaTopic))
		a.closers = append(a.closers, func() { _ = kafkaStore.Close() })
		a.history = storage.NewTee(primary, a.logger, kafkaStore)
	}
	return nil
}

// checkpoint returns the claim sweep checkpoint, kept next to the history.
func (a *app) checkpoint() claimer.Checkpoint {
	if a.pg != nil {
		return claimer.NewStoreCheckpoint(a.pg, "claim")
	}
	return claimer.NewFileCheckpoint(a.cfg.Checkpoint)
}

func (a *app) metrics() strategy.Metrics {
	if a.recorder == nil {
		return nil
	}
	return a.recorder
}

func (a *app) health(ctx context.Context) error {
	if a.chain != nil {
		if _, err := a.chain.LatestBlockNumber(ctx); err != nil {
			return fmt.Errorf("rpc: %w", err)
		}
	}
	if a.pg != nil {
		if err := a.pg.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
