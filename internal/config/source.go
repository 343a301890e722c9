package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"predictionBot/internal/strategy"
)

// Source keeps the loaded configuration and reloads it when the config
// file changes. Strategies read Settings before every round.
type Source struct {
	mu     sync.RWMutex
	v      *viper.Viper
	cfg    Config
	logger *zap.Logger
}

func NewSource(cfgFile string, flags *pflag.FlagSet, logger *zap.Logger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return nil, err
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		return nil, err
	}
	return &Source{v: v, cfg: cfg, logger: logger}, nil
}

// Config returns the current configuration snapshot.
func (s *Source) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Settings returns the per-round strategy settings.
func (s *Source) Settings() strategy.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strategy.Settings{
		BetAmount:    s.cfg.BetAmount,
		ClaimRewards: s.cfg.ClaimRewards,
	}
}

// Reload decodes the configuration again. An invalid configuration is
// rejected and the previous one is kept.
func (s *Source) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.v.ConfigFileUsed() != "" {
		if err := s.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}
	cfg, err := decodeConfig(s.v)
	if err != nil {
		return err
	}
	if cfg.Simulation != s.cfg.Simulation || cfg.Ledger != s.cfg.Ledger {
		s.logger.Warn("ledger settings change needs a restart",
			zap.Bool("simulation", cfg.Simulation),
			zap.String("ledger", cfg.Ledger),
		)
	}
	s.cfg = cfg
	return nil
}

// Watch reloads the configuration whenever the config file is written.
// It is a no-op when no config file was read.
func (s *Source) Watch(logger *zap.Logger) {
	if logger != nil {
		s.mu.Lock()
		s.logger = logger
		s.mu.Unlock()
	}
	if s.v.ConfigFileUsed() == "" {
		return
	}
	s.v.OnConfigChange(func(e fsnotify.Event) {
		if err := s.Reload(); err != nil {
			s.logger.Warn("config reload rejected", zap.String("file", e.Name), zap.Error(err))
			return
		}
		settings := s.Settings()
		s.logger.Info("config reloaded",
			zap.String("file", e.Name),
			zap.String("bet_amount", settings.BetAmount.String()),
			zap.Bool("claim_rewards", settings.ClaimRewards),
		)
	})
	s.v.WatchConfig()
}
