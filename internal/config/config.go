package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "PREDICTION"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL            string
	Contract          string
	PrivateKey        string
	ChainID           int64
	BetAmount         decimal.Decimal
	ClaimRewards      bool
	Simulation        bool
	SimulationBalance decimal.Decimal
	Ledger            string
	RedisAddr         string
	NativePrice       decimal.Decimal
	History           string
	HistoryPath       string
	PGDSN             string
	KafkaBrokers      []string
	KafkaTopic        string
	ReceiptTimeout    time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	RPCRate           float64
	Checkpoint        string
	ClaimBatchSize    uint64
	MetricsAddr       string
	LogLevel          string
}

// newViper merges .env, the config file, environment variables and flags.
func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain-id", int64(56))
	v.SetDefault("bet-amount", "5")
	v.SetDefault("claim-rewards", true)
	v.SetDefault("simulation", false)
	v.SetDefault("simulation-balance", "1000")
	v.SetDefault("ledger", "memory")
	v.SetDefault("redis-addr", "localhost:6379")
	v.SetDefault("history", "jsonl")
	v.SetDefault("history-path", "./data/history.jsonl")
	v.SetDefault("kafka-topic", "prediction.bets")
	v.SetDefault("receipt-timeout", 60*time.Second)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("rpc-rate", float64(10))
	v.SetDefault("checkpoint", "./data/claim_checkpoint.json")
	v.SetDefault("claim-batch-size", uint64(50))
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func decodeConfig(v *viper.Viper) (Config, error) {
	betAmount, err := getDecimal(v, "bet-amount")
	if err != nil {
		return Config{}, err
	}
	simBalance, err := getDecimal(v, "simulation-balance")
	if err != nil {
		return Config{}, err
	}
	nativePrice := decimal.Zero
	if v.GetString("native-price") != "" {
		nativePrice, err = getDecimal(v, "native-price")
		if err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		RPCURL:            v.GetString("rpc"),
		Contract:          v.GetString("contract"),
		PrivateKey:        v.GetString("private-key"),
		ChainID:           v.GetInt64("chain-id"),
		BetAmount:         betAmount,
		ClaimRewards:      v.GetBool("claim-rewards"),
		Simulation:        v.GetBool("simulation"),
		SimulationBalance: simBalance,
		Ledger:            strings.ToLower(v.GetString("ledger")),
		RedisAddr:         v.GetString("redis-addr"),
		NativePrice:       nativePrice,
		History:           strings.ToLower(v.GetString("history")),
		HistoryPath:       v.GetString("history-path"),
		PGDSN:             v.GetString("pg-dsn"),
		KafkaBrokers:      getStringSlice(v, "kafka-brokers"),
		KafkaTopic:        v.GetString("kafka-topic"),
		ReceiptTimeout:    v.GetDuration("receipt-timeout"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		RPCRate:           v.GetFloat64("rpc-rate"),
		Checkpoint:        v.GetString("checkpoint"),
		ClaimBatchSize:    v.GetUint64("claim-batch-size"),
		MetricsAddr:       v.GetString("metrics-addr"),
		LogLevel:          v.GetString("log-level"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.BetAmount.Sign() <= 0 {
		return fmt.Errorf("bet-amount must be positive, got %s", c.BetAmount)
	}
	if c.NativePrice.Sign() < 0 {
		return fmt.Errorf("native-price must not be negative, got %s", c.NativePrice)
	}
	switch c.Ledger {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown ledger %q (want memory or redis)", c.Ledger)
	}
	switch c.History {
	case "jsonl", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown history %q (want jsonl, sqlite or postgres)", c.History)
	}
	if c.History == "postgres" && c.PGDSN == "" {
		return fmt.Errorf("pg-dsn is required for postgres history")
	}
	return nil
}

func getDecimal(v *viper.Viper, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
