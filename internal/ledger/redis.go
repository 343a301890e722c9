package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	defaultRedisKey = "prediction:simulation:balance"
	maxDebitRetries = 10
)

// Redis keeps the simulated balance in Redis so it survives restarts and
// can be shared by several bot processes.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = defaultRedisKey
	}
	return &Redis{client: client, key: key}
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Init seeds the balance if the key does not exist yet.
func (r *Redis) Init(ctx context.Context, initial decimal.Decimal) error {
	if err := r.client.SetNX(ctx, r.key, initial.String(), 0).Err(); err != nil {
		return fmt.Errorf("init balance: %w", err)
	}
	return nil
}

func (r *Redis) Balance(ctx context.Context) (decimal.Decimal, error) {
	return r.load(ctx, r.client)
}

// Debit runs an optimistic WATCH/MULTI read-modify-write, retrying when
// another writer touched the key in between.
func (r *Redis) Debit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	var next decimal.Decimal
	txf := func(tx *redis.Tx) error {
		current, err := r.load(ctx, tx)
		if err != nil {
			return err
		}
		next = current.Sub(amount)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, next.String(), 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxDebitRetries; attempt++ {
		err := r.client.Watch(ctx, txf, r.key)
		if err == nil {
			return next, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return decimal.Zero, fmt.Errorf("debit balance: %w", err)
	}
	return decimal.Zero, fmt.Errorf("debit balance: too much contention on %s", r.key)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *Redis) load(ctx context.Context, g getter) (decimal.Decimal, error) {
	raw, err := g.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("read balance: %w", err)
	}
	bal, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %q: %w", raw, err)
	}
	return bal, nil
}
