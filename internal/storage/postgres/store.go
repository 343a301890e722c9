package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"predictionBot/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS bet_history (
	id           UUID PRIMARY KEY,
	round        NUMERIC(78, 0) NOT NULL,
	bet          TEXT NOT NULL,
	bet_amount   NUMERIC NOT NULL,
	bet_executed BOOLEAN NOT NULL,
	tx_gas_fee   NUMERIC NOT NULL,
	tx_hash      TEXT NOT NULL DEFAULT '',
	recorded_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bet_history_round ON bet_history (round);
CREATE INDEX IF NOT EXISTS idx_bet_history_recorded ON bet_history (recorded_at DESC);

CREATE TABLE IF NOT EXISTS claim_state (
	name                 TEXT PRIMARY KEY,
	last_processed_epoch NUMERIC(78, 0) NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);
`

// Store provides Postgres persistence for bet history and claim progress.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks the connection, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema creates the tables if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Append inserts bet records in a single batch.
func (s *Store) Append(ctx context.Context, records []model.BetRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO bet_history (
				id, round, bet, bet_amount, bet_executed, tx_gas_fee, tx_hash, recorded_at
			) VALUES ($1::uuid, $2::numeric, $3, $4::numeric, $5, $6::numeric, $7, $8)
		`,
			r.ID,
			r.Round,
			string(r.Bet),
			r.BetAmount.String(),
			r.BetExecuted,
			r.TxGasFee.String(),
			r.TxHash,
			r.RecordedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert bet record: %w", err)
		}
	}
	return nil
}

// List returns the most recent records, oldest first.
func (s *Store) List(ctx context.Context, limit int) ([]model.BetRecord, error) {
	if limit <= 0 {
		limit = 1 << 30
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, round::text, bet, bet_amount::text, bet_executed, tx_gas_fee::text, tx_hash, recorded_at
		FROM (
			SELECT * FROM bet_history ORDER BY recorded_at DESC LIMIT $1
		) recent
		ORDER BY recorded_at ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query bet history: %w", err)
	}
	defer rows.Close()

	var out []model.BetRecord
	for rows.Next() {
		var (
			r                model.BetRecord
			bet, amount, fee string
			recordedAt       time.Time
		)
		if err := rows.Scan(&r.ID, &r.Round, &bet, &amount, &r.BetExecuted, &fee, &r.TxHash, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan bet record: %w", err)
		}
		r.Bet = model.Direction(bet)
		if r.BetAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse bet amount: %w", err)
		}
		if r.TxGasFee, err = decimal.NewFromString(fee); err != nil {
			return nil, fmt.Errorf("parse tx gas fee: %w", err)
		}
		r.RecordedAt = recordedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadState returns the last processed epoch for a name.
func (s *Store) LoadState(ctx context.Context, name string) (model.Epoch, bool, error) {
	if name == "" {
		return model.Epoch{}, false, fmt.Errorf("state name required")
	}
	var raw string
	row := s.pool.QueryRow(ctx, `SELECT last_processed_epoch::text FROM claim_state WHERE name=$1`, name)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Epoch{}, false, nil
		}
		return model.Epoch{}, false, err
	}
	epoch, err := model.ParseEpoch(raw)
	if err != nil {
		return model.Epoch{}, false, err
	}
	return epoch, true, nil
}

// SaveState upserts the last processed epoch for a name.
func (s *Store) SaveState(ctx context.Context, name string, epoch model.Epoch) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO claim_state (name, last_processed_epoch, updated_at)
		VALUES ($1, $2::numeric, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_epoch = EXCLUDED.last_processed_epoch, updated_at = now()
	`, name, epoch.String())
	return err
}
