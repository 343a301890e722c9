// Package sqlite stores bet history in a local SQLite file (pure Go driver).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"predictionBot/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS bet_history (
    seq          INTEGER PRIMARY KEY AUTOINCREMENT,
    id           TEXT    NOT NULL UNIQUE,
    round        TEXT    NOT NULL,
    bet          TEXT    NOT NULL,
    bet_amount   TEXT    NOT NULL,
    bet_executed INTEGER NOT NULL DEFAULT 0,
    tx_gas_fee   TEXT    NOT NULL,
    tx_hash      TEXT    NOT NULL DEFAULT '',
    recorded_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bet_history_round ON bet_history(round);
`

// Store implements the history store on SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.NewStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // single writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.NewStore: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts records in one transaction.
func (s *Store) Append(ctx context.Context, records []model.BetRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite.Append: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bet_history
			(id, round, bet, bet_amount, bet_executed, tx_gas_fee, tx_hash, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite.Append: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Round, string(r.Bet), r.BetAmount.String(), boolToInt(r.BetExecuted),
			r.TxGasFee.String(), r.TxHash, r.RecordedAt.UTC(),
		); err != nil {
			return fmt.Errorf("sqlite.Append: insert %s: %w", r.Round, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite.Append: commit: %w", err)
	}
	return nil
}

// List returns the last limit records in insertion order. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]model.BetRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, round, bet, bet_amount, bet_executed, tx_gas_fee, tx_hash, recorded_at
		FROM (SELECT * FROM bet_history ORDER BY seq DESC LIMIT ?)
		ORDER BY seq ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite.List: query: %w", err)
	}
	defer rows.Close()

	var out []model.BetRecord
	for rows.Next() {
		var (
			r           model.BetRecord
			bet         string
			amount, fee string
			executed    int
			recordedAt  time.Time
		)
		if err := rows.Scan(&r.ID, &r.Round, &bet, &amount, &executed, &fee, &r.TxHash, &recordedAt); err != nil {
			return nil, fmt.Errorf("sqlite.List: scan: %w", err)
		}
		r.Bet = model.Direction(bet)
		r.BetExecuted = executed != 0
		if r.BetAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("sqlite.List: bet amount: %w", err)
		}
		if r.TxGasFee, err = decimal.NewFromString(fee); err != nil {
			return nil, fmt.Errorf("sqlite.List: gas fee: %w", err)
		}
		r.RecordedAt = recordedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
