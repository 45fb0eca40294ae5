package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ugaemi/arena-server/internal/account"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    nickname TEXT NOT NULL DEFAULT '',
    is_guest BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_login_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    nickname TEXT NOT NULL DEFAULT '',
    layout TEXT NOT NULL DEFAULT '',
    kills INTEGER NOT NULL DEFAULT 0,
    survived DOUBLE PRECISION NOT NULL DEFAULT 0,
    dashes INTEGER NOT NULL DEFAULT 0,
    damage_dealt INTEGER NOT NULL DEFAULT 0,
    ended_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_runs_leaderboard ON runs(kills DESC, survived DESC, ended_at ASC);
CREATE INDEX IF NOT EXISTS idx_runs_account ON runs(account_id, ended_at DESC);
`

const runColumns = `id, account_id, nickname, layout, kills, survived, dashes, damage_dealt, ended_at`

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and initializes the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// FindByID looks up an account by internal ID.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*account.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, nickname, is_guest, created_at, last_login_at
		 FROM accounts WHERE id = $1`, id)

	acc, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return acc, err
}

// Create inserts a new account.
func (s *PostgresStore) Create(ctx context.Context, acc *account.Account) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (id, nickname, is_guest, created_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		acc.ID, acc.Nickname, acc.IsGuest, acc.CreatedAt, acc.LastLoginAt)
	return err
}

// UpdateLastLogin updates the last login timestamp.
func (s *PostgresStore) UpdateLastLogin(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET last_login_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdateNickname updates the account nickname.
func (s *PostgresStore) UpdateNickname(ctx context.Context, id string, nickname string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET nickname = $1 WHERE id = $2`, nickname, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// SaveRun inserts a finished run.
func (s *PostgresStore) SaveRun(ctx context.Context, run *account.Run) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (`+runColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, run.AccountID, run.Nickname, run.Layout, run.Kills, run.Survived, run.Dashes, run.DamageDealt, run.EndedAt)
	return err
}

// TopRuns returns the best runs, best first.
func (s *PostgresStore) TopRuns(ctx context.Context, limit int) ([]*account.Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+runColumns+` FROM runs
		 ORDER BY kills DESC, survived DESC, ended_at ASC
		 LIMIT $1`, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return collectRuns(rows)
}

// RunsByAccount returns an account's most recent runs, newest first.
func (s *PostgresStore) RunsByAccount(ctx context.Context, accountID string, limit int) ([]*account.Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+runColumns+` FROM runs
		 WHERE account_id = $1
		 ORDER BY ended_at DESC
		 LIMIT $2`, accountID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return collectRuns(rows)
}

// Close releases database resources.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(&acc.ID, &acc.Nickname, &acc.IsGuest, &acc.CreatedAt, &acc.LastLoginAt)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func collectRuns(rows pgx.Rows) ([]*account.Run, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*account.Run, error) {
		var r account.Run
		err := row.Scan(&r.ID, &r.AccountID, &r.Nickname, &r.Layout, &r.Kills, &r.Survived, &r.Dashes, &r.DamageDealt, &r.EndedAt)
		if err != nil {
			return nil, err
		}
		return &r, nil
	})
}
