package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/config"
)

// execer is the subset of a pool, connection or transaction the stores need.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DB wraps the connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB connects to PostgreSQL and verifies the connection.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("connected to database",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
	)
	return &DB{pool: pool, logger: logger}, nil
}

// Pool returns the underlying pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Stats returns pool statistics.
func (db *DB) Stats() *pgxpool.Stat {
	return db.pool.Stat()
}

// Close closes the pool.
func (db *DB) Close() {
	db.pool.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		game_id     TEXT PRIMARY KEY,
		winner      TEXT NOT NULL DEFAULT '',
		reason      TEXT NOT NULL DEFAULT '',
		cancelled   BOOLEAN NOT NULL DEFAULT FALSE,
		finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS game_losers (
		game_id   TEXT NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
		player_id TEXT NOT NULL,
		reason    TEXT NOT NULL,
		PRIMARY KEY (game_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS pile_counts (
		game_id      TEXT NOT NULL,
		player_id    TEXT NOT NULL,
		reserve_deck INTEGER NOT NULL,
		force_pile   INTEGER NOT NULL,
		used_pile    INTEGER NOT NULL,
		lost_pile    INTEGER NOT NULL,
		hand         INTEGER NOT NULL,
		out_of_play  INTEGER NOT NULL,
		PRIMARY KEY (game_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS cards (
		blueprint_id  TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		side          TEXT NOT NULL,
		category      TEXT NOT NULL,
		card_types    TEXT NOT NULL DEFAULT '',
		uniqueness    BOOLEAN NOT NULL DEFAULT FALSE,
		destiny       DOUBLE PRECISION NOT NULL DEFAULT 0,
		deploy_cost   DOUBLE PRECISION NOT NULL DEFAULT 0,
		power         DOUBLE PRECISION NOT NULL DEFAULT 0,
		ability       DOUBLE PRECISION NOT NULL DEFAULT 0,
		forfeit       DOUBLE PRECISION NOT NULL DEFAULT 0,
		location_kind TEXT NOT NULL DEFAULT '',
		game_text     TEXT NOT NULL DEFAULT ''
	)`,
}

// Migrate creates the tables the stores write to.
func Migrate(ctx context.Context, db execer) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
