package database

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Database struct {
	dsn            string
	ConnectionPool *pgxpool.Pool
}

func NewDatabase(dsn string) *Database {
	return &Database{dsn: dsn}
}

// Connect opens the pgx connection pool. Every session is read-only; the
// viewer never writes to the history database.
func (db *Database) Connect(ctx context.Context) error {
	cfg, err := pgxpool.ParseConfig(db.dsn)
	if err != nil {
		return fmt.Errorf("parse database DSN: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	cfg.ConnConfig.RuntimeParams["application_name"] = "adspy-view"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("unable to connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	log.WithField("host", cfg.ConnConfig.Host).Debug("connected to history database")
	db.ConnectionPool = pool
	return nil
}

func (db *Database) Pool() *pgxpool.Pool {
	return db.ConnectionPool
}

func (db *Database) Close() {
	if db.ConnectionPool != nil {
		db.ConnectionPool.Close()
	}
}

// Store returns a HistoryReader backed by the connection pool.
func (db *Database) Store() *Store {
	return NewStore(db.ConnectionPool)
}
