package repository

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/segyhp/repayment-engine/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const driverSQLite = "sqlite3"

// Open connects to the configured database and applies pool settings
func Open(cfg *config.Config) (*sqlx.DB, error) {
	dsn := cfg.Database.URL
	if cfg.Database.Driver == driverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Connect(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Database.Driver, err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	return db, nil
}

// sqliteDSN makes every transaction take the write lock up front (BEGIN IMMEDIATE),
// which serializes concurrent repayments the way FOR UPDATE does on PostgreSQL.
func sqliteDSN(dsn string) string {
	params := []string{"_txlock=immediate", "_foreign_keys=on", "_busy_timeout=5000"}
	for _, p := range params {
		key := p[:strings.Index(p, "=")]
		if strings.Contains(dsn, key) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + p
		} else {
			dsn += "?" + p
		}
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	return dsn
}

// Migrate creates the schema for the connected dialect
func Migrate(ctx context.Context, db *sqlx.DB) error {
	name := "migrations/postgres.sql"
	if db.DriverName() == driverSQLite {
		name = "migrations/sqlite.sql"
	}

	schema, err := migrations.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("apply %s: %w", name, err)
	}
	return nil
}

type txKey struct{}

// conn returns the transaction carried by ctx, or the pool
func conn(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// TxManager implements Transactor on top of sqlx
type TxManager struct {
	db          *sqlx.DB
	maxRetries  int
	lockTimeout time.Duration
	logger      *slog.Logger
}

func NewTxManager(db *sqlx.DB, maxRetries int, lockTimeout time.Duration, logger *slog.Logger) *TxManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &TxManager{
		db:          db,
		maxRetries:  maxRetries,
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

// WithinTx runs fn in a transaction, committing on success and rolling back on error.
// Lock contention and serialization failures are retried up to maxRetries times;
// fn must therefore only touch state through the ctx it is given.
// Calls nested inside an open transaction join it.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	var err error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			m.logger.WarnContext(ctx, "retrying transaction after contention", "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
			}
		}

		err = m.run(ctx, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrContention, m.maxRetries+1, err)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if m.lockTimeout > 0 && tx.DriverName() != driverSQLite {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
