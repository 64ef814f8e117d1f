package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// Supported values of Config.Driver.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a query matches no row.
var ErrNotFound = errors.New("record not found")

// Config is the database configuration.
type Config struct {
	Driver             string `mapstructure:"driver"`
	DSN                string `mapstructure:"dsn"`
	Automigrate        bool   `mapstructure:"automigrate"`
	MaxOpenConnections int    `mapstructure:"max_open_connections"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections"`
	TraceQueries       bool   `mapstructure:"trace_queries"`
}

// Handler is implemented by both *DB and *Tx, so query functions work the
// same inside and outside a transaction.
type Handler interface {
	Rebind(string) string
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DB is the application database handle.
type DB struct {
	*sqlx.DB
	cfg    Config
	logger *slog.Logger
}

// Tx is a database transaction.
type Tx struct {
	*sqlx.Tx
	logger *slog.Logger
}

var (
	_ Handler = (*DB)(nil)
	_ Handler = (*Tx)(nil)
)

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	driverName, dsn, err := driverDSN(cfg)
	if err != nil {
		return nil, err
	}

	dbx, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite allows a single writer; serialize access through one connection.
		dbx.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConnections > 0 {
			dbx.SetMaxOpenConns(cfg.MaxOpenConnections)
		}
		if cfg.MaxIdleConnections > 0 {
			dbx.SetMaxIdleConns(cfg.MaxIdleConnections)
		}
	}

	d := &DB{DB: dbx, cfg: cfg}
	if cfg.TraceQueries && logger != nil {
		d.logger = logger.With("component", "db")
	}
	return d, nil
}

func driverDSN(cfg Config) (string, string, error) {
	switch cfg.Driver {
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			return "", "", errors.New("database dsn is required")
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_foreign_keys=on&_busy_timeout=5000"
		}
		return "sqlite3", dsn, nil
	case DriverPostgres:
		if cfg.DSN == "" {
			return "", "", errors.New("database dsn is required")
		}
		return "pgx", cfg.DSN, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Driver returns the configured driver, DriverSQLite or DriverPostgres.
func (d *DB) Driver() string {
	return d.cfg.Driver
}

// TransactionContext runs fn in a transaction. The transaction is committed
// when fn returns nil and rolled back otherwise.
func (d *DB) TransactionContext(ctx context.Context, fn func(tx *Tx) error) error {
	txx, err := d.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	tx := &Tx{Tx: txx, logger: d.logger}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("failed to rollback: %w", rerr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err was caused by a unique constraint.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// notFound translates sql.ErrNoRows into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
