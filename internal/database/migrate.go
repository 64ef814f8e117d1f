package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers pgx5://
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies all pending migrations for the database dialect.
func Migrate(d *DB, logger *slog.Logger) error {
	src, err := iofs.New(migrations, "migrations/"+migrationDir(d.Driver()))
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	var m *migrate.Migrate
	switch d.Driver() {
	case DriverSQLite:
		var drv migratedb.Driver
		drv, err = sqlitemigrate.WithInstance(d.DB.DB, &sqlitemigrate.Config{})
		if err != nil {
			return fmt.Errorf("migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "sqlite3", drv)
		// The sqlite driver shares d's connection; closing m would close d.
	case DriverPostgres:
		m, err = migrate.NewWithSourceInstance("iofs", src, postgresMigrateURL(d.cfg.DSN))
		if err == nil {
			defer m.Close()
		}
	default:
		return fmt.Errorf("unsupported database driver %q", d.Driver())
	}
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}

	version, dirty, _ := m.Version()
	if logger != nil {
		logger.Info("migrations applied", "driver", d.Driver(), "version", version, "dirty", dirty)
	}
	return nil
}

func migrationDir(driver string) string {
	if driver == DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// postgresMigrateURL rewrites a postgres:// DSN to the scheme registered by
// the pgx/v5 migrate driver.
func postgresMigrateURL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}
