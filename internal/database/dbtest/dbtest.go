// Package dbtest provides a migrated SQLite database for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/James9446/patricia-james-sub001/internal/database"
)

// Open creates a temp SQLite database with all migrations applied. It is
// closed with tb.Cleanup.
func Open(tb testing.TB) *database.DB {
	tb.Helper()
	cfg := database.Config{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(tb.TempDir(), "test.db"),
	}
	db, err := database.Open(context.Background(), cfg, nil)
	if err != nil {
		tb.Fatalf("Failed to open test database: %v", err)
	}
	tb.Cleanup(func() {
		if err := db.Close(); err != nil {
			tb.Errorf("Failed to close test database: %v", err)
		}
	})
	if err := database.Migrate(db, nil); err != nil {
		tb.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
