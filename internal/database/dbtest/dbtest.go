// Package dbtest opens migrated throwaway databases for repository tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"ai-fitness-coach/internal/database"
)

// Open returns a freshly migrated database that is closed when t ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db.SQL
}
