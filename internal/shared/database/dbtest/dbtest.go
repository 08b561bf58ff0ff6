// Package dbtest opens throwaway migrated SQLite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/database"

	"github.com/stretchr/testify/require"
)

// New returns a migrated database stored under t.TempDir, closed on cleanup
func New(t *testing.T) *database.DB {
	t.Helper()

	cfg := config.Default()
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "galaxy-test.db")

	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// Count returns the number of rows in table
func Count(t *testing.T, db *database.DB, table string) int {
	t.Helper()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
	return count
}
