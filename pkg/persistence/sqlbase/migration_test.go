package sqlbase

import (
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrations.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestMigrationManager_AppliesInVersionOrder(t *testing.T) {
	db := openSQLite(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Version 3 depends on 2 which depends on 1; map iteration order is random.
	migrations := map[int]string{
		3: `INSERT INTO steps (name) SELECT 'third' FROM steps WHERE name = 'second';`,
		1: `CREATE TABLE steps (name TEXT NOT NULL);`,
		2: `INSERT INTO steps (name) VALUES ('second');`,
	}

	manager := NewMigrationManager(logger, db, SQLite, migrations)
	assert.Equal(t, 3, manager.LatestVersion())

	require.NoError(t, manager.RunMigrations(t.Context()))

	version, err := manager.CurrentVersion(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	var count int
	require.NoError(t, db.QueryRowContext(t.Context(), "SELECT COUNT(*) FROM steps").Scan(&count))
	assert.Equal(t, 2, count)

	// Running again is a no-op.
	require.NoError(t, manager.RunMigrations(t.Context()))
	require.NoError(t, db.QueryRowContext(t.Context(), "SELECT COUNT(*) FROM steps").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestMigrationManager_FailedMigrationRollsBack(t *testing.T) {
	db := openSQLite(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	manager := NewMigrationManager(logger, db, SQLite, map[int]string{
		1: `CREATE TABLE ok (id INTEGER);`,
		2: `THIS IS NOT SQL;`,
	})

	err := manager.RunMigrations(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 2")

	version, err := manager.CurrentVersion(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}
