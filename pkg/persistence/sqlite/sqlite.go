// Package sqlite provides the SQLite persistence implementation.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/agroops/pkg/persistence/sqlbase"
	_ "github.com/mattn/go-sqlite3"
)

// Persistence implements the persistence layer for SQLite.
type Persistence struct {
	*sqlbase.Persistence
}

// NewPersistence opens (creating if needed) the database file named by
// databaseURL, e.g. sqlite:///var/lib/agroops/agroops.db.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	path := strings.TrimPrefix(databaseURL, "sqlite://")
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is empty in %q", databaseURL)
	}

	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_busy_timeout=5000"
	}

	database, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite serialises writers; one connection avoids "database is locked".
	database.SetMaxOpenConns(1)

	base, err := sqlbase.Open(ctx, logger, database, sqlbase.SQLite, migrations())
	if err != nil {
		_ = database.Close()

		return nil, err
	}

	return &Persistence{Persistence: base}, nil
}

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE templates (
				id TEXT PRIMARY KEY,
				body TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			CREATE TABLE crops (
				id TEXT PRIMARY KEY,
				body TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			CREATE TABLE tasks (
				id TEXT PRIMARY KEY,
				body TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
		`,
		2: `
			CREATE INDEX idx_crops_kind ON crops (json_extract(body, '$.kind'));
			CREATE INDEX idx_tasks_status ON tasks (json_extract(body, '$.status'));
		`,
	}
}
