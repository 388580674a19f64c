package sqlbase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dukex/agroops/pkg/persistence"
)

// Repository stores one record kind as JSON documents in the table named
// after the kind's collection: (id, body, created_at, updated_at).
type Repository[E any] struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
	kind    persistence.Kind[*E]
}

// NewRepository creates a document repository.
func NewRepository[E any](db *sql.DB, dialect Dialect, logger *slog.Logger, kind persistence.Kind[*E]) *Repository[E] {
	return &Repository[E]{db: db, dialect: dialect, logger: logger, kind: kind}
}

// GetAll returns every record of the table in the kind's listing order.
func (r *Repository[E]) GetAll(ctx context.Context) ([]*E, error) {
	query := "SELECT body FROM " + r.kind.Collection

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.kind.Collection, err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	all := make([]*E, 0)

	for rows.Next() {
		var body []byte

		err := rows.Scan(&body)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.kind.Record, err)
		}

		item := new(E)

		err = json.Unmarshal(body, item)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", r.kind.Record, err)
		}

		all = append(all, item)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", r.kind.Collection, err)
	}

	slices.SortFunc(all, r.kind.Compare)

	return all, nil
}

// GetByID returns one record.
func (r *Repository[E]) GetByID(ctx context.Context, id string) (*E, error) {
	query := r.dialect.Rebind("SELECT body FROM " + r.kind.Collection + " WHERE id = ?")

	var body []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewRecordError("GetByID", r.kind.Record, id, r.kind.NotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s %s: %w", r.kind.Record, id, err)
	}

	item := new(E)

	err = json.Unmarshal(body, item)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %s: %w", r.kind.Record, id, err)
	}

	return item, nil
}

// Save stamps the record and upserts it.
func (r *Repository[E]) Save(ctx context.Context, item *E) error {
	r.kind.Stamp(item, time.Now().UTC())
	id := r.kind.ID(item)

	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", r.kind.Record, id, err)
	}

	query := r.dialect.Rebind(`
		INSERT INTO ` + r.kind.Collection + ` (id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at
	`)

	now := time.Now().UTC()

	_, err = r.db.ExecContext(ctx, query, id, string(body), now, now)
	if err != nil {
		return fmt.Errorf("failed to save %s %s: %w", r.kind.Record, id, err)
	}

	return nil
}

// Delete removes one record.
func (r *Repository[E]) Delete(ctx context.Context, id string) error {
	query := r.dialect.Rebind("DELETE FROM " + r.kind.Collection + " WHERE id = ?")

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", r.kind.Record, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected == 0 {
		return persistence.NewRecordError("Delete", r.kind.Record, id, r.kind.NotFound)
	}

	return nil
}
