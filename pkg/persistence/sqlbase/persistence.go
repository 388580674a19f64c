package sqlbase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/persistence"
)

// Persistence implements persistence.Persistence over an open *sql.DB.
type Persistence struct {
	db        *sql.DB
	logger    *slog.Logger
	templates *Repository[models.OperationTemplate]
	crops     *Repository[models.Crop]
	tasks     *Repository[models.Task]
}

// Open pings the database, migrates it and wires the repositories. The
// returned Persistence owns db.
func Open(ctx context.Context, logger *slog.Logger, db *sql.DB, dialect Dialect, migrations map[int]string) (*Persistence, error) {
	err := db.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	err = NewMigrationManager(logger, db, dialect, migrations).RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:        db,
		logger:    logger,
		templates: NewRepository(db, dialect, logger, persistence.Templates),
		crops:     NewRepository(db, dialect, logger, persistence.Crops),
		tasks:     NewRepository(db, dialect, logger, persistence.Tasks),
	}, nil
}

func (p *Persistence) TemplateRepository() persistence.TemplateRepository { return p.templates }
func (p *Persistence) CropRepository() persistence.CropRepository         { return p.crops }
func (p *Persistence) TaskRepository() persistence.TaskRepository         { return p.tasks }

// DB exposes the underlying connection pool.
func (p *Persistence) DB() *sql.DB {
	return p.db
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
