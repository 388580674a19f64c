package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dukex/agroops/pkg/persistence"
	"github.com/dukex/agroops/pkg/persistence/file"
	"github.com/dukex/agroops/pkg/persistence/memory"
	"github.com/dukex/agroops/pkg/persistence/postgresql"
	"github.com/dukex/agroops/pkg/persistence/sqlite"
)

var supportedPersistenceProviders = []string{"memory", "file", "postgres", "postgresql", "sqlite"}

// NewPersistence opens the storage backend named by the scheme of
// databaseURL. An empty URL selects the in-memory store; a URL without a
// known scheme is a directory for the file store.
//
//nolint:ireturn // the backend is chosen at runtime
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	provider := parsePersistenceProvider(databaseURL)

	logger.InfoContext(ctx, "Opening persistence", "provider", provider)

	switch provider {
	case "memory":
		return memory.NewPersistence(), nil
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, err
		}

		return p, nil
	case "sqlite":
		p, err := sqlite.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, err
		}

		return p, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	if databaseURL == "" {
		return "memory"
	}

	parts := strings.Split(databaseURL, "://")
	if len(parts) < 2 {
		return "file"
	}

	provider := parts[0]
	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
