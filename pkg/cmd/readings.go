package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/agroops/pkg/catalog"
	"github.com/dukex/agroops/pkg/readings"
)

// NewReadings opens the field reading feed named by readingsURL. An empty
// URL or static:// serves the readings of the catalog; redis:// and
// rediss:// read the hashes an external collector maintains.
//
//nolint:ireturn // the source is chosen at runtime
func NewReadings(ctx context.Context, logger *slog.Logger, readingsURL string, c *catalog.Catalog) (readings.Source, error) {
	scheme, _, _ := strings.Cut(readingsURL, "://")

	switch {
	case readingsURL == "" || scheme == "static":
		source, err := readings.NewStatic(c.Readings)
		if err != nil {
			return nil, err
		}

		logger.InfoContext(ctx, "Serving catalog readings", "fields", len(c.Readings))

		return source, nil
	case scheme == "redis" || scheme == "rediss":
		source, err := readings.NewRedis(ctx, logger, readingsURL)
		if err != nil {
			return nil, err
		}

		return source, nil
	default:
		return nil, fmt.Errorf("unsupported readings source: %s", readingsURL)
	}
}
