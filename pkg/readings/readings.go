// Package readings provides the field reading feed: the latest soil sensor
// snapshot per physical field, pulled on demand.
package readings

import (
	"context"
	"fmt"

	"github.com/dukex/agroops/pkg/models"
)

// ErrReadingNotFound indicates no reading is known for a field id.
var ErrReadingNotFound = fmt.Errorf("field reading %w", models.ErrNotFound)

// Source returns field readings.
type Source interface {
	Get(ctx context.Context, fieldID string) (models.FieldReading, error)
	List(ctx context.Context) ([]models.FieldReading, error)
	HealthCheck(ctx context.Context) error
	Close() error
}
