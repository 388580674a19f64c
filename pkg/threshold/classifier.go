// Package threshold classifies readings against optimal ranges and turns the
// outcome into advisories.
package threshold

import (
	"math"

	"github.com/dukex/agroops/pkg/models"
)

// DefaultBandRatio is the share of a range's span, on either side of the
// optimal point, that still counts as optimal.
const DefaultBandRatio = 0.2

// Classifier maps a reading and a range to a status.
type Classifier struct {
	BandRatio float64
}

// NewClassifier returns a classifier with the default optimal band.
func NewClassifier() Classifier {
	return Classifier{BandRatio: DefaultBandRatio}
}

// Classify returns Critical outside [min, max], Optimal within the band
// around the optimal point and Acceptable otherwise. NaN in the reading or
// the range is Critical: comparisons against NaN are always false and would
// otherwise fall through to Acceptable.
func (c Classifier) Classify(current float64, r models.Range) models.Status {
	if math.IsNaN(current) || math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsNaN(r.Optimal) {
		return models.StatusCritical
	}

	if current < r.Min || current > r.Max {
		return models.StatusCritical
	}

	band := c.BandRatio * r.Span()
	if math.Abs(current-r.Optimal) <= band {
		return models.StatusOptimal
	}

	return models.StatusAcceptable
}

// Classify uses the default band.
func Classify(current float64, r models.Range) models.Status {
	return NewClassifier().Classify(current, r)
}
