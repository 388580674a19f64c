// Package evaluation runs the threshold engine for a field and a crop kind,
// and drives the task draft flow that leads to it.
package evaluation

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/otelhelper"
	"github.com/dukex/agroops/pkg/readings"
	"github.com/dukex/agroops/pkg/threshold"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dukex/agroops/pkg/evaluation"

// Profiles resolves the optimal condition profile of a crop kind.
type Profiles interface {
	Get(kind string) (models.OptimalConditionProfile, error)
}

// Diagnostics is the evaluated state of one field for one crop kind.
type Diagnostics struct {
	FieldID     string              `json:"field_id"`
	FieldName   string              `json:"field_name"`
	CropKind    string              `json:"crop_kind"`
	ProfileName string              `json:"profile_name"`
	Reading     models.FieldReading `json:"reading"`
	Advisories  []models.Advisory   `json:"advisories"`
	Blocking    bool                `json:"blocking"`
	EvaluatedAt time.Time           `json:"evaluated_at"`
}

// Critical returns the advisories that block work.
func (d *Diagnostics) Critical() []models.Advisory {
	critical := make([]models.Advisory, 0, len(d.Advisories))

	for _, advisory := range d.Advisories {
		if advisory.Severity == models.SeverityCritical {
			critical = append(critical, advisory)
		}
	}

	return critical
}

// Evaluator pulls the current reading of a field and compares it with the
// profile of a crop kind.
type Evaluator struct {
	readings readings.Source
	profiles Profiles
	advisor  *threshold.Advisor
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewEvaluator creates an evaluator.
func NewEvaluator(source readings.Source, profiles Profiles, advisor *threshold.Advisor, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		readings: source,
		profiles: profiles,
		advisor:  advisor,
		logger:   logger.With("module", "evaluator"),
		tracer:   otelhelper.Tracer(tracerName),
		now:      time.Now,
	}
}

// Profile returns the profile of a crop kind or models.ErrProfileNotFound.
func (e *Evaluator) Profile(kind string) (models.OptimalConditionProfile, error) {
	return e.profiles.Get(kind)
}

// Reading returns the current reading of a field or readings.ErrReadingNotFound.
func (e *Evaluator) Reading(ctx context.Context, fieldID string) (models.FieldReading, error) {
	return e.readings.Get(ctx, fieldID)
}

// ListAdvisories returns the advisories of fieldID's current reading against
// cropKind's profile, ordered soil temperature, soil moisture, pH.
func (e *Evaluator) ListAdvisories(ctx context.Context, fieldID, cropKind string) (*Diagnostics, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "evaluation.list_advisories",
		attribute.String(otelhelper.FieldKey, fieldID), attribute.String(otelhelper.CropKindKey, cropKind))
	defer span.End()

	profile, err := e.profiles.Get(cropKind)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	reading, err := e.readings.Get(ctx, fieldID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	diagnostics := &Diagnostics{
		FieldID:     fieldID,
		FieldName:   reading.Name,
		CropKind:    cropKind,
		ProfileName: profile.Name,
		Reading:     reading,
		Advisories:  e.advisor.Recommend(reading, profile),
		EvaluatedAt: e.now().UTC(),
	}
	diagnostics.Blocking = len(diagnostics.Critical()) > 0

	span.SetAttributes(attribute.Bool("agroops.blocking", diagnostics.Blocking))
	e.logger.DebugContext(ctx, "Field evaluated", "field", fieldID, "crop_kind", cropKind, "blocking", diagnostics.Blocking)

	return diagnostics, nil
}
