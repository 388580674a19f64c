package models

import (
	"fmt"
	"math"
)

// Parameter names an environmental parameter tracked by a profile.
type Parameter string

const (
	ParameterSoilTemp     Parameter = "soil_temp"
	ParameterSoilMoisture Parameter = "soil_moisture"
	ParameterPh           Parameter = "ph"
)

// Parameters lists the tracked parameters in evaluation order.
var Parameters = []Parameter{ParameterSoilTemp, ParameterSoilMoisture, ParameterPh}

// Range is a min/max window with an optimal point inside it.
type Range struct {
	Min     float64 `json:"min"     yaml:"min"`
	Max     float64 `json:"max"     yaml:"max"`
	Optimal float64 `json:"optimal" yaml:"optimal"`
}

// Span returns max - min.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Validate enforces min <= optimal <= max over finite numbers.
func (r Range) Validate() error {
	for _, v := range []float64{r.Min, r.Max, r.Optimal} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: range bounds must be finite", ErrValidationFailed)
		}
	}

	if r.Min > r.Optimal || r.Optimal > r.Max {
		return fmt.Errorf("%w: range requires min <= optimal <= max, got %v <= %v <= %v",
			ErrValidationFailed, r.Min, r.Optimal, r.Max)
	}

	return nil
}

// OptimalConditionProfile holds the reference ranges for one crop kind.
type OptimalConditionProfile struct {
	Kind         string `json:"kind"          yaml:"kind"          validate:"required"`
	Name         string `json:"name"          yaml:"name"`
	SoilTemp     Range  `json:"soil_temp"     yaml:"soil_temp"`
	SoilMoisture Range  `json:"soil_moisture" yaml:"soil_moisture"`
	Ph           Range  `json:"ph"            yaml:"ph"`
	Description  string `json:"description"   yaml:"description"`
}

// Range returns the range for a tracked parameter.
func (p OptimalConditionProfile) Range(parameter Parameter) (Range, bool) {
	switch parameter {
	case ParameterSoilTemp:
		return p.SoilTemp, true
	case ParameterSoilMoisture:
		return p.SoilMoisture, true
	case ParameterPh:
		return p.Ph, true
	default:
		return Range{}, false
	}
}

// Validate checks every range of the profile.
func (p OptimalConditionProfile) Validate() error {
	if p.Kind == "" {
		return fmt.Errorf("%w: profile kind is required", ErrValidationFailed)
	}

	for _, parameter := range Parameters {
		r, _ := p.Range(parameter)
		if err := r.Validate(); err != nil {
			return fmt.Errorf("profile %s %s: %w", p.Kind, parameter, err)
		}
	}

	return nil
}

// Value returns the reading value for a tracked parameter.
func (r FieldReading) Value(parameter Parameter) (float64, bool) {
	switch parameter {
	case ParameterSoilTemp:
		return r.CurrentTemp, true
	case ParameterSoilMoisture:
		return r.CurrentMoisture, true
	case ParameterPh:
		return r.CurrentPh, true
	default:
		return 0, false
	}
}
