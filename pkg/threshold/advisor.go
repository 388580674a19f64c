package threshold

import (
	"math"

	"github.com/dukex/agroops/pkg/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type parameterTexts struct {
	low, high, ok, unavailable string
	// Out-of-range severity: temperature and moisture block work, pH only
	// suggests an amendment.
	outOfRange models.Severity
}

var texts = map[models.Parameter]parameterTexts{
	models.ParameterSoilTemp: {
		low: msgTempLow, high: msgTempHigh, ok: msgTempOk, unavailable: msgTempUnavailable,
		outOfRange: models.SeverityCritical,
	},
	models.ParameterSoilMoisture: {
		low: msgMoistLow, high: msgMoistHigh, ok: msgMoistOk, unavailable: msgMoistUnavailable,
		outOfRange: models.SeverityCritical,
	},
	models.ParameterPh: {
		low: msgPhLow, high: msgPhHigh, ok: msgPhOk, unavailable: msgPhUnavailable,
		outOfRange: models.SeverityInfo,
	},
}

// Advisor generates recommendations from a reading and a profile.
type Advisor struct {
	classifier Classifier
	printer    *message.Printer
}

// NewAdvisor returns an advisor rendering messages in lang.
func NewAdvisor(classifier Classifier, lang language.Tag) *Advisor {
	return &Advisor{
		classifier: classifier,
		printer:    message.NewPrinter(lang),
	}
}

// Recommend returns one advisory per tracked parameter, always ordered
// soil temperature, soil moisture, pH.
func (a *Advisor) Recommend(reading models.FieldReading, profile models.OptimalConditionProfile) []models.Advisory {
	advisories := make([]models.Advisory, 0, len(models.Parameters))

	for _, parameter := range models.Parameters {
		value, _ := reading.Value(parameter)
		r, _ := profile.Range(parameter)

		advisories = append(advisories, a.advise(parameter, value, r))
	}

	return advisories
}

func (a *Advisor) advise(parameter models.Parameter, value float64, r models.Range) models.Advisory {
	text := texts[parameter]
	advisory := models.Advisory{
		Parameter: parameter,
		Status:    a.classifier.Classify(value, r),
		Value:     value,
		Range:     r,
	}

	switch {
	case math.IsNaN(value):
		advisory.Severity = text.outOfRange
		advisory.Message = a.printer.Sprintf(text.unavailable)
	case value < r.Min:
		advisory.Severity = text.outOfRange
		advisory.Message = a.printer.Sprintf(text.low, value, r.Min)
	case value > r.Max:
		advisory.Severity = text.outOfRange
		advisory.Message = a.printer.Sprintf(text.high, value, r.Max)
	default:
		advisory.Severity = models.SeverityOk
		advisory.Message = a.printer.Sprintf(text.ok, value, r.Min, r.Max)
	}

	return advisory
}
