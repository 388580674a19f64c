package threshold

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dukex/agroops/pkg/models"
)

// ParseValue converts a free-text field value into a finite number. A single
// decimal comma is accepted since values are typed by hand.
func ParseValue(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("%w: value is empty", models.ErrValidationFailed)
	}

	if strings.Count(value, ",") == 1 && !strings.Contains(value, ".") {
		value = strings.Replace(value, ",", ".", 1)
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", models.ErrValidationFailed, raw)
	}

	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", models.ErrValidationFailed, raw)
	}

	return parsed, nil
}
