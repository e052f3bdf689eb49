package order

import (
	"fmt"
	"strings"

	"tripplanner/internal/pkg/errs"
)

// TemperatureClass is the storage regime a SKU needs during transport.
type TemperatureClass int

const (
	TemperatureUnknown TemperatureClass = iota
	TemperatureAmbient
	TemperatureRefrigerated
	TemperatureFrozen
)

var temperatureNames = map[TemperatureClass]string{
	TemperatureAmbient:      "ambient",
	TemperatureRefrigerated: "refrigerated",
	TemperatureFrozen:       "frozen",
}

// ParseTemperatureClass maps "ambient", "refrigerated" and "frozen" to a TemperatureClass.
// An empty string yields TemperatureAmbient.
func ParseTemperatureClass(s string) (TemperatureClass, error) {
	if strings.TrimSpace(s) == "" {
		return TemperatureAmbient, nil
	}
	for c, name := range temperatureNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return TemperatureUnknown, errs.NewValueIsInvalidErrorWithCause(
		"temperatureClass", fmt.Errorf("%q is not a known temperature class", s))
}

// Validate rejects TemperatureUnknown and out-of-range values.
func (c TemperatureClass) Validate() error {
	if _, ok := temperatureNames[c]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("temperatureClass", fmt.Errorf("%d is not a valid temperature class", c))
	}
	return nil
}

func (c TemperatureClass) String() string {
	if name, ok := temperatureNames[c]; ok {
		return name
	}
	return "unknown"
}
