package order

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"tripplanner/internal/pkg/errs"
	"tripplanner/internal/pkg/guard"
)

// ErrSKULineIsNotConstructed is returned when a zero-value SKULine is used.
var ErrSKULineIsNotConstructed = errs.NewValueIsRequiredError("SKU line must be created via NewSKULine")

// SKULine is one stock-keeping unit on an order. Lines are never split across trips.
type SKULine struct { //nolint:recvcheck // private setters use pointer receivers
	code         string
	quantity     int
	unitWeightKg float64
	unitVolumeM3 float64
	temperature  TemperatureClass
	fragile      bool
	guard        guard.ConstructorGuard
}

// NewSKULine creates a validated line item.
//
// Parameters:
//   - code: SKU code, required
//   - quantity: number of units, must be positive
//   - unitWeightKg: weight of one unit, must be non-negative
//   - unitVolumeM3: volume of one unit, must be non-negative
//   - temperature: storage regime of the SKU
//   - fragile: whether the goods must not travel with frozen cargo
//
// Returns:
//   - SKULine: the validated line
//   - error: joined validation errors
func NewSKULine(
	code string,
	quantity int,
	unitWeightKg float64,
	unitVolumeM3 float64,
	temperature TemperatureClass,
	fragile bool,
) (SKULine, error) {
	line := SKULine{
		fragile: fragile,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		line.setCode(code),
		line.setQuantity(quantity),
		line.setUnitWeightKg(unitWeightKg),
		line.setUnitVolumeM3(unitVolumeM3),
		line.setTemperature(temperature),
	); err != nil {
		return SKULine{}, err
	}

	return line, nil
}

// Validate reports whether the line was built by NewSKULine.
func (l SKULine) Validate() error {
	return l.guard.Validate(ErrSKULineIsNotConstructed)
}

// Code returns the SKU code.
func (l SKULine) Code() string { return l.code }

// Quantity returns the number of units.
func (l SKULine) Quantity() int { return l.quantity }

// UnitWeightKg returns the weight of one unit.
func (l SKULine) UnitWeightKg() float64 { return l.unitWeightKg }

// UnitVolumeM3 returns the volume of one unit.
func (l SKULine) UnitVolumeM3() float64 { return l.unitVolumeM3 }

// Temperature returns the storage regime.
func (l SKULine) Temperature() TemperatureClass { return l.temperature }

// Fragile reports whether the goods are fragile.
func (l SKULine) Fragile() bool { return l.fragile }

// WeightKg returns quantity × unit weight.
func (l SKULine) WeightKg() float64 {
	return float64(l.quantity) * l.unitWeightKg
}

// VolumeM3 returns quantity × unit volume.
func (l SKULine) VolumeM3() float64 {
	return float64(l.quantity) * l.unitVolumeM3
}

func (l *SKULine) setCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errs.NewValueIsRequiredError("skuCode")
	}
	l.code = code
	return nil
}

func (l *SKULine) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	l.quantity = quantity
	return nil
}

func (l *SKULine) setUnitWeightKg(w float64) error {
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return errs.NewValueIsInvalidErrorWithCause("unitWeightKg", fmt.Errorf("%v is not a non-negative weight", w))
	}
	l.unitWeightKg = w
	return nil
}

func (l *SKULine) setUnitVolumeM3(v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return errs.NewValueIsInvalidErrorWithCause("unitVolumeM3", fmt.Errorf("%v is not a non-negative volume", v))
	}
	l.unitVolumeM3 = v
	return nil
}

func (l *SKULine) setTemperature(c TemperatureClass) error {
	if err := c.Validate(); err != nil {
		return err
	}
	l.temperature = c
	return nil
}
