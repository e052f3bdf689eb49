package services

import (
	"fmt"
	"slices"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/model/trip"
)

// Compliance is the verdict of the ConstraintValidator.
type Compliance struct {
	Satisfied  bool
	Violations []route.Violation
}

// ConstraintValidator checks a route against the parameters and reports
// violations as data. It never blocks a route.
//
// Checks:
//   - stop count against MaxDeliveryStops
//   - estimated duration against MaxTripDurationHours
//   - load against MaxTripWeightKg and MaxTripVolumeM3
//   - more than one temperature class on board
//   - fragile goods travelling with frozen goods
//   - time-window conflicts between consecutive stops
type ConstraintValidator struct{}

// NewConstraintValidator creates a ConstraintValidator.
func NewConstraintValidator() ConstraintValidator {
	return ConstraintValidator{}
}

// Check evaluates r. Satisfied is true when no violation was found.
func (v ConstraintValidator) Check(r *route.Route, params trip.OptimizationParameters) Compliance {
	var violations []route.Violation

	if r.StopCount() > params.MaxDeliveryStops {
		violations = append(violations, route.Violation{
			Kind:    route.ViolationStopCount,
			Message: fmt.Sprintf("%d stops exceed the limit of %d", r.StopCount(), params.MaxDeliveryStops),
		})
	}
	if r.EstimatedDurationHours() > params.MaxTripDurationHours {
		violations = append(violations, route.Violation{
			Kind: route.ViolationDuration,
			Message: fmt.Sprintf("estimated %.2f h exceeds the limit of %.2f h",
				r.EstimatedDurationHours(), params.MaxTripDurationHours),
		})
	}
	if r.WeightKg() > params.MaxTripWeightKg {
		violations = append(violations, route.Violation{
			Kind:    route.ViolationWeight,
			Message: fmt.Sprintf("load %.2f kg exceeds capacity %.2f kg", r.WeightKg(), params.MaxTripWeightKg),
		})
	}
	if r.VolumeM3() > params.MaxTripVolumeM3 {
		violations = append(violations, route.Violation{
			Kind:    route.ViolationVolume,
			Message: fmt.Sprintf("load %.3f m3 exceeds capacity %.3f m3", r.VolumeM3(), params.MaxTripVolumeM3),
		})
	}

	violations = append(violations, v.checkTemperature(r)...)

	for _, c := range detectConflicts(r.Waypoints(), params) {
		violations = append(violations, route.Violation{
			Kind: route.ViolationTimeWindow,
			Message: fmt.Sprintf("stop %d window starts %s too early after stop %d",
				c.FirstSequence+1, c.Shortfall, c.FirstSequence),
			OrderIDs: []kernel.UUID{c.FirstOrderID, c.SecondOrderID},
		})
	}

	return Compliance{
		Satisfied:  len(violations) == 0,
		Violations: violations,
	}
}

// Revision returns a route revision that stores the verdict for the revised route.
func (v ConstraintValidator) Revision(params trip.OptimizationParameters) route.Revision {
	return route.WithComplianceCheck(func(r *route.Route) (bool, []route.Violation) {
		c := v.Check(r, params)
		return c.Satisfied, c.Violations
	})
}

func (v ConstraintValidator) checkTemperature(r *route.Route) []route.Violation {
	var violations []route.Violation
	stops := r.Waypoints()

	if classes := r.TemperatureClasses(); len(classes) > 1 {
		dominant := dominantClass(stops)
		var ids []kernel.UUID
		for _, w := range stops {
			if slices.ContainsFunc(w.TemperatureClasses(), func(c order.TemperatureClass) bool { return c != dominant }) {
				ids = append(ids, w.OrderID())
			}
		}
		violations = append(violations, route.Violation{
			Kind:     route.ViolationTemperatureMix,
			Message:  fmt.Sprintf("route mixes temperature classes %v", classes),
			OrderIDs: ids,
		})
	}

	if slices.Contains(r.TemperatureClasses(), order.TemperatureFrozen) {
		var ids []kernel.UUID
		for _, w := range stops {
			if w.Fragile() {
				ids = append(ids, w.OrderID())
			}
		}
		if len(ids) > 0 {
			violations = append(violations, route.Violation{
				Kind:     route.ViolationFragileWithFrozen,
				Message:  fmt.Sprintf("%d stops carry fragile goods next to frozen cargo", len(ids)),
				OrderIDs: ids,
			})
		}
	}

	return violations
}

// dominantClass is the class carried by most stops, ties to the lower class.
func dominantClass(stops []route.Waypoint) order.TemperatureClass {
	counts := make(map[order.TemperatureClass]int)
	for _, w := range stops {
		for _, c := range w.TemperatureClasses() {
			counts[c]++
		}
	}

	best := order.TemperatureUnknown
	for _, c := range []order.TemperatureClass{order.TemperatureAmbient, order.TemperatureRefrigerated, order.TemperatureFrozen} {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}
