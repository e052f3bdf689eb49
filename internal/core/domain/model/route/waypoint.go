package route

import (
	"errors"
	"slices"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/pkg/errs"
	"tripplanner/internal/pkg/guard"
)

// ErrWaypointIsNotConstructed is returned when a zero-value Waypoint is used.
var ErrWaypointIsNotConstructed = errs.NewValueIsRequiredError(
	"waypoint must be created via NewWaypointFromOrder or RestoreWaypoint")

// Waypoint is one stop of a route. Besides the position it carries the order
// attributes the validator and conflict resolver need, so a persisted route can
// be checked without reloading its orders.
type Waypoint struct {
	orderID            kernel.UUID
	location           kernel.Location
	sequence           int
	status             DeliveryStatus
	eta                *time.Time
	window             *kernel.TimeWindow
	priority           order.Priority
	temperatureClasses []order.TemperatureClass
	fragile            bool
	weightKg           float64
	volumeM3           float64
	guard              guard.ConstructorGuard
}

// WaypointState is the flat form of a Waypoint used by adapters to rebuild it.
type WaypointState struct {
	OrderID            kernel.UUID
	Location           kernel.Location
	Sequence           int
	Status             DeliveryStatus
	EstimatedArrival   *time.Time
	Window             *kernel.TimeWindow
	Priority           order.Priority
	TemperatureClasses []order.TemperatureClass
	Fragile            bool
	WeightKg           float64
	VolumeM3           float64
}

// NewWaypointFromOrder creates a scheduled, not yet sequenced stop for o.
func NewWaypointFromOrder(o *order.Order) (Waypoint, error) {
	if err := o.Validate(); err != nil {
		return Waypoint{}, err
	}

	return RestoreWaypoint(WaypointState{
		OrderID:            o.ID(),
		Location:           o.Destination(),
		Status:             StatusScheduled,
		Window:             o.Window(),
		Priority:           o.Priority(),
		TemperatureClasses: o.TemperatureClasses(),
		Fragile:            o.HasFragile(),
		WeightKg:           o.WeightKg(),
		VolumeM3:           o.VolumeM3(),
	})
}

// RestoreWaypoint rebuilds a waypoint from its flat state.
// Sequence is not checked here; the owning Route renumbers and verifies it.
func RestoreWaypoint(s WaypointState) (Waypoint, error) {
	var windowErr error
	if s.Window != nil {
		windowErr = s.Window.Validate()
	}
	var loadErr error
	if s.WeightKg < 0 || s.VolumeM3 < 0 {
		loadErr = errs.NewValueIsInvalidError("waypointLoad")
	}

	if err := errors.Join(
		s.OrderID.Validate(),
		s.Location.Validate(),
		s.Status.Validate(),
		s.Priority.Validate(),
		windowErr,
		loadErr,
	); err != nil {
		return Waypoint{}, err
	}

	w := Waypoint{
		orderID:            s.OrderID,
		location:           s.Location,
		sequence:           s.Sequence,
		status:             s.Status,
		priority:           s.Priority,
		temperatureClasses: slices.Clone(s.TemperatureClasses),
		fragile:            s.Fragile,
		weightKg:           s.WeightKg,
		volumeM3:           s.VolumeM3,
		guard:              guard.NewConstructorGuard(),
	}
	if s.EstimatedArrival != nil {
		eta := *s.EstimatedArrival
		w.eta = &eta
	}
	if s.Window != nil {
		win := *s.Window
		w.window = &win
	}

	return w, nil
}

// Validate reports whether the waypoint was built by a constructor.
func (w Waypoint) Validate() error {
	return w.guard.Validate(ErrWaypointIsNotConstructed)
}

// State returns the flat form of the waypoint.
func (w Waypoint) State() WaypointState {
	return WaypointState{
		OrderID:            w.orderID,
		Location:           w.location,
		Sequence:           w.sequence,
		Status:             w.status,
		EstimatedArrival:   w.EstimatedArrival(),
		Window:             w.Window(),
		Priority:           w.priority,
		TemperatureClasses: w.TemperatureClasses(),
		Fragile:            w.fragile,
		WeightKg:           w.weightKg,
		VolumeM3:           w.volumeM3,
	}
}

// OrderID returns the order delivered at this stop.
func (w Waypoint) OrderID() kernel.UUID { return w.orderID }

// Location returns the stop coordinates.
func (w Waypoint) Location() kernel.Location { return w.location }

// Sequence returns the 1-based visit position.
func (w Waypoint) Sequence() int { return w.sequence }

// Status returns the delivery progress.
func (w Waypoint) Status() DeliveryStatus { return w.status }

// Priority returns the order's window strictness.
func (w Waypoint) Priority() order.Priority { return w.priority }

// Fragile reports whether the stop carries fragile goods.
func (w Waypoint) Fragile() bool { return w.fragile }

// WeightKg returns the load delivered at this stop.
func (w Waypoint) WeightKg() float64 { return w.weightKg }

// VolumeM3 returns the volume delivered at this stop.
func (w Waypoint) VolumeM3() float64 { return w.volumeM3 }

// TemperatureClasses returns a copy of the stop's temperature classes.
func (w Waypoint) TemperatureClasses() []order.TemperatureClass {
	return slices.Clone(w.temperatureClasses)
}

// EstimatedArrival returns a copy of the derived ETA, or nil.
func (w Waypoint) EstimatedArrival() *time.Time {
	if w.eta == nil {
		return nil
	}
	eta := *w.eta
	return &eta
}

// Window returns a copy of the effective delivery window, or nil.
func (w Waypoint) Window() *kernel.TimeWindow {
	if w.window == nil {
		return nil
	}
	win := *w.window
	return &win
}
