package route

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/pkg/errs"
)

// ErrRouteIsNotConstructed is returned when a Route was not created via NewRoute or RestoreRoute.
var ErrRouteIsNotConstructed = errors.New("Route must be created via NewRoute constructor")

// InitialVersion is the version of a freshly constructed route.
const InitialVersion int64 = 1

// Route is the ordered delivery plan of one trip group.
//
// Route follows these invariants:
//   - at least one waypoint, each order visited exactly once
//   - waypoint sequences are 1..N in slice order
//   - optimization score lies in [0, 1]
//   - version starts at InitialVersion and grows by one per revision
type Route struct {
	id                     kernel.UUID
	tripGroupID            kernel.UUID
	origin                 kernel.Location
	departAt               time.Time
	waypoints              []Waypoint
	totalDistanceKm        float64
	estimatedDurationHours float64
	optimizationScore      float64
	constraintsSatisfied   bool
	violations             []Violation
	iterationCapHit        bool
	version                int64

	isConstructed bool
}

// State is the flat form of a Route used by adapters to rebuild it.
type State struct {
	ID                     kernel.UUID
	TripGroupID            kernel.UUID
	Origin                 kernel.Location
	DepartAt               time.Time
	Waypoints              []Waypoint
	TotalDistanceKm        float64
	EstimatedDurationHours float64
	OptimizationScore      float64
	ConstraintsSatisfied   bool
	Violations             []Violation
	IterationCapHit        bool
	Version                int64
}

// NewRoute creates a route visiting waypoints in the given order. Sequences are
// assigned from 1 and metrics start at zero until the caller revises them.
//
// Parameters:
//   - id: route identifier
//   - tripGroupID: the trip group the route serves
//   - origin: manufacturing origin, the fixed tour start
//   - departAt: departure instant used for arrival estimates
//   - waypoints: stops in visit order, each order at most once
//
// Returns:
//   - *Route: a route at InitialVersion
//   - error: joined validation errors
func NewRoute(
	id kernel.UUID,
	tripGroupID kernel.UUID,
	origin kernel.Location,
	departAt time.Time,
	waypoints []Waypoint,
) (*Route, error) {
	return RestoreRoute(State{
		ID:                   id,
		TripGroupID:          tripGroupID,
		Origin:               origin,
		DepartAt:             departAt,
		Waypoints:            waypoints,
		ConstraintsSatisfied: true,
		Version:              InitialVersion,
	})
}

// RestoreRoute rebuilds a route, e.g. from persistence. Waypoints must already be
// ordered by sequence; they are renumbered 1..N.
func RestoreRoute(s State) (*Route, error) {
	var departErr error
	if s.DepartAt.IsZero() {
		departErr = errs.NewValueIsRequiredError("departAt")
	}
	var versionErr error
	if s.Version < InitialVersion {
		versionErr = errs.NewValueIsOutOfRangeError("version", s.Version, InitialVersion, "∞")
	}

	if err := errors.Join(
		s.ID.Validate(),
		s.TripGroupID.Validate(),
		s.Origin.Validate(),
		departErr,
		versionErr,
	); err != nil {
		return nil, err
	}

	r := &Route{
		id:                     s.ID,
		tripGroupID:            s.TripGroupID,
		origin:                 s.Origin,
		departAt:               s.DepartAt,
		totalDistanceKm:        s.TotalDistanceKm,
		estimatedDurationHours: s.EstimatedDurationHours,
		constraintsSatisfied:   s.ConstraintsSatisfied,
		violations:             cloneViolations(s.Violations),
		iterationCapHit:        s.IterationCapHit,
		version:                s.Version,
		isConstructed:          true,
	}
	if err := errors.Join(r.setWaypoints(s.Waypoints), r.setScore(s.OptimizationScore)); err != nil {
		return nil, err
	}

	return r, nil
}

// Revision changes one aspect of a route copy inside Revise.
type Revision func(r *Route) error

// Revise applies revisions to a copy of the route and returns it with the
// version incremented by one. The receiver is never modified.
//
// Example:
//
//	improved, err := r.Revise(
//	    route.WithSequence(ids),
//	    route.WithMetrics(distanceKm, durationHours),
//	)
func (r *Route) Revise(revisions ...Revision) (*Route, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	next := r.clone()
	for _, revise := range revisions {
		if err := revise(next); err != nil {
			return nil, err
		}
	}
	next.version = r.version + 1

	return next, nil
}

// WithSequence reorders the waypoints to follow orderIDs, which must be a
// permutation of the current order ids. Sequences are renumbered.
func WithSequence(orderIDs []kernel.UUID) Revision {
	return func(r *Route) error {
		if len(orderIDs) != len(r.waypoints) {
			return errs.NewValueIsInvalidErrorWithCause("sequence",
				fmt.Errorf("got %d stops, route has %d", len(orderIDs), len(r.waypoints)))
		}

		byID := make(map[kernel.UUID]Waypoint, len(r.waypoints))
		for _, w := range r.waypoints {
			byID[w.orderID] = w
		}

		reordered := make([]Waypoint, 0, len(orderIDs))
		for _, id := range orderIDs {
			w, ok := byID[id]
			if !ok {
				return errs.NewValueIsInvalidErrorWithCause("sequence",
					fmt.Errorf("order %s is missing or repeated", id))
			}
			delete(byID, id)
			reordered = append(reordered, w)
		}

		return r.setWaypoints(reordered)
	}
}

// WithMetrics sets total distance and estimated duration.
func WithMetrics(distanceKm float64, durationHours float64) Revision {
	return func(r *Route) error {
		if distanceKm < 0 || durationHours < 0 {
			return errs.NewValueIsInvalidError("metrics")
		}
		r.totalDistanceKm = distanceKm
		r.estimatedDurationHours = durationHours
		return nil
	}
}

// WithScore sets the optimization score, which must lie in [0, 1].
func WithScore(score float64) Revision {
	return func(r *Route) error {
		return r.setScore(score)
	}
}

// WithIterationCapHit records whether the improver stopped at its move budget.
func WithIterationCapHit(hit bool) Revision {
	return func(r *Route) error {
		r.iterationCapHit = hit
		return nil
	}
}

// WithCompliance stores the validator's verdict.
func WithCompliance(satisfied bool, violations []Violation) Revision {
	return func(r *Route) error {
		r.constraintsSatisfied = satisfied
		r.violations = cloneViolations(violations)
		return nil
	}
}

// WithArrivals sets the estimated arrival of every listed stop.
func WithArrivals(arrivals map[kernel.UUID]time.Time) Revision {
	return func(r *Route) error {
		for i := range r.waypoints {
			if eta, ok := arrivals[r.waypoints[i].orderID]; ok {
				r.waypoints[i].eta = &eta
			}
		}
		return nil
	}
}

// WithWindow replaces the effective window of one stop.
func WithWindow(orderID kernel.UUID, window kernel.TimeWindow) Revision {
	return func(r *Route) error {
		if err := window.Validate(); err != nil {
			return err
		}
		i, err := r.indexOf(orderID)
		if err != nil {
			return err
		}
		r.waypoints[i].window = &window
		return nil
	}
}

// WithDeliveryStatus changes the progress of one stop. Delivered stops are final.
func WithDeliveryStatus(orderID kernel.UUID, status DeliveryStatus) Revision {
	return func(r *Route) error {
		if err := status.Validate(); err != nil {
			return err
		}
		i, err := r.indexOf(orderID)
		if err != nil {
			return err
		}
		if r.waypoints[i].status == StatusDelivered && status != StatusDelivered {
			return errs.NewValueIsInvalidErrorWithCause("deliveryStatus",
				fmt.Errorf("order %s is already delivered", orderID))
		}
		r.waypoints[i].status = status
		return nil
	}
}

// WithComplianceCheck evaluates check against the revised copy, after every
// earlier revision was applied, and stores its verdict.
func WithComplianceCheck(check func(r *Route) (bool, []Violation)) Revision {
	return func(r *Route) error {
		satisfied, violations := check(r)
		r.constraintsSatisfied = satisfied
		r.violations = cloneViolations(violations)
		return nil
	}
}

// Validate reports whether the route was built through a constructor.
func (r *Route) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRouteIsNotConstructed
	}
	return nil
}

// State returns the flat form of the route.
func (r *Route) State() State {
	return State{
		ID:                     r.id,
		TripGroupID:            r.tripGroupID,
		Origin:                 r.origin,
		DepartAt:               r.departAt,
		Waypoints:              r.Waypoints(),
		TotalDistanceKm:        r.totalDistanceKm,
		EstimatedDurationHours: r.estimatedDurationHours,
		OptimizationScore:      r.optimizationScore,
		ConstraintsSatisfied:   r.constraintsSatisfied,
		Violations:             r.Violations(),
		IterationCapHit:        r.iterationCapHit,
		Version:                r.version,
	}
}

// ID returns the route identifier.
func (r *Route) ID() kernel.UUID { return r.id }

// TripGroupID returns the trip group the route serves.
func (r *Route) TripGroupID() kernel.UUID { return r.tripGroupID }

// Origin returns the fixed tour start.
func (r *Route) Origin() kernel.Location { return r.origin }

// DepartAt returns the departure instant.
func (r *Route) DepartAt() time.Time { return r.departAt }

// Waypoints returns a copy of the stops in visit order.
func (r *Route) Waypoints() []Waypoint { return slices.Clone(r.waypoints) }

// Waypoint returns the stop for orderID.
func (r *Route) Waypoint(orderID kernel.UUID) (Waypoint, bool) {
	i, err := r.indexOf(orderID)
	if err != nil {
		return Waypoint{}, false
	}
	return r.waypoints[i], true
}

// OrderIDs returns the order ids in visit order.
func (r *Route) OrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(r.waypoints))
	for _, w := range r.waypoints {
		ids = append(ids, w.orderID)
	}
	return ids
}

// StopCount returns the number of waypoints.
func (r *Route) StopCount() int { return len(r.waypoints) }

// TotalDistanceKm returns the tour length.
func (r *Route) TotalDistanceKm() float64 { return r.totalDistanceKm }

// EstimatedDurationHours returns driving plus service time.
func (r *Route) EstimatedDurationHours() float64 { return r.estimatedDurationHours }

// OptimizationScore returns 1 - final/initial distance of the last improvement.
func (r *Route) OptimizationScore() float64 { return r.optimizationScore }

// ConstraintsSatisfied reports the last validator verdict.
func (r *Route) ConstraintsSatisfied() bool { return r.constraintsSatisfied }

// Violations returns a copy of the last validator findings.
func (r *Route) Violations() []Violation { return cloneViolations(r.violations) }

// IterationCapHit reports whether the last improvement ran out of move budget.
func (r *Route) IterationCapHit() bool { return r.iterationCapHit }

// Version returns the optimistic-concurrency counter.
func (r *Route) Version() int64 { return r.version }

// WeightKg returns the total load of all stops.
func (r *Route) WeightKg() float64 {
	total := 0.0
	for _, w := range r.waypoints {
		total += w.weightKg
	}
	return total
}

// VolumeM3 returns the total volume of all stops.
func (r *Route) VolumeM3() float64 {
	total := 0.0
	for _, w := range r.waypoints {
		total += w.volumeM3
	}
	return total
}

// TemperatureClasses returns the distinct classes carried on the route, ascending.
func (r *Route) TemperatureClasses() []order.TemperatureClass {
	classes := make([]order.TemperatureClass, 0, 3)
	for _, w := range r.waypoints {
		for _, c := range w.temperatureClasses {
			if !slices.Contains(classes, c) {
				classes = append(classes, c)
			}
		}
	}
	slices.Sort(classes)
	return classes
}

func (r *Route) indexOf(orderID kernel.UUID) (int, error) {
	for i, w := range r.waypoints {
		if w.orderID.IsEqual(orderID) {
			return i, nil
		}
	}
	return -1, errs.NewObjectNotFoundError("waypoint", orderID.String())
}

func (r *Route) clone() *Route {
	c := *r
	c.waypoints = slices.Clone(r.waypoints)
	c.violations = cloneViolations(r.violations)
	return &c
}

func (r *Route) setWaypoints(waypoints []Waypoint) error {
	if len(waypoints) == 0 {
		return errs.NewValueIsRequiredError("waypoints")
	}

	seen := make(map[kernel.UUID]struct{}, len(waypoints))
	numbered := make([]Waypoint, len(waypoints))
	for i, w := range waypoints {
		if err := w.Validate(); err != nil {
			return err
		}
		if _, dup := seen[w.orderID]; dup {
			return errs.NewValueIsInvalidErrorWithCause("waypoints",
				fmt.Errorf("order %s appears more than once", w.orderID))
		}
		seen[w.orderID] = struct{}{}
		w.sequence = i + 1
		numbered[i] = w
	}

	r.waypoints = numbered
	return nil
}

func (r *Route) setScore(score float64) error {
	if score < 0 || score > 1 || math.IsNaN(score) {
		return errs.NewValueIsOutOfRangeError("optimizationScore", score, 0, 1)
	}
	r.optimizationScore = score
	return nil
}

func cloneViolations(violations []Violation) []Violation {
	if violations == nil {
		return nil
	}
	out := make([]Violation, len(violations))
	for i, v := range violations {
		v.OrderIDs = slices.Clone(v.OrderIDs)
		out[i] = v
	}
	return out
}
