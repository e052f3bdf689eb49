package services

import (
	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/pkg/errs"
)

// RouteConstructor builds the initial route of a trip group with the
// nearest-neighbour heuristic: starting at the origin it repeatedly visits the
// closest unvisited destination. Equal distances go to the lower order id.
type RouteConstructor struct {
	validator ConstraintValidator
}

// NewRouteConstructor creates a RouteConstructor.
func NewRouteConstructor() RouteConstructor {
	return RouteConstructor{validator: NewConstraintValidator()}
}

// Construct returns a route at route.InitialVersion covering every order of group
// exactly once, with distance, duration, arrival estimates and compliance filled in.
func (c RouteConstructor) Construct(
	group *trip.TripGroup,
	origin kernel.Location,
	params trip.OptimizationParameters,
) (*route.Route, error) {
	if err := group.Validate(); err != nil {
		return nil, err
	}
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, errs.NewInfeasibleInputErrorWithCause("params", "invalid optimization parameters", err)
	}

	stops := make([]route.Waypoint, 0, group.StopCount())
	for _, o := range group.Orders() {
		w, err := route.NewWaypointFromOrder(o)
		if err != nil {
			return nil, err
		}
		stops = append(stops, w)
	}

	t := newTour(origin, stops)
	seq := c.nearestNeighbour(t)
	distance := t.length(seq, params.ReturnToOrigin)
	arrivals := t.arrivals(seq, params.DepartAt, params)

	ordered := make([]route.Waypoint, 0, len(seq))
	for _, s := range seq {
		state := stops[s].State()
		eta := arrivals[state.OrderID]
		state.EstimatedArrival = &eta
		w, err := route.RestoreWaypoint(state)
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, w)
	}

	draft, err := route.RestoreRoute(route.State{
		ID:                     kernel.NewUUID(),
		TripGroupID:            group.ID(),
		Origin:                 origin,
		DepartAt:               params.DepartAt,
		Waypoints:              ordered,
		TotalDistanceKm:        distance,
		EstimatedDurationHours: params.DurationHours(distance, len(seq)),
		ConstraintsSatisfied:   true,
		Version:                route.InitialVersion,
	})
	if err != nil {
		return nil, err
	}

	compliance := c.validator.Check(draft, params)
	state := draft.State()
	state.ConstraintsSatisfied = compliance.Satisfied
	state.Violations = compliance.Violations

	return route.RestoreRoute(state)
}

func (c RouteConstructor) nearestNeighbour(t tour) []int {
	visited := make([]bool, len(t.stops))
	seq := make([]int, 0, len(t.stops))
	current := -1

	for range t.stops {
		next := -1
		for i := range t.stops {
			if visited[i] {
				continue
			}
			if next < 0 || c.closer(t, current, i, next) {
				next = i
			}
		}
		visited[next] = true
		seq = append(seq, next)
		current = next
	}

	return seq
}

// closer reports whether candidate beats best as the next stop after current.
func (c RouteConstructor) closer(t tour, current, candidate, best int) bool {
	dc := t.leg(current, candidate)
	db := t.leg(current, best)
	if dc < db-improvementEpsilon {
		return true
	}
	if dc > db+improvementEpsilon {
		return false
	}
	return t.stops[candidate].OrderID().Compare(t.stops[best].OrderID()) < 0
}
