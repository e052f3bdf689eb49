package services

import (
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/pkg/errs"
)

// RouteImprover applies classic 2-opt to a route. The origin is the fixed tour
// start, and delivered or in-transit stops leading the route stay where they are.
// Only strictly shorter tours are accepted and at most stop_count² reversals are
// applied; when that budget runs out the best tour so far is returned with
// IterationCapHit set.
type RouteImprover struct {
	validator ConstraintValidator
}

// NewRouteImprover creates a RouteImprover.
func NewRouteImprover() RouteImprover {
	return RouteImprover{validator: NewConstraintValidator()}
}

// Improve returns a new route whose total distance is never greater than the input's.
// Distance, duration, arrivals, score and compliance are recomputed; the score is
// 1 - final/initial distance clamped to [0, 1].
func (i RouteImprover) Improve(r *route.Route, params trip.OptimizationParameters) (*route.Route, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, errs.NewInfeasibleInputErrorWithCause("params", "invalid optimization parameters", err)
	}

	stops := r.Waypoints()
	t := newTour(r.Origin(), stops)
	seq := t.identity()

	initial := t.length(seq, params.ReturnToOrigin)
	cost := func(s []int) float64 { return t.length(s, params.ReturnToOrigin) }
	_, capHit := twoOpt(seq, leadingFixed(stops), cost, moveBudget(len(stops)))
	final := t.length(seq, params.ReturnToOrigin)

	return r.Revise(
		route.WithSequence(t.orderIDs(seq)),
		route.WithMetrics(final, params.DurationHours(final, len(seq))),
		route.WithArrivals(t.arrivals(seq, r.DepartAt(), params)),
		route.WithScore(clampScore(initial, final)),
		route.WithIterationCapHit(capHit),
		i.validator.Revision(params),
	)
}

// leadingFixed counts the delivered or in-transit stops at the head of the route.
func leadingFixed(stops []route.Waypoint) int {
	n := 0
	for _, w := range stops {
		if !w.Status().IsFixed() {
			break
		}
		n++
	}
	return n
}
