package services

import (
	"slices"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/pkg/errs"
)

// DelaySignals maps an order id to observed or predicted delay in minutes.
// Values of zero or less carry no signal.
type DelaySignals map[kernel.UUID]float64

// TrafficSignals maps an order id to a travel time multiplier for every edge
// touching that stop. Values of one or less carry no signal.
type TrafficSignals map[kernel.UUID]float64

// RealTimeAdjuster re-optimises a live route against traffic and delay signals.
//
// Edge cost is driving time scaled by the larger multiplier of its two ends.
// A delayed stop cannot be served before its planned arrival plus the delay, so
// arriving earlier adds waiting time. A bounded 2-opt pass minimises the total
// time; delivered and in-transit stops are moved, in their current order, to the
// front and stay fixed. A reordering that adds any violation the current order
// does not have, time-window conflicts included, is rejected in favour of the
// current order.
type RealTimeAdjuster struct {
	validator ConstraintValidator
}

// NewRealTimeAdjuster creates a RealTimeAdjuster.
func NewRealTimeAdjuster() RealTimeAdjuster {
	return RealTimeAdjuster{validator: NewConstraintValidator()}
}

// Adjust returns the adjusted route with its version incremented by one.
// Without any active signal the sequence and distance are kept unchanged.
func (a RealTimeAdjuster) Adjust(
	r *route.Route,
	delays DelaySignals,
	traffic TrafficSignals,
	params trip.OptimizationParameters,
) (*route.Route, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, errs.NewInfeasibleInputErrorWithCause("params", "invalid optimization parameters", err)
	}

	statusRevisions := a.delayedStatuses(r, delays)

	if !hasActiveSignal(r, delays, traffic) {
		revisions := append(statusRevisions, a.validator.Revision(params))
		return r.Revise(revisions...)
	}

	stops := fixedFirst(r.Waypoints())
	t := newTour(r.Origin(), stops)
	planned := t.arrivals(t.identity(), r.DepartAt(), params)

	c := adjustedCost{
		tour:    t,
		params:  params,
		departs: r.DepartAt(),
		factors: make([]float64, len(stops)),
		ready:   make([]time.Time, len(stops)),
	}
	for i, w := range stops {
		c.factors[i] = max(1, traffic[w.OrderID()])
		eta := planned[w.OrderID()]
		if existing := w.EstimatedArrival(); existing != nil {
			eta = *existing
		}
		if d := delays[w.OrderID()]; d > 0 {
			c.ready[i] = eta.Add(time.Duration(d * float64(time.Minute)))
		}
	}

	base := t.identity()
	seq := t.identity()
	_, capHit := twoOpt(seq, leadingFixed(stops), c.hours, moveBudget(len(stops)))

	candidate, err := a.revise(r, statusRevisions, c, seq, capHit, params)
	if err != nil || slices.Equal(seq, base) {
		return candidate, err
	}

	current, err := a.revise(r, statusRevisions, c, base, false, params)
	if err != nil {
		return nil, err
	}
	if len(route.Added(current.Violations(), candidate.Violations())) > 0 {
		return current, nil
	}
	return candidate, nil
}

// revise applies the visit order seq to r together with the adjusted metrics.
func (a RealTimeAdjuster) revise(
	r *route.Route,
	statusRevisions []route.Revision,
	c adjustedCost,
	seq []int,
	capHit bool,
	params trip.OptimizationParameters,
) (*route.Route, error) {
	revisions := append(slices.Clone(statusRevisions),
		route.WithSequence(c.tour.orderIDs(seq)),
		route.WithMetrics(c.tour.length(seq, params.ReturnToOrigin), c.hours(seq)),
		route.WithArrivals(c.arrivals(seq)),
		route.WithIterationCapHit(capHit),
		a.validator.Revision(params),
	)
	return r.Revise(revisions...)
}

func (a RealTimeAdjuster) delayedStatuses(r *route.Route, delays DelaySignals) []route.Revision {
	var revisions []route.Revision
	for _, w := range r.Waypoints() {
		if delays[w.OrderID()] > 0 && w.Status() == route.StatusScheduled {
			revisions = append(revisions, route.WithDeliveryStatus(w.OrderID(), route.StatusDelayed))
		}
	}
	return revisions
}

func hasActiveSignal(r *route.Route, delays DelaySignals, traffic TrafficSignals) bool {
	for _, id := range r.OrderIDs() {
		if delays[id] > 0 || traffic[id] > 1 {
			return true
		}
	}
	return false
}

// fixedFirst moves delivered and in-transit stops to the front, keeping relative order.
func fixedFirst(stops []route.Waypoint) []route.Waypoint {
	out := make([]route.Waypoint, 0, len(stops))
	for _, w := range stops {
		if w.Status().IsFixed() {
			out = append(out, w)
		}
	}
	for _, w := range stops {
		if !w.Status().IsFixed() {
			out = append(out, w)
		}
	}
	return out
}

// adjustedCost measures a visit order in hours of traffic-scaled driving,
// waiting for delayed stops and service.
type adjustedCost struct {
	tour    tour
	params  trip.OptimizationParameters
	departs time.Time
	factors []float64
	ready   []time.Time
}

func (c adjustedCost) factor(from, to int) float64 {
	f := 1.0
	if from >= 0 {
		f = max(f, c.factors[from])
	}
	if to >= 0 {
		f = max(f, c.factors[to])
	}
	return f
}

func (c adjustedCost) drive(from, to int) time.Duration {
	return time.Duration(float64(c.params.TravelTime(c.tour.leg(from, to))) * c.factor(from, to))
}

func (c adjustedCost) walk(seq []int, visit func(stop int, arrival time.Time)) time.Time {
	clock := c.departs
	prev := -1
	for _, s := range seq {
		clock = clock.Add(c.drive(prev, s))
		if ready := c.ready[s]; !ready.IsZero() && clock.Before(ready) {
			clock = ready
		}
		if visit != nil {
			visit(s, clock)
		}
		clock = clock.Add(c.params.ServiceTime())
		prev = s
	}
	if c.params.ReturnToOrigin && len(seq) > 0 {
		clock = clock.Add(c.drive(prev, -1))
	}
	return clock
}

func (c adjustedCost) hours(seq []int) float64 {
	return c.walk(seq, nil).Sub(c.departs).Hours()
}

func (c adjustedCost) arrivals(seq []int) map[kernel.UUID]time.Time {
	etas := make(map[kernel.UUID]time.Time, len(seq))
	c.walk(seq, func(stop int, arrival time.Time) {
		etas[c.tour.stops[stop].OrderID()] = arrival
	})
	return etas
}
