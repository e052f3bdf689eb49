package services

import (
	"fmt"
	"math"
	"slices"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/pkg/errs"
)

// ResolutionKind is the type of fix proposed for a window conflict.
type ResolutionKind string

const (
	ResolutionUnresolved ResolutionKind = "unresolved"
	ResolutionSwap       ResolutionKind = "swap"
	ResolutionShift      ResolutionKind = "shift"
)

// Resolution is an advisory fix for one conflict.
type Resolution struct {
	Kind ResolutionKind
	// OrderID is the order whose window moves (shift) or the first stop of the swapped pair (swap).
	OrderID kernel.UUID
	// Shift is the signed window offset; negative moves the window earlier.
	Shift time.Duration
	// Window is the proposed window of OrderID after a shift.
	Window *kernel.TimeWindow
	// DistanceKm is the route distance after a swap.
	DistanceKm float64
	Reason     string
}

// WindowConflict is a pair of consecutive stops whose windows leave too little
// time to drive between them: start(next) < end(current) + travel + buffer.
type WindowConflict struct {
	FirstOrderID  kernel.UUID
	SecondOrderID kernel.UUID
	// FirstSequence is the 1-based position of the first stop.
	FirstSequence int
	// Shortfall is how much later the second window would have to start.
	Shortfall  time.Duration
	Resolution Resolution
}

// WindowConflictResolver detects window conflicts and proposes, in order of
// preference, swapping the two stops or shifting the looser-priority window.
// Proposals are advisory; ApplyResolution applies one on request.
type WindowConflictResolver struct {
	validator ConstraintValidator
}

// NewWindowConflictResolver creates a WindowConflictResolver.
func NewWindowConflictResolver() WindowConflictResolver {
	return WindowConflictResolver{validator: NewConstraintValidator()}
}

// Resolve returns every conflict of r with a proposal. A swap is proposed when it
// clears the conflict, creates no new one and keeps the distance within
// SwapDistanceTolerance; otherwise the looser window is shifted by the minimal
// whole number of minutes, bounded by MaxWindowShiftMinutes and creating no new
// conflict; otherwise the conflict is unresolved.
func (res WindowConflictResolver) Resolve(r *route.Route, params trip.OptimizationParameters) ([]WindowConflict, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, errs.NewInfeasibleInputErrorWithCause("params", "invalid optimization parameters", err)
	}

	stops := r.Waypoints()
	conflicts := detectConflicts(stops, params)
	if len(conflicts) == 0 {
		return nil, nil
	}

	t := newTour(r.Origin(), stops)
	baseDistance := t.length(t.identity(), params.ReturnToOrigin)
	existing := conflictKeys(conflicts)

	for i := range conflicts {
		c := &conflicts[i]
		if swap, ok := res.proposeSwap(stops, t, baseDistance, *c, existing, params); ok {
			c.Resolution = swap
			continue
		}
		if shift, ok := res.proposeShift(stops, *c, existing, params); ok {
			c.Resolution = shift
			continue
		}
		c.Resolution = Resolution{
			Kind:   ResolutionUnresolved,
			Reason: "no swap or window shift clears the conflict within limits",
		}
	}

	return conflicts, nil
}

// ApplyResolution applies the proposal of c to r and returns the revised route.
func (res WindowConflictResolver) ApplyResolution(
	r *route.Route,
	c WindowConflict,
	params trip.OptimizationParameters,
) (*route.Route, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, errs.NewInfeasibleInputErrorWithCause("params", "invalid optimization parameters", err)
	}

	switch c.Resolution.Kind {
	case ResolutionSwap:
		ids := r.OrderIDs()
		i := slices.IndexFunc(ids, c.FirstOrderID.IsEqual)
		if i < 0 || i+1 >= len(ids) || !ids[i+1].IsEqual(c.SecondOrderID) {
			return nil, errs.NewValueIsInvalidErrorWithCause("resolution",
				fmt.Errorf("orders %s and %s are no longer adjacent", c.FirstOrderID, c.SecondOrderID))
		}
		ids[i], ids[i+1] = ids[i+1], ids[i]

		stops := r.Waypoints()
		t := newTour(r.Origin(), stops)
		seq := make([]int, len(ids))
		for k, id := range ids {
			seq[k] = slices.IndexFunc(stops, func(w route.Waypoint) bool { return w.OrderID().IsEqual(id) })
		}
		distance := t.length(seq, params.ReturnToOrigin)

		return r.Revise(
			route.WithSequence(ids),
			route.WithMetrics(distance, params.DurationHours(distance, len(ids))),
			route.WithArrivals(t.arrivals(seq, r.DepartAt(), params)),
			res.validator.Revision(params),
		)
	case ResolutionShift:
		if c.Resolution.Window == nil {
			return nil, errs.NewValueIsRequiredError("resolution.window")
		}
		return r.Revise(
			route.WithWindow(c.Resolution.OrderID, *c.Resolution.Window),
			res.validator.Revision(params),
		)
	default:
		return nil, errs.NewValueIsInvalidErrorWithCause("resolution",
			fmt.Errorf("%s conflicts cannot be applied", c.Resolution.Kind))
	}
}

func (res WindowConflictResolver) proposeSwap(
	stops []route.Waypoint,
	t tour,
	baseDistance float64,
	c WindowConflict,
	existing map[conflictKey]struct{},
	params trip.OptimizationParameters,
) (Resolution, bool) {
	i := c.FirstSequence - 1
	if i < leadingFixed(stops) {
		return Resolution{}, false
	}

	seq := t.identity()
	seq[i], seq[i+1] = seq[i+1], seq[i]
	distance := t.length(seq, params.ReturnToOrigin)
	if distance > baseDistance*(1+params.SwapDistanceTolerance)+improvementEpsilon {
		return Resolution{}, false
	}

	swapped := slices.Clone(stops)
	swapped[i], swapped[i+1] = swapped[i+1], swapped[i]
	if !introducesNothing(detectConflicts(swapped, params), existing, c) {
		return Resolution{}, false
	}

	return Resolution{
		Kind:       ResolutionSwap,
		OrderID:    c.FirstOrderID,
		DistanceKm: distance,
		Reason:     fmt.Sprintf("swap stops %d and %d", c.FirstSequence, c.FirstSequence+1),
	}, true
}

func (res WindowConflictResolver) proposeShift(
	stops []route.Waypoint,
	c WindowConflict,
	existing map[conflictKey]struct{},
	params trip.OptimizationParameters,
) (Resolution, bool) {
	shift := ceilMinute(c.Shortfall)
	if shift > params.MaxWindowShift() {
		return Resolution{}, false
	}

	i := c.FirstSequence - 1
	first, second := stops[i], stops[i+1]

	target, offset := i+1, shift
	if first.Priority() < second.Priority() {
		target, offset = i, -shift
	}

	window := stops[target].Window().Shift(offset)
	windows := windowsOf(stops)
	windows[target] = &window
	if !introducesNothing(detectSlots(stops, windows, params), existing, c) {
		return Resolution{}, false
	}

	return Resolution{
		Kind:    ResolutionShift,
		OrderID: stops[target].OrderID(),
		Shift:   offset,
		Window:  &window,
		Reason: fmt.Sprintf("shift %s-priority order window by %s",
			stops[target].Priority(), offset),
	}, true
}

type conflictKey struct {
	first, second kernel.UUID
}

func conflictKeys(conflicts []WindowConflict) map[conflictKey]struct{} {
	keys := make(map[conflictKey]struct{}, len(conflicts))
	for _, c := range conflicts {
		keys[conflictKey{c.FirstOrderID, c.SecondOrderID}] = struct{}{}
	}
	return keys
}

// introducesNothing reports whether after contains only conflicts that existed
// before, excluding the one being resolved.
func introducesNothing(after []WindowConflict, before map[conflictKey]struct{}, resolved WindowConflict) bool {
	resolvedKey := conflictKey{resolved.FirstOrderID, resolved.SecondOrderID}
	for _, c := range after {
		key := conflictKey{c.FirstOrderID, c.SecondOrderID}
		if key == resolvedKey {
			return false
		}
		if _, ok := before[key]; !ok {
			return false
		}
	}
	return true
}

// detectConflicts finds window conflicts between consecutive stops. Stops without a window never conflict.
func detectConflicts(stops []route.Waypoint, params trip.OptimizationParameters) []WindowConflict {
	return detectSlots(stops, windowsOf(stops), params)
}

func detectSlots(
	stops []route.Waypoint,
	windows []*kernel.TimeWindow,
	params trip.OptimizationParameters,
) []WindowConflict {
	var conflicts []WindowConflict
	for i := 0; i+1 < len(stops); i++ {
		cur, next := windows[i], windows[i+1]
		if cur == nil || next == nil {
			continue
		}

		travel := params.TravelTime(kernel.HaversineKm(stops[i].Location(), stops[i+1].Location()))
		earliest := cur.End().Add(travel + params.TravelBuffer())
		if next.Start().Before(earliest) {
			conflicts = append(conflicts, WindowConflict{
				FirstOrderID:  stops[i].OrderID(),
				SecondOrderID: stops[i+1].OrderID(),
				FirstSequence: i + 1,
				Shortfall:     earliest.Sub(next.Start()),
			})
		}
	}
	return conflicts
}

func windowsOf(stops []route.Waypoint) []*kernel.TimeWindow {
	windows := make([]*kernel.TimeWindow, len(stops))
	for i, w := range stops {
		windows[i] = w.Window()
	}
	return windows
}

func ceilMinute(d time.Duration) time.Duration {
	return time.Duration(math.Ceil(d.Minutes())) * time.Minute
}
