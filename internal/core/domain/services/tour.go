package services

import (
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/model/trip"
)

// improvementEpsilon keeps floating point noise from counting as an improvement.
const improvementEpsilon = 1e-9

// tour is a distance matrix over the origin (node 0) and the stops (node i+1 for stop i).
type tour struct {
	stops []route.Waypoint
	dist  [][]float64
}

func newTour(origin kernel.Location, stops []route.Waypoint) tour {
	points := make([]kernel.Location, 0, len(stops)+1)
	points = append(points, origin)
	for _, w := range stops {
		points = append(points, w.Location())
	}

	dist := make([][]float64, len(points))
	for i := range points {
		dist[i] = make([]float64, len(points))
	}
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			d := kernel.HaversineKm(points[i], points[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	return tour{stops: stops, dist: dist}
}

// identity returns the visit order 0..n-1.
func (t tour) identity() []int {
	seq := make([]int, len(t.stops))
	for i := range seq {
		seq[i] = i
	}
	return seq
}

// leg returns the distance between stop indices, where -1 is the origin.
func (t tour) leg(from, to int) float64 {
	return t.dist[from+1][to+1]
}

// length returns the path length origin -> seq... and back when returnToOrigin is set.
func (t tour) length(seq []int, returnToOrigin bool) float64 {
	total := 0.0
	prev := -1
	for _, s := range seq {
		total += t.leg(prev, s)
		prev = s
	}
	if returnToOrigin && len(seq) > 0 {
		total += t.leg(prev, -1)
	}
	return total
}

// orderIDs maps a visit order to waypoint order ids.
func (t tour) orderIDs(seq []int) []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(seq))
	for _, s := range seq {
		ids = append(ids, t.stops[s].OrderID())
	}
	return ids
}

// arrivals estimates arrival times with distance / speed driving and a fixed service time per stop.
func (t tour) arrivals(seq []int, departAt time.Time, params trip.OptimizationParameters) map[kernel.UUID]time.Time {
	etas := make(map[kernel.UUID]time.Time, len(seq))
	clock := departAt
	prev := -1
	for _, s := range seq {
		clock = clock.Add(params.TravelTime(t.leg(prev, s)))
		etas[t.stops[s].OrderID()] = clock
		clock = clock.Add(params.ServiceTime())
		prev = s
	}
	return etas
}

// twoOpt reverses segments of seq in place while that strictly lowers cost.
// Positions before fixed never move. It stops after a pass without improvement
// or after maxMoves applied reversals; capHit reports that the budget ran out
// while an improving move was still available.
func twoOpt(seq []int, fixed int, cost func([]int) float64, maxMoves int) (moves int, capHit bool) {
	current := cost(seq)

	for {
		improved := false
		for i := fixed; i < len(seq)-1; i++ {
			for j := i + 1; j < len(seq); j++ {
				reverse(seq, i, j)
				if c := cost(seq); c < current-improvementEpsilon {
					current = c
					moves++
					improved = true
					if moves >= maxMoves {
						return moves, hasImprovingMove(seq, fixed, cost, current)
					}
					continue
				}
				reverse(seq, i, j)
			}
		}
		if !improved {
			return moves, false
		}
	}
}

func hasImprovingMove(seq []int, fixed int, cost func([]int) float64, current float64) bool {
	for i := fixed; i < len(seq)-1; i++ {
		for j := i + 1; j < len(seq); j++ {
			reverse(seq, i, j)
			c := cost(seq)
			reverse(seq, i, j)
			if c < current-improvementEpsilon {
				return true
			}
		}
	}
	return false
}

func reverse(seq []int, i, j int) {
	for i < j {
		seq[i], seq[j] = seq[j], seq[i]
		i++
		j--
	}
}

// moveBudget is stop_count², at least one move.
func moveBudget(stops int) int {
	return max(1, stops*stops)
}

// clampScore maps 1 - final/initial into [0, 1]. A zero-length initial tour scores 0.
func clampScore(initial, final float64) float64 {
	if initial <= 0 {
		return 0
	}
	return min(1, max(0, 1-final/initial))
}
