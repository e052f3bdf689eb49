// Package route provides the Route aggregate produced by the route constructor
// and refined by the improver, the conflict resolver and the real-time adjuster.
//
// A Route is an immutable value. Every change goes through Revise, which
// returns a new Route with Version incremented by one, so concurrent holders of
// an older value never observe a partial update. Persistence compares the
// version it read with the one stored to detect racing writers.
//
// Waypoint sequences are always the contiguous range 1..N in visit order.
package route
