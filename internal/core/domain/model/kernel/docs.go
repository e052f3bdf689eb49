// Package kernel provides the value objects shared by the planner domain model.
//
// The package includes:
//   - UUID: identifier value object wrapping github.com/google/uuid
//   - Location: a validated latitude/longitude pair
//   - TimeWindow: a delivery window with start and end instants
//   - geodesic helpers: Haversine distance, initial bearing, centroid and spread
//
// All values are immutable and safe for concurrent use.
package kernel
