// Package services implements the trip planning engine on top of the domain model.
//
// The package includes:
//   - SKUConsolidator: greedy geographic-first bin packing of orders into trip groups
//   - RouteConstructor: nearest-neighbour initial routes from the manufacturing origin
//   - RouteImprover: bounded 2-opt over Haversine distance
//   - ConstraintValidator: stop, duration, load, temperature and window checks as data
//   - WindowConflictResolver: advisory swap or shift proposals for window conflicts
//   - RealTimeAdjuster: traffic and delay aware re-optimisation of a live route
//   - Planner: the facade combining them
//
// Every service is stateless, performs no I/O and is safe for concurrent use.
// Only invalid input is an error; constraint findings travel as data.
package services
