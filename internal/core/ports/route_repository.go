package ports

import (
	"context"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
)

// RouteRepository defines the persistence contract for routes and their waypoints.
//
// Routes are versioned. Update applies optimistic concurrency: the stored row must
// still carry expectedVersion, otherwise errs.VersionIsInvalidError is returned and
// nothing is written.
//
// Example:
//
//	current, err := repo.Get(ctx, routeID)
//	if err != nil {
//	    return err
//	}
//	adjusted, err := planner.AdjustRoute(current, delays, traffic, params)
//	if err != nil {
//	    return err
//	}
//	if err := repo.Update(ctx, adjusted, current.Version()); err != nil {
//	    return err // another writer won the race
//	}
type RouteRepository interface {
	// Add persists a new route with its waypoints.
	Add(ctx context.Context, aggregate *route.Route) error

	// Update replaces the stored route when its version equals expectedVersion.
	Update(ctx context.Context, aggregate *route.Route, expectedVersion int64) error

	// Get retrieves a route with its waypoints in sequence order.
	Get(ctx context.Context, id kernel.UUID) (*route.Route, error)
}
