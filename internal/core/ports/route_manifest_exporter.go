package ports

import (
	"context"

	"tripplanner/internal/core/domain/model/route"
)

// RouteManifestExporter stores a printable stop list of a route for drivers and
// warehouse staff. It returns the location of the stored manifest.
type RouteManifestExporter interface {
	Export(ctx context.Context, r *route.Route) (string, error)
}
