package queries

import (
	"errors"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/pkg/guard"
)

var ErrGetRouteQueryIsNotConstructed = errors.New(
	"GetRouteQuery must be created via NewGetRouteQuery constructor",
)

// GetRouteQuery reads one stored route.
type GetRouteQuery struct {
	routeID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetRouteQuery creates a query for routeID.
func NewGetRouteQuery(routeID kernel.UUID) (GetRouteQuery, error) {
	if err := routeID.Validate(); err != nil {
		return GetRouteQuery{}, err
	}

	return GetRouteQuery{routeID: routeID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetRouteQuery) Validate() error {
	return q.guard.Validate(ErrGetRouteQueryIsNotConstructed)
}

// RouteID returns the requested route.
func (q GetRouteQuery) RouteID() kernel.UUID {
	return q.routeID
}

// GetRouteQueryResponse is the read model of a route.
type GetRouteQueryResponse struct {
	ID                     kernel.UUID
	TripGroupID            kernel.UUID
	Origin                 kernel.Location
	DepartAt               time.Time
	TotalDistanceKm        float64
	EstimatedDurationHours float64
	OptimizationScore      float64
	ConstraintsSatisfied   bool
	IterationCapHit        bool
	WeightKg               float64
	VolumeM3               float64
	Version                int64
	Violations             []route.Violation
	Waypoints              []WaypointResponse
}

// WaypointResponse is one stop of GetRouteQueryResponse.
type WaypointResponse struct {
	OrderID          kernel.UUID
	Sequence         int
	Location         kernel.Location
	Status           route.DeliveryStatus
	EstimatedArrival *time.Time
	Window           *kernel.TimeWindow
}

func newGetRouteQueryResponse(r *route.Route) GetRouteQueryResponse {
	waypoints := make([]WaypointResponse, 0, r.StopCount())
	for _, w := range r.Waypoints() {
		waypoints = append(waypoints, WaypointResponse{
			OrderID:          w.OrderID(),
			Sequence:         w.Sequence(),
			Location:         w.Location(),
			Status:           w.Status(),
			EstimatedArrival: w.EstimatedArrival(),
			Window:           w.Window(),
		})
	}

	return GetRouteQueryResponse{
		ID:                     r.ID(),
		TripGroupID:            r.TripGroupID(),
		Origin:                 r.Origin(),
		DepartAt:               r.DepartAt(),
		TotalDistanceKm:        r.TotalDistanceKm(),
		EstimatedDurationHours: r.EstimatedDurationHours(),
		OptimizationScore:      r.OptimizationScore(),
		ConstraintsSatisfied:   r.ConstraintsSatisfied(),
		IterationCapHit:        r.IterationCapHit(),
		WeightKg:               r.WeightKg(),
		VolumeM3:               r.VolumeM3(),
		Version:                r.Version(),
		Violations:             r.Violations(),
		Waypoints:              waypoints,
	}
}
