// Package routerepo persists route aggregates in "routes" and their stops in
// "route_waypoints". Every update is guarded by the route version.
package routerepo

import (
	"encoding/json"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/core/domain/model/route"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// RouteDTO represents the database structure for persisting route aggregates.
type RouteDTO struct {
	ID                     uuid.UUID     `gorm:"type:uuid;primaryKey"`
	TripGroupID            uuid.UUID     `gorm:"type:uuid;not null;index"`
	Origin                 LocationDTO   `gorm:"embedded;embeddedPrefix:origin_"`
	DepartAt               time.Time     `gorm:"type:timestamptz;not null"`
	TotalDistanceKm        float64       `gorm:"not null"`
	EstimatedDurationHours float64       `gorm:"not null"`
	OptimizationScore      float64       `gorm:"not null"`
	ConstraintsSatisfied   bool          `gorm:"not null"`
	IterationCapHit        bool          `gorm:"not null"`
	Violations             []byte        `gorm:"type:jsonb"`
	Version                int64         `gorm:"not null"`
	Waypoints              []WaypointDTO `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for route entities.
func (RouteDTO) TableName() string {
	return "routes"
}

// LocationDTO is an embedded WGS84 coordinate.
type LocationDTO struct {
	Latitude  float64
	Longitude float64
}

// WaypointDTO is one stop of a route.
type WaypointDTO struct {
	RouteID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderID            uuid.UUID      `gorm:"type:uuid;primaryKey;index"`
	Sequence           int            `gorm:"not null"`
	Location           LocationDTO    `gorm:"embedded"`
	Status             string         `gorm:"type:varchar(16);not null"`
	EstimatedArrival   *time.Time     `gorm:"type:timestamptz"`
	WindowStart        *time.Time     `gorm:"type:timestamptz"`
	WindowEnd          *time.Time     `gorm:"type:timestamptz"`
	Priority           int            `gorm:"type:smallint;not null"`
	TemperatureClasses pq.StringArray `gorm:"type:text[]"`
	Fragile            bool           `gorm:"not null"`
	WeightKg           float64        `gorm:"not null"`
	VolumeM3           float64        `gorm:"not null"`
}

// TableName specifies the database table name for waypoints.
func (WaypointDTO) TableName() string {
	return "route_waypoints"
}

type violationDTO struct {
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	OrderIDs []string `json:"order_ids,omitempty"`
}

func fromDomain(r *route.Route) (RouteDTO, error) {
	routeID := r.ID().Google()

	violations := make([]violationDTO, 0, len(r.Violations()))
	for _, v := range r.Violations() {
		ids := make([]string, 0, len(v.OrderIDs))
		for _, id := range v.OrderIDs {
			ids = append(ids, id.String())
		}
		violations = append(violations, violationDTO{Kind: string(v.Kind), Message: v.Message, OrderIDs: ids})
	}
	rawViolations, err := json.Marshal(violations)
	if err != nil {
		return RouteDTO{}, err
	}

	waypoints := make([]WaypointDTO, 0, r.StopCount())
	for _, w := range r.Waypoints() {
		s := w.State()

		classes := make(pq.StringArray, 0, len(s.TemperatureClasses))
		for _, c := range s.TemperatureClasses {
			classes = append(classes, c.String())
		}

		dto := WaypointDTO{
			RouteID:            routeID,
			OrderID:            s.OrderID.Google(),
			Sequence:           s.Sequence,
			Location:           LocationDTO{Latitude: s.Location.Lat(), Longitude: s.Location.Lon()},
			Status:             s.Status.String(),
			EstimatedArrival:   s.EstimatedArrival,
			Priority:           int(s.Priority),
			TemperatureClasses: classes,
			Fragile:            s.Fragile,
			WeightKg:           s.WeightKg,
			VolumeM3:           s.VolumeM3,
		}
		if s.Window != nil {
			start, end := s.Window.Start(), s.Window.End()
			dto.WindowStart = &start
			dto.WindowEnd = &end
		}
		waypoints = append(waypoints, dto)
	}

	return RouteDTO{
		ID:                     routeID,
		TripGroupID:            r.TripGroupID().Google(),
		Origin:                 LocationDTO{Latitude: r.Origin().Lat(), Longitude: r.Origin().Lon()},
		DepartAt:               r.DepartAt(),
		TotalDistanceKm:        r.TotalDistanceKm(),
		EstimatedDurationHours: r.EstimatedDurationHours(),
		OptimizationScore:      r.OptimizationScore(),
		ConstraintsSatisfied:   r.ConstraintsSatisfied(),
		IterationCapHit:        r.IterationCapHit(),
		Violations:             rawViolations,
		Version:                r.Version(),
		Waypoints:              waypoints,
	}, nil
}

// toDomain rebuilds the aggregate; waypoints must be sorted by sequence.
func toDomain(dto RouteDTO) (*route.Route, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	tripGroupID, err := kernel.UUIDFromGoogle(dto.TripGroupID)
	if err != nil {
		return nil, err
	}
	origin, err := kernel.NewLocation(dto.Origin.Latitude, dto.Origin.Longitude)
	if err != nil {
		return nil, err
	}

	violations, err := violationsToDomain(dto.Violations)
	if err != nil {
		return nil, err
	}

	waypoints := make([]route.Waypoint, 0, len(dto.Waypoints))
	for _, w := range dto.Waypoints {
		waypoint, wErr := waypointToDomain(w)
		if wErr != nil {
			return nil, wErr
		}
		waypoints = append(waypoints, waypoint)
	}

	return route.RestoreRoute(route.State{
		ID:                     id,
		TripGroupID:            tripGroupID,
		Origin:                 origin,
		DepartAt:               dto.DepartAt.UTC(),
		Waypoints:              waypoints,
		TotalDistanceKm:        dto.TotalDistanceKm,
		EstimatedDurationHours: dto.EstimatedDurationHours,
		OptimizationScore:      dto.OptimizationScore,
		ConstraintsSatisfied:   dto.ConstraintsSatisfied,
		Violations:             violations,
		IterationCapHit:        dto.IterationCapHit,
		Version:                dto.Version,
	})
}

func waypointToDomain(dto WaypointDTO) (route.Waypoint, error) {
	orderID, err := kernel.UUIDFromGoogle(dto.OrderID)
	if err != nil {
		return route.Waypoint{}, err
	}
	location, err := kernel.NewLocation(dto.Location.Latitude, dto.Location.Longitude)
	if err != nil {
		return route.Waypoint{}, err
	}
	status, err := route.ParseDeliveryStatus(dto.Status)
	if err != nil {
		return route.Waypoint{}, err
	}

	classes := make([]order.TemperatureClass, 0, len(dto.TemperatureClasses))
	for _, name := range dto.TemperatureClasses {
		c, cErr := order.ParseTemperatureClass(name)
		if cErr != nil {
			return route.Waypoint{}, cErr
		}
		classes = append(classes, c)
	}

	var window *kernel.TimeWindow
	if dto.WindowStart != nil && dto.WindowEnd != nil {
		w, wErr := kernel.NewTimeWindow(dto.WindowStart.UTC(), dto.WindowEnd.UTC())
		if wErr != nil {
			return route.Waypoint{}, wErr
		}
		window = &w
	}

	var eta *time.Time
	if dto.EstimatedArrival != nil {
		t := dto.EstimatedArrival.UTC()
		eta = &t
	}

	return route.RestoreWaypoint(route.WaypointState{
		OrderID:            orderID,
		Location:           location,
		Sequence:           dto.Sequence,
		Status:             status,
		EstimatedArrival:   eta,
		Window:             window,
		Priority:           order.Priority(dto.Priority),
		TemperatureClasses: classes,
		Fragile:            dto.Fragile,
		WeightKg:           dto.WeightKg,
		VolumeM3:           dto.VolumeM3,
	})
}

func violationsToDomain(raw []byte) ([]route.Violation, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var dtos []violationDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, err
	}

	violations := make([]route.Violation, 0, len(dtos))
	for _, v := range dtos {
		ids := make([]kernel.UUID, 0, len(v.OrderIDs))
		for _, s := range v.OrderIDs {
			id, err := kernel.UUIDFromString(s)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		violations = append(violations, route.Violation{Kind: route.ViolationKind(v.Kind), Message: v.Message, OrderIDs: ids})
	}

	return violations, nil
}
