package http

import (
	"time"

	"tripplanner/internal/core/application/usecases/commands"
	"tripplanner/internal/core/application/usecases/queries"
	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/services"
	"tripplanner/internal/generated/servers"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

func toLocation(l kernel.Location) servers.Location {
	return servers.Location{Latitude: l.Lat(), Longitude: l.Lon()}
}

func toIDs(ids []kernel.UUID) []openapi_types.UUID {
	out := make([]openapi_types.UUID, len(ids))
	for i, id := range ids {
		out[i] = id.Google()
	}
	return out
}

func windowBounds(w *kernel.TimeWindow) (*time.Time, *time.Time) {
	if w == nil {
		return nil, nil
	}
	start, end := w.Start(), w.End()
	return &start, &end
}

func toViolations(violations []route.Violation) []servers.Violation {
	out := make([]servers.Violation, len(violations))
	for i, v := range violations {
		out[i] = servers.Violation{Kind: string(v.Kind), Message: v.Message}
		if len(v.OrderIDs) > 0 {
			ids := toIDs(v.OrderIDs)
			out[i].OrderIds = &ids
		}
	}
	return out
}

func toRoute(r *route.Route, manifest string) servers.Route {
	waypoints := r.Waypoints()
	stops := make([]servers.Waypoint, len(waypoints))
	for i, w := range waypoints {
		start, end := windowBounds(w.Window())
		stops[i] = servers.Waypoint{
			OrderId:          w.OrderID().Google(),
			Sequence:         w.Sequence(),
			Location:         toLocation(w.Location()),
			Status:           servers.WaypointStatus(w.Status().String()),
			EstimatedArrival: w.EstimatedArrival(),
			WindowStart:      start,
			WindowEnd:        end,
		}
	}

	response := servers.Route{
		Id:                     r.ID().Google(),
		TripGroupId:            r.TripGroupID().Google(),
		Origin:                 toLocation(r.Origin()),
		DepartAt:               r.DepartAt(),
		Waypoints:              stops,
		TotalDistanceKm:        r.TotalDistanceKm(),
		EstimatedDurationHours: r.EstimatedDurationHours(),
		OptimizationScore:      r.OptimizationScore(),
		ConstraintsSatisfied:   r.ConstraintsSatisfied(),
		Violations:             toViolations(r.Violations()),
		WeightKg:               r.WeightKg(),
		VolumeM3:               r.VolumeM3(),
		IterationCapHit:        r.IterationCapHit(),
		Version:                r.Version(),
	}
	if manifest != "" {
		response.Manifest = &manifest
	}
	return response
}

func routeResponseToAPI(r queries.GetRouteQueryResponse) servers.Route {
	stops := make([]servers.Waypoint, len(r.Waypoints))
	for i, w := range r.Waypoints {
		start, end := windowBounds(w.Window)
		stops[i] = servers.Waypoint{
			OrderId:          w.OrderID.Google(),
			Sequence:         w.Sequence,
			Location:         toLocation(w.Location),
			Status:           servers.WaypointStatus(w.Status.String()),
			EstimatedArrival: w.EstimatedArrival,
			WindowStart:      start,
			WindowEnd:        end,
		}
	}

	return servers.Route{
		Id:                     r.ID.Google(),
		TripGroupId:            r.TripGroupID.Google(),
		Origin:                 toLocation(r.Origin),
		DepartAt:               r.DepartAt,
		Waypoints:              stops,
		TotalDistanceKm:        r.TotalDistanceKm,
		EstimatedDurationHours: r.EstimatedDurationHours,
		OptimizationScore:      r.OptimizationScore,
		ConstraintsSatisfied:   r.ConstraintsSatisfied,
		Violations:             toViolations(r.Violations),
		WeightKg:               r.WeightKg,
		VolumeM3:               r.VolumeM3,
		IterationCapHit:        r.IterationCapHit,
		Version:                r.Version,
	}
}

func toConflicts(conflicts []services.WindowConflict) []servers.WindowConflict {
	out := make([]servers.WindowConflict, len(conflicts))
	for i, c := range conflicts {
		res := servers.Resolution{
			Kind:   servers.ResolutionKind(c.Resolution.Kind),
			Reason: c.Resolution.Reason,
		}
		switch c.Resolution.Kind {
		case services.ResolutionSwap:
			id := c.Resolution.OrderID.Google()
			distance := c.Resolution.DistanceKm
			res.OrderId, res.DistanceKm = &id, &distance
		case services.ResolutionShift:
			id := c.Resolution.OrderID.Google()
			shift := c.Resolution.Shift.Minutes()
			res.OrderId, res.ShiftMinutes = &id, &shift
			res.WindowStart, res.WindowEnd = windowBounds(c.Resolution.Window)
		case services.ResolutionUnresolved:
		}

		out[i] = servers.WindowConflict{
			FirstOrderId:     c.FirstOrderID.Google(),
			SecondOrderId:    c.SecondOrderID.Google(),
			FirstSequence:    c.FirstSequence,
			ShortfallMinutes: c.Shortfall.Minutes(),
			Resolution:       res,
		}
	}
	return out
}

// PlanResponse renders a planning result in the API's Plan schema.
func PlanResponse(result commands.PlanTripsResult) servers.Plan {
	plan := result.Plan

	groups := make([]servers.TripGroup, len(plan.TripGroups))
	for i, g := range plan.TripGroups {
		groups[i] = servers.TripGroup{
			Id:          g.ID().Google(),
			OrderIds:    toIDs(g.OrderIDs()),
			WeightKg:    g.WeightKg(),
			VolumeM3:    g.VolumeM3(),
			SkuCount:    g.SKUCount(),
			Center:      toLocation(g.GeographicCenter()),
			MaxSpreadKm: g.MaxSpreadKm(),
			SkuStatus:   servers.WithinTarget,
		}
		if verdict, ok := plan.Compliance.Lookup(g.ID()); ok {
			groups[i].SkuStatus = servers.TripGroupSkuStatus(verdict.Status.String())
			if len(verdict.Reasons) > 0 {
				reasons := append([]string(nil), verdict.Reasons...)
				groups[i].Reasons = &reasons
			}
		}
	}

	routes := make([]servers.Route, len(plan.Routes))
	conflicts := make([]servers.WindowConflict, 0)
	for i, r := range plan.Routes {
		routes[i] = toRoute(r, result.Manifests[r.ID()])
		conflicts = append(conflicts, toConflicts(plan.Conflicts[r.ID()])...)
	}

	return servers.Plan{TripGroups: groups, Routes: routes, Conflicts: conflicts}
}
