package http

import (
	"errors"
	"time"

	"tripplanner/internal/core/application/usecases/commands"
	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/core/domain/services"
	"tripplanner/internal/generated/servers"
	"tripplanner/internal/pkg/errs"
)

func newCreateOrderCommand(body servers.NewOrder) (commands.CreateOrderCommand, error) {
	destination, err := kernel.NewLocation(body.Destination.Latitude, body.Destination.Longitude)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	var errList []error
	lines := make([]order.SKULine, 0, len(body.Lines))
	for _, l := range body.Lines {
		temperature, tempErr := order.ParseTemperatureClass(string(l.Temperature))
		if tempErr != nil {
			errList = append(errList, tempErr)
			continue
		}
		line, lineErr := order.NewSKULine(l.Code, l.Quantity, l.UnitWeightKg, l.UnitVolumeM3, temperature, l.Fragile != nil && *l.Fragile)
		if lineErr != nil {
			errList = append(errList, lineErr)
			continue
		}
		lines = append(lines, line)
	}

	window, windowErr := newWindow(body.WindowStart, body.WindowEnd)
	errList = append(errList, windowErr)

	priority := order.PriorityNormal
	if body.Priority != nil {
		var priorityErr error
		priority, priorityErr = order.ParsePriority(string(*body.Priority))
		errList = append(errList, priorityErr)
	}

	if err = errors.Join(errList...); err != nil {
		return commands.CreateOrderCommand{}, err
	}

	return commands.NewCreateOrderCommand(kernel.NewUUID(), destination, lines, window, priority)
}

func newWindow(start, end *time.Time) (*kernel.TimeWindow, error) {
	switch {
	case start == nil && end == nil:
		return nil, nil
	case start == nil:
		return nil, errs.NewValueIsRequiredError("window_start")
	case end == nil:
		return nil, errs.NewValueIsRequiredError("window_end")
	}

	window, err := kernel.NewTimeWindow(start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return &window, nil
}

func (s *Server) newPlanTripsCommand(body servers.PlanRequest) (commands.PlanTripsCommand, error) {
	departAt := s.defaults.Now().UTC()
	if body.DepartAt != nil {
		departAt = body.DepartAt.UTC()
	}

	params := s.defaults.Params(departAt)
	applyOverrides(&params, body.Parameters)

	origin := s.defaults.Origin
	if body.Origin != nil {
		var err error
		origin, err = kernel.NewLocation(body.Origin.Latitude, body.Origin.Longitude)
		if err != nil {
			return commands.PlanTripsCommand{}, err
		}
	}

	return commands.NewPlanTripsCommand(origin, params)
}

func applyOverrides(p *trip.OptimizationParameters, o *servers.OptimizationParameters) {
	if o == nil {
		return
	}

	setIfPresent(&p.TargetSKUMin, o.TargetSkuMin)
	setIfPresent(&p.TargetSKUMax, o.TargetSkuMax)
	setIfPresent(&p.MaxTripWeightKg, o.MaxTripWeightKg)
	setIfPresent(&p.MaxTripVolumeM3, o.MaxTripVolumeM3)
	setIfPresent(&p.MaxDeliveryStops, o.MaxDeliveryStops)
	setIfPresent(&p.MaxTripDurationHours, o.MaxTripDurationHours)
	setIfPresent(&p.TravelBufferMinutes, o.TravelBufferMinutes)
	setIfPresent(&p.MaxGeographicSpreadKm, o.MaxGeographicSpreadKm)
	setIfPresent(&p.AverageSpeedKmh, o.AverageSpeedKmh)
	setIfPresent(&p.ServiceTimeMinutes, o.ServiceTimeMinutes)
	setIfPresent(&p.SwapDistanceTolerance, o.SwapDistanceTolerance)
	setIfPresent(&p.MaxWindowShiftMinutes, o.MaxWindowShiftMinutes)
	setIfPresent(&p.ReturnToOrigin, o.ReturnToOrigin)
	setIfPresent(&p.SeparateTemperatureClasses, o.SeparateTemperatureClasses)
}

func setIfPresent[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (s *Server) newAdjustRouteCommand(routeId servers.RouteId, body servers.Adjustment) (commands.AdjustRouteCommand, error) {
	routeID, err := kernel.UUIDFromGoogle(routeId)
	if err != nil {
		return commands.AdjustRouteCommand{}, err
	}

	delays, delaysErr := signals[services.DelaySignals](body.Delays)
	traffic, trafficErr := signals[services.TrafficSignals](body.Traffic)
	if err = errors.Join(delaysErr, trafficErr); err != nil {
		return commands.AdjustRouteCommand{}, err
	}

	return commands.NewAdjustRouteCommand(routeID, delays, traffic, body.ExpectedVersion, s.defaults.Params(s.defaults.Now().UTC()))
}

func signals[M ~map[kernel.UUID]float64](raw *map[string]float64) (M, error) {
	if raw == nil {
		return M{}, nil
	}

	out := make(M, len(*raw))
	for key, v := range *raw {
		id, err := kernel.UUIDFromString(key)
		if err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause("order_id", err)
		}
		out[id] = v
	}
	return out, nil
}
