package commands

import (
	"errors"
	"maps"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/core/domain/services"
	"tripplanner/internal/pkg/errs"
	"tripplanner/internal/pkg/guard"
)

var ErrAdjustRouteCommandIsNotConstructed = errors.New(
	"AdjustRouteCommand must be created via NewAdjustRouteCommand constructor",
)

// AdjustRouteCommand re-optimises a stored route against delay and traffic signals.
// When an expected version is given the command fails unless the stored route
// still carries it.
type AdjustRouteCommand struct { //nolint:recvcheck //using for validation
	routeID         kernel.UUID
	delays          services.DelaySignals
	traffic         services.TrafficSignals
	expectedVersion *int64
	params          trip.OptimizationParameters

	guard guard.ConstructorGuard
}

// NewAdjustRouteCommand creates an adjustment command. delays and traffic may be nil;
// expectedVersion is optional.
func NewAdjustRouteCommand(
	routeID kernel.UUID,
	delays services.DelaySignals,
	traffic services.TrafficSignals,
	expectedVersion *int64,
	params trip.OptimizationParameters,
) (AdjustRouteCommand, error) {
	cmd := AdjustRouteCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setRouteID(routeID),
		cmd.setSignals(delays, traffic),
		cmd.setExpectedVersion(expectedVersion),
		cmd.setParams(params),
	); err != nil {
		return AdjustRouteCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AdjustRouteCommand) Validate() error {
	return c.guard.Validate(ErrAdjustRouteCommandIsNotConstructed)
}

// RouteID returns the route to adjust.
func (c AdjustRouteCommand) RouteID() kernel.UUID { return c.routeID }

// Delays returns a copy of the delay signals.
func (c AdjustRouteCommand) Delays() services.DelaySignals { return maps.Clone(c.delays) }

// Traffic returns a copy of the traffic signals.
func (c AdjustRouteCommand) Traffic() services.TrafficSignals { return maps.Clone(c.traffic) }

// ExpectedVersion returns the version the caller last saw, or nil.
func (c AdjustRouteCommand) ExpectedVersion() *int64 {
	if c.expectedVersion == nil {
		return nil
	}
	v := *c.expectedVersion
	return &v
}

// Params returns the optimization parameters.
func (c AdjustRouteCommand) Params() trip.OptimizationParameters { return c.params }

func (c *AdjustRouteCommand) setRouteID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.routeID = id
	return nil
}

func (c *AdjustRouteCommand) setSignals(delays services.DelaySignals, traffic services.TrafficSignals) error {
	for id, minutes := range delays {
		if minutes < 0 {
			return errs.NewValueIsOutOfRangeError("delays["+id.String()+"]", minutes, 0, "∞")
		}
	}
	for id, multiplier := range traffic {
		if multiplier < 0 {
			return errs.NewValueIsOutOfRangeError("traffic["+id.String()+"]", multiplier, 0, "∞")
		}
	}

	c.delays = maps.Clone(delays)
	c.traffic = maps.Clone(traffic)
	return nil
}

func (c *AdjustRouteCommand) setExpectedVersion(v *int64) error {
	if v == nil {
		return nil
	}
	if *v < 1 {
		return errs.NewValueIsOutOfRangeError("expectedVersion", *v, 1, "∞")
	}

	version := *v
	c.expectedVersion = &version
	return nil
}

func (c *AdjustRouteCommand) setParams(params trip.OptimizationParameters) error {
	if err := params.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("params", err)
	}

	c.params = params
	return nil
}
