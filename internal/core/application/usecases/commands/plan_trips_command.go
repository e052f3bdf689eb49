package commands

import (
	"errors"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/pkg/errs"
	"tripplanner/internal/pkg/guard"
)

var ErrPlanTripsCommandIsNotConstructed = errors.New(
	"PlanTripsCommand must be created via NewPlanTripsCommand constructor",
)

// PlanTripsCommand triggers one planning run over every pending order:
// consolidation into trip groups, routing and persistence of the routes.
//
// Example:
//
//	cmd, err := NewPlanTripsCommand(plant, trip.DefaultParameters(time.Now()))
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type PlanTripsCommand struct { //nolint:recvcheck //using for validation
	origin kernel.Location
	params trip.OptimizationParameters

	guard guard.ConstructorGuard
}

// NewPlanTripsCommand creates a planning command from the manufacturing origin and
// the parameters applied to every stage.
func NewPlanTripsCommand(origin kernel.Location, params trip.OptimizationParameters) (PlanTripsCommand, error) {
	cmd := PlanTripsCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrigin(origin),
		cmd.setParams(params),
	); err != nil {
		return PlanTripsCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c PlanTripsCommand) Validate() error {
	return c.guard.Validate(ErrPlanTripsCommandIsNotConstructed)
}

// Origin returns the manufacturing origin.
func (c PlanTripsCommand) Origin() kernel.Location {
	return c.origin
}

// Params returns the optimization parameters.
func (c PlanTripsCommand) Params() trip.OptimizationParameters {
	return c.params
}

func (c *PlanTripsCommand) setOrigin(origin kernel.Location) error {
	if err := origin.Validate(); err != nil {
		return err
	}

	c.origin = origin
	return nil
}

func (c *PlanTripsCommand) setParams(params trip.OptimizationParameters) error {
	if err := params.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("params", err)
	}

	c.params = params
	return nil
}
