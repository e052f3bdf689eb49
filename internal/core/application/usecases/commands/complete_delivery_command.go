package commands

import (
	"errors"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/pkg/guard"
)

var ErrCompleteDeliveryCommandIsNotConstructed = errors.New(
	"CompleteDeliveryCommand must be created via NewCompleteDeliveryCommand constructor",
)

// CompleteDeliveryCommand records that the order of one waypoint was handed over.
type CompleteDeliveryCommand struct { //nolint:recvcheck //using for validation
	routeID kernel.UUID
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewCompleteDeliveryCommand creates a command for the stop of orderID on routeID.
func NewCompleteDeliveryCommand(routeID kernel.UUID, orderID kernel.UUID) (CompleteDeliveryCommand, error) {
	cmd := CompleteDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setRouteID(routeID),
		cmd.setOrderID(orderID),
	); err != nil {
		return CompleteDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CompleteDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCompleteDeliveryCommandIsNotConstructed)
}

// RouteID returns the route of the stop.
func (c CompleteDeliveryCommand) RouteID() kernel.UUID { return c.routeID }

// OrderID returns the delivered order.
func (c CompleteDeliveryCommand) OrderID() kernel.UUID { return c.orderID }

func (c *CompleteDeliveryCommand) setRouteID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.routeID = id
	return nil
}

func (c *CompleteDeliveryCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.orderID = id
	return nil
}
