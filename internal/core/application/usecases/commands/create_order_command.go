package commands

import (
	"errors"
	"slices"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/pkg/errs"
	"tripplanner/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a request to register a pending order with its SKU lines.
//
// Example:
//
//	line, _ := order.NewSKULine("SKU-MILK-1L", 24, 1.05, 0.0011, order.TemperatureRefrigerated, false)
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), destination, []order.SKULine{line}, nil, order.PriorityNormal)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	destination kernel.Location
	lines       []order.SKULine
	window      *kernel.TimeWindow
	priority    order.Priority

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new order.
// Validates the id, the destination, that at least one SKU line is given,
// the optional window and the priority.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	destination kernel.Location,
	lines []order.SKULine,
	window *kernel.TimeWindow,
	priority order.Priority,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setDestination(destination),
		cmd.setLines(lines),
		cmd.setWindow(window),
		cmd.setPriority(priority),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the new order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Destination returns the delivery coordinate.
func (c CreateOrderCommand) Destination() kernel.Location {
	return c.destination
}

// Lines returns the SKU lines of the order.
func (c CreateOrderCommand) Lines() []order.SKULine {
	return slices.Clone(c.lines)
}

// Window returns the requested delivery window, or nil.
func (c CreateOrderCommand) Window() *kernel.TimeWindow {
	if c.window == nil {
		return nil
	}
	w := *c.window
	return &w
}

// Priority returns the order priority.
func (c CreateOrderCommand) Priority() order.Priority {
	return c.priority
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setDestination(destination kernel.Location) error {
	if err := destination.Validate(); err != nil {
		return err
	}

	c.destination = destination
	return nil
}

func (c *CreateOrderCommand) setLines(lines []order.SKULine) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("lines")
	}

	c.lines = slices.Clone(lines)
	return nil
}

func (c *CreateOrderCommand) setWindow(window *kernel.TimeWindow) error {
	if window == nil {
		return nil
	}
	if err := window.Validate(); err != nil {
		return err
	}

	w := *window
	c.window = &w
	return nil
}

func (c *CreateOrderCommand) setPriority(priority order.Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}

	c.priority = priority
	return nil
}
