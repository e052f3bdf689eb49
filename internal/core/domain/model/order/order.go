package order

import (
	"errors"
	"slices"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order was not created through NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Order is a retailer delivery waiting to be grouped into a trip. It is the aggregate
// root for SKU lines; weight, volume and SKU count are always derived from them.
//
// Order follows these invariants:
//   - valid identifier and destination
//   - at least one constructed SKU line
//   - optional window, if present it is constructed
//   - priority is one of the known priorities
//   - status transitions follow Pending -> Planned -> Delivered
type Order struct {
	id          kernel.UUID
	destination kernel.Location
	lines       []SKULine
	window      *kernel.TimeWindow
	priority    Priority
	status      Status

	isConstructed bool
}

// NewOrder creates a pending order.
//
// Parameters:
//   - id: order identifier
//   - destination: delivery coordinates of the retailer
//   - lines: SKU lines, at least one
//   - window: optional delivery window, nil when the retailer accepts any time
//   - priority: window strictness, used when resolving window conflicts
//
// Returns:
//   - *Order: the created order in Pending status
//   - error: joined validation errors
//
// Example:
//
//	line, _ := order.NewSKULine("SKU-COLA-500", 24, 0.55, 0.0006, order.TemperatureAmbient, false)
//	o, err := order.NewOrder(kernel.NewUUID(), destination, []order.SKULine{line}, nil, order.PriorityNormal)
func NewOrder(
	id kernel.UUID,
	destination kernel.Location,
	lines []SKULine,
	window *kernel.TimeWindow,
	priority Priority,
) (*Order, error) {
	return RestoreOrder(id, destination, lines, window, priority, Pending)
}

// RestoreOrder rebuilds an order in any status, e.g. from persistence.
// It applies the same validation as NewOrder plus a status check.
func RestoreOrder(
	id kernel.UUID,
	destination kernel.Location,
	lines []SKULine,
	window *kernel.TimeWindow,
	priority Priority,
	status Status,
) (*Order, error) {
	o := &Order{isConstructed: true}

	if err := errors.Join(
		o.setID(id),
		o.setDestination(destination),
		o.setLines(lines),
		o.setWindow(window),
		o.setPriority(priority),
		o.setStatus(status),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate reports whether the order was built through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	if o == nil || other == nil {
		return false
	}
	return o.id.IsEqual(other.id)
}

// ID returns the order identifier.
func (o *Order) ID() kernel.UUID { return o.id }

// Destination returns the delivery coordinates.
func (o *Order) Destination() kernel.Location { return o.destination }

// Lines returns a copy of the SKU lines.
func (o *Order) Lines() []SKULine { return slices.Clone(o.lines) }

// Window returns a copy of the delivery window, or nil.
func (o *Order) Window() *kernel.TimeWindow {
	if o.window == nil {
		return nil
	}
	w := *o.window
	return &w
}

// Priority returns the window strictness.
func (o *Order) Priority() Priority { return o.priority }

// Status returns the lifecycle state.
func (o *Order) Status() Status { return o.status }

// WeightKg returns the total weight of all lines.
func (o *Order) WeightKg() float64 {
	total := 0.0
	for _, l := range o.lines {
		total += l.WeightKg()
	}
	return total
}

// VolumeM3 returns the total volume of all lines.
func (o *Order) VolumeM3() float64 {
	total := 0.0
	for _, l := range o.lines {
		total += l.VolumeM3()
	}
	return total
}

// SKUCount returns the number of distinct SKU codes on the order.
func (o *Order) SKUCount() int {
	codes := make(map[string]struct{}, len(o.lines))
	for _, l := range o.lines {
		codes[l.Code()] = struct{}{}
	}
	return len(codes)
}

// TemperatureClasses returns the distinct classes of the order's lines in ascending order.
func (o *Order) TemperatureClasses() []TemperatureClass {
	classes := make([]TemperatureClass, 0, 3)
	for _, l := range o.lines {
		if !slices.Contains(classes, l.Temperature()) {
			classes = append(classes, l.Temperature())
		}
	}
	slices.Sort(classes)
	return classes
}

// HasFragile reports whether any line is fragile.
func (o *Order) HasFragile() bool {
	return slices.ContainsFunc(o.lines, SKULine.Fragile)
}

// MarkPlanned moves a pending order to Planned once it belongs to a persisted route.
func (o *Order) MarkPlanned() error {
	next, err := o.status.Plan()
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

// MarkDelivered moves a planned order to Delivered.
func (o *Order) MarkDelivered() error {
	next, err := o.status.Deliver()
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setDestination(destination kernel.Location) error {
	if err := destination.Validate(); err != nil {
		return err
	}
	o.destination = destination
	return nil
}

func (o *Order) setLines(lines []SKULine) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("lines")
	}
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	o.lines = slices.Clone(lines)
	return nil
}

func (o *Order) setWindow(window *kernel.TimeWindow) error {
	if window == nil {
		o.window = nil
		return nil
	}
	if err := window.Validate(); err != nil {
		return err
	}
	w := *window
	o.window = &w
	return nil
}

func (o *Order) setPriority(priority Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	o.priority = priority
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}
