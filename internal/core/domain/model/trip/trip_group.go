package trip

import (
	"errors"
	"slices"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/pkg/errs"
)

// ErrTripGroupIsNotConstructed is returned when a TripGroup was not created via NewTripGroup.
var ErrTripGroupIsNotConstructed = errors.New("TripGroup must be created via NewTripGroup constructor")

// TripGroup is a set of orders that travel on one vehicle. It is created by the
// consolidation engine and never mutated afterwards; aggregates are computed once.
type TripGroup struct {
	id          kernel.UUID
	orders      []*order.Order
	weightKg    float64
	volumeM3    float64
	skuCount    int
	center      kernel.Location
	maxSpreadKm float64

	isConstructed bool
}

// NewTripGroup creates a group and computes weight, volume, SKU count, centroid and spread.
//
// Parameters:
//   - id: group identifier
//   - orders: member orders, at least one, each constructed
//
// Returns:
//   - *TripGroup: the immutable group
//   - error: validation error for the id or any order
func NewTripGroup(id kernel.UUID, orders []*order.Order) (*TripGroup, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, errs.NewValueIsRequiredError("orders")
	}

	g := &TripGroup{
		id:            id,
		orders:        slices.Clone(orders),
		isConstructed: true,
	}

	points := make([]kernel.Location, 0, len(orders))
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, err
		}
		g.weightKg += o.WeightKg()
		g.volumeM3 += o.VolumeM3()
		g.skuCount += o.SKUCount()
		points = append(points, o.Destination())
	}
	g.center = kernel.Centroid(points)
	g.maxSpreadKm = kernel.MaxSpreadKm(points)

	return g, nil
}

// Validate reports whether the group was built by NewTripGroup.
func (g *TripGroup) Validate() error {
	if g == nil || !g.isConstructed {
		return ErrTripGroupIsNotConstructed
	}
	return nil
}

// ID returns the group identifier.
func (g *TripGroup) ID() kernel.UUID { return g.id }

// Orders returns the member orders. Callers must treat them as read-only.
func (g *TripGroup) Orders() []*order.Order { return slices.Clone(g.orders) }

// OrderIDs returns member ids in membership order.
func (g *TripGroup) OrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(g.orders))
	for _, o := range g.orders {
		ids = append(ids, o.ID())
	}
	return ids
}

// WeightKg returns the summed order weight.
func (g *TripGroup) WeightKg() float64 { return g.weightKg }

// VolumeM3 returns the summed order volume.
func (g *TripGroup) VolumeM3() float64 { return g.volumeM3 }

// SKUCount returns the sum of each member's distinct SKU count.
func (g *TripGroup) SKUCount() int { return g.skuCount }

// GeographicCenter returns the centroid of the member destinations.
func (g *TripGroup) GeographicCenter() kernel.Location { return g.center }

// MaxSpreadKm returns the largest pairwise distance between member destinations.
func (g *TripGroup) MaxSpreadKm() float64 { return g.maxSpreadKm }

// StopCount returns the number of member orders.
func (g *TripGroup) StopCount() int { return len(g.orders) }
