package services

import (
	"fmt"
	"math"
	"slices"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/pkg/errs"
)

// ConsolidationResult is the output of SKUConsolidator.Consolidate.
type ConsolidationResult struct {
	Groups     []*trip.TripGroup
	Compliance trip.ComplianceReport
}

// SKUConsolidator partitions orders into trip groups with greedy geographic-first bin packing.
//
// Algorithm:
//   - orders are sorted by descending SKU count, ties by order id
//   - each order joins the open group with the nearest centroid that stays within
//     weight, volume, spread, stop and SKU target max limits; ties go to the lowest
//     resulting spread
//   - an order no group accepts seeds a new group
//   - groups below the SKU target min are merged into the nearest group that can
//     take them within weight, volume, spread and stop limits, otherwise they are
//     flagged; a merge may push the target over the SKU target max, which is then
//     flagged instead
//
// Weight and volume are hard limits. SKU targets are reported in the compliance
// report. SKU lines are never split and orders are never dropped.
//
// Example:
//
//	result, err := services.NewSKUConsolidator().Consolidate(orders, params)
//	if errors.Is(err, errs.ErrInfeasibleInput) {
//	    // empty input or an order bigger than a whole trip
//	}
type SKUConsolidator struct{}

// NewSKUConsolidator creates a SKUConsolidator.
func NewSKUConsolidator() SKUConsolidator {
	return SKUConsolidator{}
}

// bucket is a trip group under construction.
type bucket struct {
	orders   []*order.Order
	points   []kernel.Location
	weightKg float64
	volumeM3 float64
	skuCount int
	center   kernel.Location
	spreadKm float64
	classes  []order.TemperatureClass
}

// Consolidate groups orders under params.
//
// Parameters:
//   - orders: candidate orders, at least one
//   - params: validated optimization parameters
//
// Returns:
//   - ConsolidationResult: groups in creation order and their compliance verdicts
//   - error: InfeasibleInputError for empty input, invalid parameters, duplicate
//     orders or an order heavier or bulkier than a whole trip
func (c SKUConsolidator) Consolidate(orders []*order.Order, params trip.OptimizationParameters) (ConsolidationResult, error) {
	if err := params.Validate(); err != nil {
		return ConsolidationResult{}, errs.NewInfeasibleInputErrorWithCause("params", "invalid optimization parameters", err)
	}
	if err := c.checkOrders(orders, params); err != nil {
		return ConsolidationResult{}, err
	}

	sorted := slices.Clone(orders)
	slices.SortStableFunc(sorted, func(a, b *order.Order) int {
		if a.SKUCount() != b.SKUCount() {
			return b.SKUCount() - a.SKUCount()
		}
		return a.ID().Compare(b.ID())
	})

	buckets := make([]*bucket, 0)
	for _, o := range sorted {
		if target := c.nearestAccepting(buckets, o, params); target != nil {
			target.add(o)
			continue
		}
		b := &bucket{}
		b.add(o)
		buckets = append(buckets, b)
	}

	buckets = c.mergeBelowTarget(buckets, params)

	result := ConsolidationResult{
		Groups: make([]*trip.TripGroup, 0, len(buckets)),
	}
	for _, b := range buckets {
		g, err := trip.NewTripGroup(kernel.NewUUID(), b.orders)
		if err != nil {
			return ConsolidationResult{}, err
		}
		result.Groups = append(result.Groups, g)
		result.Compliance.Groups = append(result.Compliance.Groups, trip.Assess(g, params))
	}

	return result, nil
}

func (c SKUConsolidator) checkOrders(orders []*order.Order, params trip.OptimizationParameters) error {
	if len(orders) == 0 {
		return errs.NewInfeasibleInputError("orders", "no orders to consolidate")
	}

	seen := make(map[kernel.UUID]struct{}, len(orders))
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return errs.NewInfeasibleInputErrorWithCause("orders", "order is not valid", err)
		}
		if _, dup := seen[o.ID()]; dup {
			return errs.NewInfeasibleInputError("orders", fmt.Sprintf("order %s is listed more than once", o.ID()))
		}
		seen[o.ID()] = struct{}{}

		if o.WeightKg() > params.MaxTripWeightKg {
			return errs.NewInfeasibleInputError("orders", fmt.Sprintf(
				"order %s weighs %.2f kg, trip limit is %.2f kg", o.ID(), o.WeightKg(), params.MaxTripWeightKg))
		}
		if o.VolumeM3() > params.MaxTripVolumeM3 {
			return errs.NewInfeasibleInputError("orders", fmt.Sprintf(
				"order %s occupies %.3f m3, trip limit is %.3f m3", o.ID(), o.VolumeM3(), params.MaxTripVolumeM3))
		}
	}
	return nil
}

func (c SKUConsolidator) nearestAccepting(buckets []*bucket, o *order.Order, params trip.OptimizationParameters) *bucket {
	var (
		best       *bucket
		bestDist   = math.Inf(1)
		bestSpread = math.Inf(1)
	)

	for _, b := range buckets {
		spread, ok := b.accepts(o, params)
		if !ok {
			continue
		}
		d := kernel.HaversineKm(b.center, o.Destination())
		if d < bestDist-improvementEpsilon || (math.Abs(d-bestDist) <= improvementEpsilon && spread < bestSpread) {
			best, bestDist, bestSpread = b, d, spread
		}
	}

	return best
}

func (c SKUConsolidator) mergeBelowTarget(buckets []*bucket, params trip.OptimizationParameters) []*bucket {
	for {
		merged := false
		for i, src := range buckets {
			if src.skuCount >= params.TargetSKUMin {
				continue
			}

			target := -1
			bestDist := math.Inf(1)
			for j, dst := range buckets {
				if i == j || !dst.canAbsorb(src, params) {
					continue
				}
				if d := kernel.HaversineKm(src.center, dst.center); d < bestDist-improvementEpsilon {
					target, bestDist = j, d
				}
			}
			if target < 0 {
				continue
			}

			for _, o := range src.orders {
				buckets[target].add(o)
			}
			buckets = slices.Delete(buckets, i, i+1)
			merged = true
			break
		}
		if !merged {
			return buckets
		}
	}
}

func (b *bucket) add(o *order.Order) {
	b.spreadKm = b.spreadWith(o.Destination())
	b.orders = append(b.orders, o)
	b.points = append(b.points, o.Destination())
	b.weightKg += o.WeightKg()
	b.volumeM3 += o.VolumeM3()
	b.skuCount += o.SKUCount()
	b.center = kernel.Centroid(b.points)
	for _, cl := range o.TemperatureClasses() {
		if !slices.Contains(b.classes, cl) {
			b.classes = append(b.classes, cl)
		}
	}
	slices.Sort(b.classes)
}

// accepts reports whether o fits and returns the resulting spread.
func (b *bucket) accepts(o *order.Order, params trip.OptimizationParameters) (float64, bool) {
	if b.weightKg+o.WeightKg() > params.MaxTripWeightKg ||
		b.volumeM3+o.VolumeM3() > params.MaxTripVolumeM3 ||
		b.skuCount+o.SKUCount() > params.TargetSKUMax ||
		len(b.orders)+1 > params.MaxDeliveryStops {
		return 0, false
	}
	if params.SeparateTemperatureClasses && !slices.Equal(b.classes, o.TemperatureClasses()) {
		return 0, false
	}

	spread := b.spreadWith(o.Destination())
	if spread > params.MaxGeographicSpreadKm {
		return 0, false
	}
	return spread, true
}

// canAbsorb reports whether src may merge into b. A group already above the SKU
// target never absorbs another one, so an oversized order keeps its own trip.
func (b *bucket) canAbsorb(src *bucket, params trip.OptimizationParameters) bool {
	if b.skuCount > params.TargetSKUMax {
		return false
	}
	if b.weightKg+src.weightKg > params.MaxTripWeightKg ||
		b.volumeM3+src.volumeM3 > params.MaxTripVolumeM3 ||
		len(b.orders)+len(src.orders) > params.MaxDeliveryStops {
		return false
	}
	if params.SeparateTemperatureClasses && !slices.Equal(b.classes, src.classes) {
		return false
	}

	all := append(slices.Clone(b.points), src.points...)
	return kernel.MaxSpreadKm(all) <= params.MaxGeographicSpreadKm
}

func (b *bucket) spreadWith(p kernel.Location) float64 {
	spread := b.spreadKm
	for _, q := range b.points {
		spread = max(spread, kernel.HaversineKm(p, q))
	}
	return spread
}
