package services_test

import (
	"testing"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteImprover_RemovesBacktracking(t *testing.T) {
	p1 := buildOrder(t, orderSpec{lat: 0, lon: 1, kg: 1})
	p2 := buildOrder(t, orderSpec{lat: 0, lon: 3, kg: 1})
	p3 := buildOrder(t, orderSpec{lat: 0, lon: 2, kg: 1})
	p4 := buildOrder(t, orderSpec{lat: 0, lon: 4, kg: 1})
	r := routeThrough(t, p1, p2, p3, p4)
	params := testParams()

	improved, err := services.NewRouteImprover().Improve(r, params)

	require.NoError(t, err)
	assert.Equal(t, []kernel.UUID{p1.ID(), p3.ID(), p2.ID(), p4.ID()}, improved.OrderIDs())
	assertContiguous(t, improved)
	assert.InDelta(t, kernel.HaversineKm(r.Origin(), p4.Destination()), improved.TotalDistanceKm(), 1e-6)
	assert.InDelta(t, 1.0/3, improved.OptimizationScore(), 1e-6)
	assert.InDelta(t, params.DurationHours(improved.TotalDistanceKm(), 4), improved.EstimatedDurationHours(), 1e-9)
	assert.False(t, improved.IterationCapHit())
	assert.Equal(t, r.Version()+1, improved.Version())

	// the input route is untouched
	assert.Equal(t, []kernel.UUID{p1.ID(), p2.ID(), p3.ID(), p4.ID()}, r.OrderIDs())
}

func TestRouteImprover_NeverLengthensAndIsIdempotent(t *testing.T) {
	params := testParams()
	origin := kernel.MustNewLocation(-1.29, 36.82)

	for _, seed := range []int64{3, 11, 99} {
		orders := randomOrders(t, seed, 25, -1.29, 36.82)
		initial, err := services.NewRouteConstructor().Construct(groupOf(t, orders...), origin, params)
		require.NoError(t, err)

		once, err := services.NewRouteImprover().Improve(initial, params)
		require.NoError(t, err)
		twice, err := services.NewRouteImprover().Improve(once, params)
		require.NoError(t, err)

		assert.LessOrEqual(t, once.TotalDistanceKm(), initial.TotalDistanceKm()+1e-9, "seed %d", seed)
		assert.LessOrEqual(t, twice.TotalDistanceKm(), once.TotalDistanceKm()+1e-9, "seed %d", seed)
		assert.GreaterOrEqual(t, once.OptimizationScore(), 0.0)
		assert.LessOrEqual(t, once.OptimizationScore(), 1.0)
		assertContiguous(t, once)
		assert.ElementsMatch(t, initial.OrderIDs(), once.OrderIDs())
		if !once.IterationCapHit() {
			assert.Equal(t, once.OrderIDs(), twice.OrderIDs(), "seed %d", seed)
			assert.Zero(t, twice.OptimizationScore())
		}
	}
}

func TestRouteImprover_KeepsDeliveredHead(t *testing.T) {
	p2 := buildOrder(t, orderSpec{lat: 0, lon: 3, kg: 1})
	p1 := buildOrder(t, orderSpec{lat: 0, lon: 1, kg: 1})
	p3 := buildOrder(t, orderSpec{lat: 0, lon: 2, kg: 1})
	r := routeThrough(t, p2, p1, p3)
	r, err := r.Revise(route.WithDeliveryStatus(p2.ID(), route.StatusDelivered))
	require.NoError(t, err)

	improved, err := services.NewRouteImprover().Improve(r, testParams())

	require.NoError(t, err)
	assert.Equal(t, p2.ID(), improved.OrderIDs()[0])
	assert.Equal(t, []kernel.UUID{p2.ID(), p3.ID(), p1.ID()}, improved.OrderIDs())
}

func TestRouteImprover_RejectsUnconstructedRoute(t *testing.T) {
	_, err := services.NewRouteImprover().Improve(&route.Route{}, testParams())
	require.ErrorIs(t, err, route.ErrRouteIsNotConstructed)
}
