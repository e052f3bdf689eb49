package services_test

import (
	"testing"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plannedRoute(t *testing.T, seed int64) *route.Route {
	t.Helper()
	params := testParams()
	initial, err := services.NewRouteConstructor().Construct(
		groupOf(t, randomOrders(t, seed, 12, -1.29, 36.82)...), kernel.MustNewLocation(-1.29, 36.82), params)
	require.NoError(t, err)
	improved, err := services.NewRouteImprover().Improve(initial, params)
	require.NoError(t, err)
	return improved
}

func TestRealTimeAdjuster_NeutralSignalsKeepRoute(t *testing.T) {
	r := plannedRoute(t, 5)
	delays := services.DelaySignals{}
	traffic := services.TrafficSignals{}
	for _, id := range r.OrderIDs() {
		delays[id] = 0
		traffic[id] = 0
	}

	adjusted, err := services.NewRealTimeAdjuster().Adjust(r, delays, traffic, testParams())

	require.NoError(t, err)
	assert.Equal(t, r.OrderIDs(), adjusted.OrderIDs())
	assert.InDelta(t, r.TotalDistanceKm(), adjusted.TotalDistanceKm(), 1e-9)
	assert.Equal(t, r.Version()+1, adjusted.Version())
}

func TestRealTimeAdjuster_NilSignals(t *testing.T) {
	r := plannedRoute(t, 8)

	adjusted, err := services.NewRealTimeAdjuster().Adjust(r, nil, nil, testParams())

	require.NoError(t, err)
	assert.Equal(t, r.OrderIDs(), adjusted.OrderIDs())
	assert.Equal(t, r.Version()+1, adjusted.Version())
}

func TestRealTimeAdjuster_TrafficReordersStops(t *testing.T) {
	congested := buildOrder(t, orderSpec{lat: 0, lon: 0.1, kg: 1})
	clear := buildOrder(t, orderSpec{lat: 0, lon: 0.2, kg: 1})
	r := routeThrough(t, congested, clear)
	params := testParams()

	adjusted, err := services.NewRealTimeAdjuster().Adjust(r, nil,
		services.TrafficSignals{congested.ID(): 10}, params)

	require.NoError(t, err)
	assert.Equal(t, []kernel.UUID{clear.ID(), congested.ID()}, adjusted.OrderIDs())
	assertContiguous(t, adjusted)

	expected := kernel.HaversineKm(r.Origin(), clear.Destination()) +
		kernel.HaversineKm(clear.Destination(), congested.Destination())
	assert.InDelta(t, expected, adjusted.TotalDistanceKm(), 1e-9)
	assert.Greater(t, adjusted.EstimatedDurationHours(), params.DurationHours(expected, 2))
}

func TestRealTimeAdjuster_KeepsOrderWhenReorderingBreaksWindows(t *testing.T) {
	a := buildOrder(t, orderSpec{lat: 0, lon: 0.1, kg: 1, window: window(t, "08:00", "08:30")})
	b := buildOrder(t, orderSpec{lat: 0, lon: 0.2, kg: 1, window: window(t, "09:00", "09:30")})
	c := buildOrder(t, orderSpec{lat: 0, lon: 0.3, kg: 1, window: window(t, "10:00", "10:30")})
	r, err := routeThrough(t, a, b, c).Revise(services.NewConstraintValidator().Revision(testParams()))
	require.NoError(t, err)
	require.True(t, r.ConstraintsSatisfied())

	adjusted, err := services.NewRealTimeAdjuster().Adjust(r, nil, services.TrafficSignals{b.ID(): 5}, testParams())

	require.NoError(t, err)
	assert.Equal(t, []kernel.UUID{a.ID(), b.ID(), c.ID()}, adjusted.OrderIDs())
	assert.True(t, adjusted.ConstraintsSatisfied())
	assert.Empty(t, adjusted.Violations())
	assert.Equal(t, r.Version()+1, adjusted.Version())
	assert.Greater(t, adjusted.EstimatedDurationHours(), r.EstimatedDurationHours())
}

func TestRealTimeAdjuster_DelayMarksStop(t *testing.T) {
	a := buildOrder(t, orderSpec{lat: 0, lon: 0.1, kg: 1})
	b := buildOrder(t, orderSpec{lat: 0, lon: 0.2, kg: 1})
	r := routeThrough(t, a, b)

	adjusted, err := services.NewRealTimeAdjuster().Adjust(r, services.DelaySignals{b.ID(): 30}, nil, testParams())

	require.NoError(t, err)
	w, ok := adjusted.Waypoint(b.ID())
	require.True(t, ok)
	assert.Equal(t, route.StatusDelayed, w.Status())
	require.NotNil(t, w.EstimatedArrival())
	assert.False(t, w.EstimatedArrival().Before(departAt.Add(30*time.Minute)))

	untouched, _ := adjusted.Waypoint(a.ID())
	assert.Equal(t, route.StatusScheduled, untouched.Status())
}

func TestRealTimeAdjuster_DeliveredStopsStayInFront(t *testing.T) {
	a := buildOrder(t, orderSpec{lat: 0, lon: 1, kg: 1})
	b := buildOrder(t, orderSpec{lat: 0, lon: 2, kg: 1})
	c := buildOrder(t, orderSpec{lat: 0, lon: 3, kg: 1})
	r, err := routeThrough(t, a, b, c).Revise(route.WithDeliveryStatus(c.ID(), route.StatusDelivered))
	require.NoError(t, err)

	adjusted, err := services.NewRealTimeAdjuster().Adjust(r, nil, services.TrafficSignals{a.ID(): 3}, testParams())

	require.NoError(t, err)
	ids := adjusted.OrderIDs()
	assert.Equal(t, c.ID(), ids[0])
	assert.ElementsMatch(t, []kernel.UUID{a.ID(), b.ID()}, ids[1:])
	first, _ := adjusted.Waypoint(c.ID())
	assert.Equal(t, 1, first.Sequence())
	assert.Equal(t, route.StatusDelivered, first.Status())
}

func TestRealTimeAdjuster_RejectsUnconstructedRoute(t *testing.T) {
	_, err := services.NewRealTimeAdjuster().Adjust(nil, nil, nil, testParams())
	require.ErrorIs(t, err, route.ErrRouteIsNotConstructed)
}
