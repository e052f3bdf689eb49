package services_test

import (
	"math/rand"
	"testing"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/model/trip"

	"github.com/jaswdr/faker"
	"github.com/stretchr/testify/require"
)

var departAt = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

// testParams returns parameters loose enough that only the limit under test binds.
func testParams() trip.OptimizationParameters {
	p := trip.DefaultParameters(departAt)
	p.TargetSKUMin = 0
	p.TargetSKUMax = 1000
	p.MaxTripWeightKg = 1e6
	p.MaxTripVolumeM3 = 1e6
	p.MaxDeliveryStops = 1000
	p.MaxTripDurationHours = 1000
	p.MaxGeographicSpreadKm = 1e5
	p.TravelBufferMinutes = 0
	return p
}

type orderSpec struct {
	id       string
	lat, lon float64
	skus     int
	kg       float64
	m3       float64
	temp     order.TemperatureClass
	fragile  bool
	window   *kernel.TimeWindow
	priority order.Priority
}

func buildOrder(t *testing.T, s orderSpec) *order.Order {
	t.Helper()

	skus := max(1, s.skus)
	temp := s.temp
	if temp == order.TemperatureUnknown {
		temp = order.TemperatureAmbient
	}
	priority := s.priority
	if priority == order.PriorityUnknown {
		priority = order.PriorityNormal
	}

	lines := make([]order.SKULine, 0, skus)
	for i := range skus {
		line, err := order.NewSKULine(skuCode(i), 1, s.kg/float64(skus), s.m3/float64(skus), temp, s.fragile)
		require.NoError(t, err)
		lines = append(lines, line)
	}

	id := kernel.NewUUID()
	if s.id != "" {
		id = kernel.MustUUIDFromString(s.id)
	}

	o, err := order.NewOrder(id, kernel.MustNewLocation(s.lat, s.lon), lines, s.window, priority)
	require.NoError(t, err)
	return o
}

func skuCode(i int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	return "SKU-" + string(letters[i%26]) + string(letters[(i/26)%26]) + string(letters[(i/676)%26])
}

func window(t *testing.T, from, to string) *kernel.TimeWindow {
	t.Helper()
	start, err := time.Parse("15:04", from)
	require.NoError(t, err)
	end, err := time.Parse("15:04", to)
	require.NoError(t, err)

	day := departAt.Truncate(24 * time.Hour)
	w, err := kernel.NewTimeWindow(
		day.Add(time.Duration(start.Hour())*time.Hour+time.Duration(start.Minute())*time.Minute),
		day.Add(time.Duration(end.Hour())*time.Hour+time.Duration(end.Minute())*time.Minute),
	)
	require.NoError(t, err)
	return &w
}

// randomOrders scatters n orders within roughly 20 km of (lat, lon).
func randomOrders(t *testing.T, seed int64, n int, lat, lon float64) []*order.Order {
	t.Helper()
	f := faker.NewWithSeed(rand.NewSource(seed))

	orders := make([]*order.Order, 0, n)
	for range n {
		orders = append(orders, buildOrder(t, orderSpec{
			lat:     lat + f.Float64(4, -18, 18)/100,
			lon:     lon + f.Float64(4, -18, 18)/100,
			skus:    f.IntBetween(1, 40),
			kg:      f.Float64(2, 5, 900),
			m3:      f.Float64(3, 0, 5),
			fragile: f.Bool(),
		}))
	}
	return orders
}

// routeThrough builds a route visiting orders in the given order from (0, 0).
func routeThrough(t *testing.T, orders ...*order.Order) *route.Route {
	t.Helper()

	stops := make([]route.Waypoint, 0, len(orders))
	for _, o := range orders {
		w, err := route.NewWaypointFromOrder(o)
		require.NoError(t, err)
		stops = append(stops, w)
	}

	r, err := route.NewRoute(kernel.NewUUID(), kernel.NewUUID(), kernel.MustNewLocation(0, 0), departAt, stops)
	require.NoError(t, err)
	return r
}
