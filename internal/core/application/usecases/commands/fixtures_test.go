package commands_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/model/trip"

	"github.com/stretchr/testify/require"
)

var (
	departAt = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	plant    = kernel.MustNewLocation(-1.3000, 36.8000)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOrder(t *testing.T, lat, lon float64) *order.Order {
	t.Helper()

	line, err := order.NewSKULine("SKU-FLOUR-2KG", 10, 2, 0.002, order.TemperatureAmbient, false)
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), kernel.MustNewLocation(lat, lon), []order.SKULine{line}, nil, order.PriorityNormal)
	require.NoError(t, err)
	return o
}

func newPlannedRoute(t *testing.T, orders ...*order.Order) *route.Route {
	t.Helper()

	waypoints := make([]route.Waypoint, 0, len(orders))
	for _, o := range orders {
		require.NoError(t, o.MarkPlanned())
		w, err := route.NewWaypointFromOrder(o)
		require.NoError(t, err)
		waypoints = append(waypoints, w)
	}

	r, err := route.NewRoute(kernel.NewUUID(), kernel.NewUUID(), plant, departAt, waypoints)
	require.NoError(t, err)
	return r
}

func params() trip.OptimizationParameters {
	return trip.DefaultParameters(departAt)
}
