package queries_test

import (
	"context"
	"testing"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var departAt = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func params() trip.OptimizationParameters {
	return trip.DefaultParameters(departAt)
}

type MockRouteRepository struct{ mock.Mock }

func (m *MockRouteRepository) Add(ctx context.Context, r *route.Route) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRouteRepository) Update(ctx context.Context, r *route.Route, expectedVersion int64) error {
	return m.Called(ctx, r, expectedVersion).Error(0)
}

func (m *MockRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*route.Route); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	return m.Called().Get(0).(ports.OrderRepository)
}

func (m *MockUoW) RouteRepository() ports.RouteRepository {
	return m.Called().Get(0).(ports.RouteRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() ports.UnitOfWork {
	return m.Called().Get(0).(ports.UnitOfWork)
}

// routeReader wires a factory whose unit of work serves repo.
func routeReader(repo *MockRouteRepository) *MockUoWFactory {
	uow := new(MockUoW)
	uow.On("RouteRepository").Return(repo)
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow)
	return factory
}

type stop struct {
	lon    float64
	window *kernel.TimeWindow
}

func buildRoute(t *testing.T, stops ...stop) *route.Route {
	t.Helper()

	waypoints := make([]route.Waypoint, 0, len(stops))
	for _, s := range stops {
		line, err := order.NewSKULine("SKU-JUICE-1L", 6, 1.1, 0.0012, order.TemperatureAmbient, false)
		require.NoError(t, err)
		o, err := order.NewOrder(kernel.NewUUID(), kernel.MustNewLocation(0, s.lon), []order.SKULine{line}, s.window, order.PriorityNormal)
		require.NoError(t, err)
		w, err := route.NewWaypointFromOrder(o)
		require.NoError(t, err)
		waypoints = append(waypoints, w)
	}

	r, err := route.NewRoute(kernel.NewUUID(), kernel.NewUUID(), kernel.MustNewLocation(0, 0), departAt, waypoints)
	require.NoError(t, err)
	return r
}

func window(t *testing.T, from, to time.Duration) *kernel.TimeWindow {
	t.Helper()

	w, err := kernel.NewTimeWindow(departAt.Add(from), departAt.Add(to))
	require.NoError(t, err)
	return &w
}
