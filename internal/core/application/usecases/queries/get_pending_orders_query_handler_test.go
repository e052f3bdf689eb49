package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "tripplanner/internal/adapters/out/postgres"
	"tripplanner/internal/adapters/out/postgres/orderrepo"
	"tripplanner/internal/core/application/usecases/queries"
	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

type GetPendingOrdersQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetPendingOrdersQueryHandler
	orderRepo *orderrepo.GormOrderRepository
}

func (suite *GetPendingOrdersQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(postgres_adapter.Models()...))

	suite.handler = queries.NewGetPendingOrdersQueryHandler(db)
	suite.orderRepo = orderrepo.NewGormOrderRepository(db, noopTracker{})
}

func (suite *GetPendingOrdersQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetPendingOrdersQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, order_lines").Error)
}

func (suite *GetPendingOrdersQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsEmptySlice() {
	result, err := suite.handler.Handle(context.Background(), queries.NewGetPendingOrdersQuery())

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *GetPendingOrdersQueryHandlerTestSuite) TestHandle_AggregatesLines() {
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	window, err := kernel.NewTimeWindow(start, start.Add(time.Hour))
	suite.Require().NoError(err)

	o := suite.createOrder(&window,
		suite.line("SKU-SUGAR-1KG", 10, 1, 0.001),
		suite.line("SKU-SALT-500G", 4, 0.5, 0.0005),
		suite.line("SKU-SUGAR-1KG", 2, 1, 0.001),
	)
	suite.Require().NoError(suite.orderRepo.Add(ctx, o))

	result, err := suite.handler.Handle(ctx, queries.NewGetPendingOrdersQuery())
	suite.Require().NoError(err)
	suite.Require().Len(result, 1)

	got := result[0]
	suite.Equal(o.ID(), got.ID)
	suite.Equal(2, got.SKUCount)
	suite.InDelta(14.0, got.WeightKg, 1e-9)
	suite.InDelta(0.014, got.VolumeM3, 1e-9)
	suite.Equal(order.PriorityUrgent, got.Priority)
	suite.InDelta(-1.2921, got.Destination.Lat(), 1e-9)
	suite.Require().NotNil(got.WindowStart)
	suite.True(got.WindowStart.Equal(start))
	suite.Require().NotNil(got.WindowEnd)
}

func (suite *GetPendingOrdersQueryHandlerTestSuite) TestHandle_WithMixedStatuses_ReturnsOnlyPendingSortedByID() {
	ctx := context.Background()

	pending := make(map[kernel.UUID]bool)
	for range 3 {
		o := suite.createOrder(nil, suite.line("SKU-TEA-250G", 1, 0.25, 0.0003))
		suite.Require().NoError(suite.orderRepo.Add(ctx, o))
		pending[o.ID()] = true
	}

	planned := suite.createOrder(nil, suite.line("SKU-TEA-250G", 1, 0.25, 0.0003))
	suite.Require().NoError(planned.MarkPlanned())
	suite.Require().NoError(suite.orderRepo.Add(ctx, planned))

	delivered := suite.createOrder(nil, suite.line("SKU-TEA-250G", 1, 0.25, 0.0003))
	suite.Require().NoError(delivered.MarkPlanned())
	suite.Require().NoError(delivered.MarkDelivered())
	suite.Require().NoError(suite.orderRepo.Add(ctx, delivered))

	result, err := suite.handler.Handle(ctx, queries.NewGetPendingOrdersQuery())
	suite.Require().NoError(err)
	suite.Len(result, 3)
	for i, r := range result {
		suite.True(pending[r.ID], "Order %s should be pending", r.ID)
		suite.Nil(r.WindowStart)
		if i > 0 {
			suite.Less(result[i-1].ID.String(), r.ID.String())
		}
	}
}

func (suite *GetPendingOrdersQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	result, err := suite.handler.Handle(context.Background(), queries.GetPendingOrdersQuery{})

	suite.Require().ErrorIs(err, queries.ErrGetPendingOrdersQueryIsNotConstructed)
	suite.Nil(result)
}

func (suite *GetPendingOrdersQueryHandlerTestSuite) TestHandle_ContextCancellation_ReturnsError() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := suite.handler.Handle(ctx, queries.NewGetPendingOrdersQuery())

	suite.Require().Error(err)
	suite.Nil(result)
}

func (suite *GetPendingOrdersQueryHandlerTestSuite) line(code string, qty int, kg, m3 float64) order.SKULine {
	l, err := order.NewSKULine(code, qty, kg, m3, order.TemperatureAmbient, false)
	suite.Require().NoError(err)
	return l
}

func (suite *GetPendingOrdersQueryHandlerTestSuite) createOrder(window *kernel.TimeWindow, lines ...order.SKULine) *order.Order {
	o, err := order.NewOrder(kernel.NewUUID(), kernel.MustNewLocation(-1.2921, 36.8219), lines, window, order.PriorityUrgent)
	suite.Require().NoError(err)
	return o
}

func TestGetPendingOrdersQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetPendingOrdersQueryHandlerTestSuite))
}
