package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"tripplanner/internal/adapters/out/postgres/orderrepo"
	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite verifies order persistence against a real PostgreSQL.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
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

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.OrderLineDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, order_lines").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ValidOrder_PersistsOrderAndLines() {
	ctx := context.Background()
	o := suite.createTestOrder(nil)

	suite.tracker.On("TrackAggregate", o.ID(), o).Once()

	suite.Require().NoError(suite.repository.Add(ctx, o))

	suite.assertCount("orders", 1)
	suite.assertCount("order_lines", 2)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_UnconstructedOrder_ReturnsError() {
	err := suite.repository.Add(context.Background(), &order.Order{})

	suite.Require().ErrorIs(err, order.ErrOrderIsNotConstructed)
	suite.assertCount("orders", 0)
	suite.tracker.AssertNotCalled(suite.T(), "TrackAggregate", mock.Anything, mock.Anything)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_ExistingOrder_RestoresAggregate() {
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	window, err := kernel.NewTimeWindow(start, start.Add(90*time.Minute))
	suite.Require().NoError(err)
	original := suite.createTestOrder(&window)

	suite.tracker.On("TrackAggregate", original.ID(), original).Once()
	suite.Require().NoError(suite.repository.Add(ctx, original))

	restored, err := suite.repository.Get(ctx, original.ID())
	suite.Require().NoError(err)

	suite.Equal(original.ID(), restored.ID())
	suite.InDelta(original.Destination().Lat(), restored.Destination().Lat(), 1e-9)
	suite.InDelta(original.Destination().Lon(), restored.Destination().Lon(), 1e-9)
	suite.Equal(order.PriorityHigh, restored.Priority())
	suite.Equal(order.Pending, restored.Status())
	suite.Require().NotNil(restored.Window())
	suite.True(restored.Window().Start().Equal(window.Start()))
	suite.True(restored.Window().End().Equal(window.End()))

	lines := restored.Lines()
	suite.Require().Len(lines, 2)
	suite.Equal("SKU-YOGHURT-500G", lines[0].Code())
	suite.Equal(order.TemperatureRefrigerated, lines[0].Temperature())
	suite.Equal("SKU-EGGS-30", lines[1].Code())
	suite.True(lines[1].Fragile())
	suite.InDelta(original.WeightKg(), restored.WeightKg(), 1e-9)
	suite.Equal(original.SKUCount(), restored.SKUCount())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	retrieved, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Nil(retrieved)
	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_StatusTransitions() {
	ctx := context.Background()
	o := suite.createTestOrder(nil)
	suite.tracker.On("TrackAggregate", o.ID(), o).Times(3)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	suite.Require().NoError(o.MarkPlanned())
	suite.Require().NoError(suite.repository.Update(ctx, o))

	planned, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Planned, planned.Status())

	suite.Require().NoError(o.MarkDelivered())
	suite.Require().NoError(suite.repository.Update(ctx, o))

	delivered, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Delivered, delivered.Status())
	suite.Len(delivered.Lines(), 2)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NonExistentOrder_ReturnsNotFoundError() {
	err := suite.repository.Update(context.Background(), suite.createTestOrder(nil))

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.tracker.AssertNotCalled(suite.T(), "TrackAggregate", mock.Anything, mock.Anything)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllPending_ReturnsOnlyPendingSortedByID() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	pending := make(map[kernel.UUID]bool)
	for range 3 {
		o := suite.createTestOrder(nil)
		suite.Require().NoError(suite.repository.Add(ctx, o))
		pending[o.ID()] = true
	}
	planned := suite.createTestOrder(nil)
	suite.Require().NoError(planned.MarkPlanned())
	suite.Require().NoError(suite.repository.Add(ctx, planned))

	result, err := suite.repository.GetAllPending(ctx)
	suite.Require().NoError(err)
	suite.Len(result, 3)
	for i, o := range result {
		suite.True(pending[o.ID()])
		suite.Len(o.Lines(), 2)
		if i > 0 {
			suite.Less(result[i-1].ID().String(), o.ID().String())
		}
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllPending_Empty_ReturnsEmptySlice() {
	result, err := suite.repository.GetAllPending(context.Background())

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder(window *kernel.TimeWindow) *order.Order {
	yoghurt, err := order.NewSKULine("SKU-YOGHURT-500G", 12, 0.52, 0.0006, order.TemperatureRefrigerated, false)
	suite.Require().NoError(err)
	eggs, err := order.NewSKULine("SKU-EGGS-30", 4, 1.9, 0.004, order.TemperatureAmbient, true)
	suite.Require().NoError(err)

	o, err := order.NewOrder(
		kernel.NewUUID(),
		kernel.MustNewLocation(-1.2921, 36.8219),
		[]order.SKULine{yoghurt, eggs},
		window,
		order.PriorityHigh,
	)
	suite.Require().NoError(err)
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) assertCount(table string, expected int64) {
	var count int64
	suite.Require().NoError(suite.db.Table(table).Count(&count).Error)
	suite.Equal(expected, count)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
