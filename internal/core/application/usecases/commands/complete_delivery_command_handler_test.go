package commands_test

import (
	"errors"
	"testing"

	"tripplanner/internal/core/application/usecases/commands"
	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/ports"
	"tripplanner/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCompleteDeliveryCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	first, second := newOrder(t, -1.29, 36.82), newOrder(t, -1.28, 36.83)
	r := newPlannedRoute(t, first, second)

	cmd, err := commands.NewCompleteDeliveryCommand(r.ID(), second.ID())
	require.NoError(t, err)

	routeRepo := new(MockRouteRepository)
	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("RouteRepository").Return(routeRepo).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		routeRepo.On("Get", ctx, r.ID()).Return(r, nil).Once(),
		routeRepo.On("Update", ctx, mock.AnythingOfType("*route.Route"), r.Version()).Return(nil).Once(),
		orderRepo.On("Get", ctx, second.ID()).Return(second, nil).Once(),
		orderRepo.On("Update", ctx, second).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockRouteEventPublisher)
	publisher.On("Publish", ctx, mock.MatchedBy(func(e ports.RouteEvent) bool {
		return e.Type == ports.RouteEventDeliveryCompleted && e.OrderID != nil && *e.OrderID == second.ID()
	})).Return(nil).Once()

	h := commands.NewCompleteDeliveryCommandHandler(factory, publisher, discardLogger())
	next, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	stop, ok := next.Waypoint(second.ID())
	require.True(t, ok)
	assert.Equal(t, route.StatusDelivered, stop.Status())
	assert.Equal(t, r.Version()+1, next.Version())
	assert.Equal(t, order.Delivered, second.Status())

	untouched, ok := r.Waypoint(second.ID())
	require.True(t, ok)
	assert.NotEqual(t, route.StatusDelivered, untouched.Status())

	routeRepo.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCompleteDeliveryCommandHandler_Handle_UnknownStop(t *testing.T) {
	ctx := t.Context()
	r := newPlannedRoute(t, newOrder(t, -1.29, 36.82))

	cmd, err := commands.NewCompleteDeliveryCommand(r.ID(), kernel.NewUUID())
	require.NoError(t, err)

	routeRepo := new(MockRouteRepository)
	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RouteRepository").Return(routeRepo).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	routeRepo.On("Get", ctx, r.ID()).Return(r, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCompleteDeliveryCommandHandler(factory, nil, discardLogger())
	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	routeRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteDeliveryCommandHandler_Handle_AlreadyDelivered(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t, -1.29, 36.82)
	planned := newPlannedRoute(t, o)
	r, err := planned.Revise(route.WithDeliveryStatus(o.ID(), route.StatusDelivered))
	require.NoError(t, err)

	cmd, err := commands.NewCompleteDeliveryCommand(r.ID(), o.ID())
	require.NoError(t, err)

	routeRepo := new(MockRouteRepository)
	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RouteRepository").Return(routeRepo).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	routeRepo.On("Get", ctx, r.ID()).Return(r, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCompleteDeliveryCommandHandler(factory, nil, discardLogger())
	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	orderRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCompleteDeliveryCommandHandler_Handle_OrderUpdateError(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t, -1.29, 36.82)
	r := newPlannedRoute(t, o)

	cmd, err := commands.NewCompleteDeliveryCommand(r.ID(), o.ID())
	require.NoError(t, err)

	routeRepo := new(MockRouteRepository)
	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RouteRepository").Return(routeRepo).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	routeRepo.On("Get", ctx, r.ID()).Return(r, nil).Once()
	routeRepo.On("Update", ctx, mock.Anything, r.Version()).Return(nil).Once()
	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	orderRepo.On("Update", ctx, o).Return(errors.New("update failed")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockRouteEventPublisher)
	h := commands.NewCompleteDeliveryCommandHandler(factory, publisher, discardLogger())
	_, err = h.Handle(ctx, cmd)
	require.EqualError(t, err, "update failed")
	uow.AssertNotCalled(t, "Commit", ctx)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
