package commands_test

import (
	"errors"
	"testing"

	"tripplanner/internal/core/application/usecases/commands"
	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/services"
	"tripplanner/internal/core/ports"
	"tripplanner/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAdjustHandler(factory *MockRouteUoWFactory, publisher ports.RouteEventPublisher) commands.AdjustRouteCommandHandler {
	return commands.NewAdjustRouteCommandHandler(factory, services.NewPlanner(discardLogger()), publisher, discardLogger())
}

func TestAdjustRouteCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	r := newPlannedRoute(t, newOrder(t, -1.29, 36.82), newOrder(t, -1.28, 36.83))
	first := r.OrderIDs()[0]

	cmd, err := commands.NewAdjustRouteCommand(r.ID(), services.DelaySignals{first: 20}, nil, nil, params())
	require.NoError(t, err)

	repo := new(MockRouteRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("RouteRepository").Return(repo).Once(),
		repo.On("Get", ctx, r.ID()).Return(r, nil).Once(),
		repo.On("Update", ctx, mock.MatchedBy(func(next *route.Route) bool {
			return next.Version() == r.Version()+1
		}), r.Version()).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockRouteUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockRouteEventPublisher)
	publisher.On("Publish", ctx, mock.MatchedBy(func(e ports.RouteEvent) bool {
		return e.Type == ports.RouteEventAdjusted && e.RouteID == r.ID() && e.Version == r.Version()+1
	})).Return(nil).Once()

	adjusted, err := newAdjustHandler(factory, publisher).Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, r.Version()+1, adjusted.Version())
	assert.ElementsMatch(t, r.OrderIDs(), adjusted.OrderIDs())

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestAdjustRouteCommandHandler_Handle_StaleExpectedVersion(t *testing.T) {
	ctx := t.Context()
	r := newPlannedRoute(t, newOrder(t, -1.29, 36.82))
	stale := r.Version() + 4

	cmd, err := commands.NewAdjustRouteCommand(r.ID(), nil, nil, &stale, params())
	require.NoError(t, err)

	repo := new(MockRouteRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RouteRepository").Return(repo).Once()
	repo.On("Get", ctx, r.ID()).Return(r, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockRouteUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = newAdjustHandler(factory, nil).Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", ctx)
}

func TestAdjustRouteCommandHandler_Handle_ConcurrentWriter(t *testing.T) {
	ctx := t.Context()
	r := newPlannedRoute(t, newOrder(t, -1.29, 36.82))

	cmd, err := commands.NewAdjustRouteCommand(r.ID(), nil, nil, nil, params())
	require.NoError(t, err)

	repo := new(MockRouteRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RouteRepository").Return(repo).Once()
	repo.On("Get", ctx, r.ID()).Return(r, nil).Once()
	repo.On("Update", ctx, mock.Anything, r.Version()).Return(errs.NewVersionIsInvalidError("route")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockRouteUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockRouteEventPublisher)
	_, err = newAdjustHandler(factory, publisher).Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestAdjustRouteCommandHandler_Handle_RouteNotFound(t *testing.T) {
	ctx := t.Context()
	routeID := kernel.NewUUID()

	cmd, err := commands.NewAdjustRouteCommand(routeID, nil, nil, nil, params())
	require.NoError(t, err)

	repo := new(MockRouteRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RouteRepository").Return(repo).Once()
	repo.On("Get", ctx, routeID).Return(nil, errs.NewObjectNotFoundError("route", routeID)).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockRouteUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = newAdjustHandler(factory, nil).Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestAdjustRouteCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewAdjustRouteCommand(kernel.NewUUID(), nil, nil, nil, params())
	require.NoError(t, err)

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(errors.New("begin error")).Once()

	factory := new(MockRouteUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = newAdjustHandler(factory, nil).Handle(ctx, cmd)
	require.EqualError(t, err, "begin error")
	uow.AssertNotCalled(t, "RouteRepository")
}
