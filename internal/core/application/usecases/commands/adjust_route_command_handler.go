package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/services"
	"tripplanner/internal/core/ports"
	"tripplanner/internal/pkg/errs"
)

// AdjustRouteCommandHandler loads a route, re-optimises it with the real-time
// adjuster and stores the result under optimistic concurrency.
type AdjustRouteCommandHandler struct {
	uowFactory RouteUoWFactory
	planner    *services.Planner
	publisher  ports.RouteEventPublisher
	logger     *slog.Logger
}

// NewAdjustRouteCommandHandler creates the adjustment handler. publisher may be nil.
func NewAdjustRouteCommandHandler(
	uowFactory RouteUoWFactory,
	planner *services.Planner,
	publisher ports.RouteEventPublisher,
	logger *slog.Logger,
) AdjustRouteCommandHandler {
	return AdjustRouteCommandHandler{
		uowFactory: uowFactory,
		planner:    planner,
		publisher:  publisher,
		logger:     logger.With("component", "adjust_route_handler"),
	}
}

// Handle adjusts the route and returns the stored revision. It fails with
// errs.VersionIsInvalidError when the expected version is stale or another writer
// updated the route first.
func (h AdjustRouteCommandHandler) Handle(ctx context.Context, cmd AdjustRouteCommand) (*route.Route, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routeRepo := uow.RouteRepository()

	current, err := routeRepo.Get(ctx, cmd.RouteID())
	if err != nil {
		return nil, err
	}
	if expected := cmd.ExpectedVersion(); expected != nil && *expected != current.Version() {
		return nil, errs.NewVersionIsInvalidErrorWithCause("route",
			fmt.Errorf("expected version %d, stored version is %d", *expected, current.Version()))
	}

	adjusted, err := h.planner.AdjustRoute(current, cmd.Delays(), cmd.Traffic(), cmd.Params())
	if err != nil {
		return nil, err
	}

	if err = routeRepo.Update(ctx, adjusted, current.Version()); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if h.publisher != nil {
		event := ports.RouteEvent{
			Type:       ports.RouteEventAdjusted,
			RouteID:    adjusted.ID(),
			Version:    adjusted.Version(),
			OccurredAt: time.Now().UTC(),
		}
		if pubErr := h.publisher.Publish(ctx, event); pubErr != nil {
			h.logger.WarnContext(ctx, "route event not published", "route_id", adjusted.ID().String(), "error", pubErr)
		}
	}

	return adjusted, nil
}
