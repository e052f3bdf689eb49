package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/ports"
	"tripplanner/internal/pkg/errs"
)

// CompleteDeliveryCommandHandler marks a waypoint and its order delivered in one
// transaction. The route gets a new version; delivered stops stay fixed in later
// adjustments.
type CompleteDeliveryCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.RouteEventPublisher
	logger     *slog.Logger
}

// NewCompleteDeliveryCommandHandler creates the handler. publisher may be nil.
func NewCompleteDeliveryCommandHandler(
	uowFactory UoWFactory,
	publisher ports.RouteEventPublisher,
	logger *slog.Logger,
) CompleteDeliveryCommandHandler {
	return CompleteDeliveryCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "complete_delivery_handler"),
	}
}

// Handle completes the delivery and returns the revised route.
func (h CompleteDeliveryCommandHandler) Handle(ctx context.Context, cmd CompleteDeliveryCommand) (*route.Route, error) {
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
	orderRepo := uow.OrderRepository()

	current, err := routeRepo.Get(ctx, cmd.RouteID())
	if err != nil {
		return nil, err
	}

	stop, ok := current.Waypoint(cmd.OrderID())
	if !ok {
		return nil, errs.NewObjectNotFoundError("waypoint", cmd.OrderID())
	}
	if stop.Status() == route.StatusDelivered {
		return nil, errs.NewValueIsInvalidErrorWithCause("deliveryStatus",
			fmt.Errorf("order %s is already delivered", cmd.OrderID()))
	}

	next, err := current.Revise(route.WithDeliveryStatus(cmd.OrderID(), route.StatusDelivered))
	if err != nil {
		return nil, err
	}
	if err = routeRepo.Update(ctx, next, current.Version()); err != nil {
		return nil, err
	}

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if err = o.MarkDelivered(); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if h.publisher != nil {
		orderID := cmd.OrderID()
		event := ports.RouteEvent{
			Type:       ports.RouteEventDeliveryCompleted,
			RouteID:    next.ID(),
			Version:    next.Version(),
			OrderID:    &orderID,
			OccurredAt: time.Now().UTC(),
		}
		if pubErr := h.publisher.Publish(ctx, event); pubErr != nil {
			h.logger.WarnContext(ctx, "route event not published", "route_id", next.ID().String(), "error", pubErr)
		}
	}

	return next, nil
}
