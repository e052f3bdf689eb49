package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/services"
	"tripplanner/internal/core/ports"
)

var ErrNoPendingOrders = errors.New("no pending orders to plan")

// PlanTripsResult is the committed outcome of a planning run.
type PlanTripsResult struct {
	Plan services.PlanResult
	// Manifests maps a route id to the location of its exported manifest.
	Manifests map[kernel.UUID]string
}

// PlanTripsCommandHandler loads every pending order, plans trips for them, stores
// the routes and marks the orders planned in one transaction. After the commit it
// publishes a route.planned event and exports a manifest per route; failures of
// those follow-ups are logged and do not undo the plan.
//
// Example:
//
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, ErrNoPendingOrders):
//	    log.Println("nothing to plan")
//	case errors.Is(err, errs.ErrInfeasibleInput):
//	    log.Printf("orders cannot be planned: %v", err)
//	case err != nil:
//	    log.Printf("planning failed: %v", err)
//	default:
//	    log.Printf("%d routes planned", len(result.Plan.Routes))
//	}
type PlanTripsCommandHandler struct {
	uowFactory UoWFactory
	planner    *services.Planner
	publisher  ports.RouteEventPublisher
	exporter   ports.RouteManifestExporter
	logger     *slog.Logger
}

// NewPlanTripsCommandHandler creates the planning handler. publisher and exporter
// may be nil when the deployment has no broker or object store.
func NewPlanTripsCommandHandler(
	uowFactory UoWFactory,
	planner *services.Planner,
	publisher ports.RouteEventPublisher,
	exporter ports.RouteManifestExporter,
	logger *slog.Logger,
) PlanTripsCommandHandler {
	return PlanTripsCommandHandler{
		uowFactory: uowFactory,
		planner:    planner,
		publisher:  publisher,
		exporter:   exporter,
		logger:     logger.With("component", "plan_trips_handler"),
	}
}

// Handle runs one planning pass. Returns ErrNoPendingOrders when there is nothing
// to plan and errs.InfeasibleInputError when the orders cannot be planned.
func (h PlanTripsCommandHandler) Handle(ctx context.Context, cmd PlanTripsCommand) (PlanTripsResult, error) {
	if err := cmd.Validate(); err != nil {
		return PlanTripsResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return PlanTripsResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	routeRepo := uow.RouteRepository()

	pending, err := orderRepo.GetAllPending(ctx)
	if err != nil {
		return PlanTripsResult{}, err
	}
	if len(pending) == 0 {
		return PlanTripsResult{}, ErrNoPendingOrders
	}

	plan, err := h.planner.ConsolidateAndOptimize(ctx, pending, cmd.Origin(), cmd.Params())
	if err != nil {
		return PlanTripsResult{}, err
	}

	for _, r := range plan.Routes {
		if err = routeRepo.Add(ctx, r); err != nil {
			return PlanTripsResult{}, err
		}
	}

	for _, o := range pending {
		if err = o.MarkPlanned(); err != nil {
			return PlanTripsResult{}, err
		}
		if err = orderRepo.Update(ctx, o); err != nil {
			return PlanTripsResult{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return PlanTripsResult{}, err
	}

	result := PlanTripsResult{
		Plan:      plan,
		Manifests: make(map[kernel.UUID]string, len(plan.Routes)),
	}
	now := time.Now().UTC()
	for _, r := range plan.Routes {
		if h.publisher != nil {
			event := ports.RouteEvent{Type: ports.RouteEventPlanned, RouteID: r.ID(), Version: r.Version(), OccurredAt: now}
			if pubErr := h.publisher.Publish(ctx, event); pubErr != nil {
				h.logger.WarnContext(ctx, "route event not published", "route_id", r.ID().String(), "error", pubErr)
			}
		}
		if h.exporter != nil {
			location, expErr := h.exporter.Export(ctx, r)
			if expErr != nil {
				h.logger.WarnContext(ctx, "route manifest not exported", "route_id", r.ID().String(), "error", expErr)
				continue
			}
			result.Manifests[r.ID()] = location
		}
	}

	h.logger.InfoContext(ctx, "trips planned",
		"orders", len(pending),
		"routes", len(plan.Routes),
		"flagged_groups", len(plan.Compliance.Flagged()))

	return result, nil
}
