package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

// PlanResult is the output of Planner.ConsolidateAndOptimize. Routes[i] serves TripGroups[i].
type PlanResult struct {
	TripGroups []*trip.TripGroup
	Routes     []*route.Route
	Compliance trip.ComplianceReport
	// Conflicts holds the window conflicts of each route, keyed by route id.
	Conflicts map[kernel.UUID][]WindowConflict
}

// Planner is the entry point of the optimization engine. It performs no I/O;
// routes of different trip groups are built in parallel, while consolidation,
// construction, improvement and validation of one group run in sequence.
type Planner struct {
	consolidator SKUConsolidator
	constructor  RouteConstructor
	improver     RouteImprover
	resolver     WindowConflictResolver
	adjuster     RealTimeAdjuster
	logger       *slog.Logger
}

// NewPlanner creates a Planner logging through logger.
func NewPlanner(logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		consolidator: NewSKUConsolidator(),
		constructor:  NewRouteConstructor(),
		improver:     NewRouteImprover(),
		resolver:     NewWindowConflictResolver(),
		adjuster:     NewRealTimeAdjuster(),
		logger:       logger.With("component", "planner"),
	}
}

// ConsolidateAndOptimize groups orders into trips and routes every group from origin.
//
// Parameters:
//   - ctx: cancels work on groups that have not started yet
//   - orders: candidate orders
//   - origin: manufacturing origin shared by every route
//   - params: optimization parameters applied to every stage
//
// Returns:
//   - PlanResult: groups, routes, compliance report and window conflicts
//   - error: InfeasibleInputError for unplannable input, or the context error
func (p *Planner) ConsolidateAndOptimize(
	ctx context.Context,
	orders []*order.Order,
	origin kernel.Location,
	params trip.OptimizationParameters,
) (PlanResult, error) {
	if err := origin.Validate(); err != nil {
		return PlanResult{}, errs.NewInfeasibleInputErrorWithCause("origin", "origin is required", err)
	}

	consolidated, err := p.consolidator.Consolidate(orders, params)
	if err != nil {
		return PlanResult{}, err
	}

	routes := make([]*route.Route, len(consolidated.Groups))
	conflicts := make([][]WindowConflict, len(consolidated.Groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, group := range consolidated.Groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, c, err := p.routeGroup(group, origin, params)
			if err != nil {
				return fmt.Errorf("route trip group %s: %w", group.ID(), err)
			}
			routes[i] = r
			conflicts[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PlanResult{}, err
	}

	result := PlanResult{
		TripGroups: consolidated.Groups,
		Routes:     routes,
		Compliance: consolidated.Compliance,
		Conflicts:  make(map[kernel.UUID][]WindowConflict, len(routes)),
	}
	for i, r := range routes {
		if len(conflicts[i]) > 0 {
			result.Conflicts[r.ID()] = conflicts[i]
		}
	}

	p.logger.Info("plan computed",
		"orders", len(orders),
		"groups", len(result.TripGroups),
		"flagged_groups", len(result.Compliance.Flagged()),
		"routes_with_conflicts", len(result.Conflicts))

	return result, nil
}

// AdjustRoute re-optimises r against delay and traffic signals. The result carries
// r.Version()+1; persisting it is the caller's job.
func (p *Planner) AdjustRoute(
	r *route.Route,
	delays DelaySignals,
	traffic TrafficSignals,
	params trip.OptimizationParameters,
) (*route.Route, error) {
	adjusted, err := p.adjuster.Adjust(r, delays, traffic, params)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("route adjusted",
		"route_id", r.ID().String(),
		"from_version", r.Version(),
		"to_version", adjusted.Version(),
		"distance_km", adjusted.TotalDistanceKm())

	return adjusted, nil
}

// ResolveConflicts returns the window conflicts of r with their proposals.
func (p *Planner) ResolveConflicts(r *route.Route, params trip.OptimizationParameters) ([]WindowConflict, error) {
	return p.resolver.Resolve(r, params)
}

// ApplyResolution applies one advisory proposal returned by ResolveConflicts.
func (p *Planner) ApplyResolution(
	r *route.Route,
	c WindowConflict,
	params trip.OptimizationParameters,
) (*route.Route, error) {
	return p.resolver.ApplyResolution(r, c, params)
}

func (p *Planner) routeGroup(
	group *trip.TripGroup,
	origin kernel.Location,
	params trip.OptimizationParameters,
) (*route.Route, []WindowConflict, error) {
	initial, err := p.constructor.Construct(group, origin, params)
	if err != nil {
		return nil, nil, err
	}

	improved, err := p.improver.Improve(initial, params)
	if err != nil {
		return nil, nil, err
	}
	if improved.IterationCapHit() {
		p.logger.Warn("2-opt move budget exhausted",
			"trip_group_id", group.ID().String(),
			"stops", improved.StopCount())
	}

	conflicts, err := p.resolver.Resolve(improved, params)
	if err != nil {
		return nil, nil, err
	}

	return improved, conflicts, nil
}
