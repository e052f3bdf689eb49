package queries

import (
	"context"

	"tripplanner/internal/core/domain/services"
	"tripplanner/internal/core/ports"
)

// GetRouteConflictsQueryHandler runs the window conflict resolver over a stored route.
type GetRouteConflictsQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	planner    *services.Planner
}

// NewGetRouteConflictsQueryHandler creates the handler.
func NewGetRouteConflictsQueryHandler(uowFactory ports.UnitOfWorkFactory, planner *services.Planner) GetRouteConflictsQueryHandler {
	return GetRouteConflictsQueryHandler{uowFactory: uowFactory, planner: planner}
}

// Handle returns the conflicts in visit order; an empty slice means none.
func (h GetRouteConflictsQueryHandler) Handle(
	ctx context.Context,
	query GetRouteConflictsQuery,
) ([]services.WindowConflict, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	r, err := h.uowFactory.Create().RouteRepository().Get(ctx, query.RouteID())
	if err != nil {
		return nil, err
	}

	conflicts, err := h.planner.ResolveConflicts(r, query.Params())
	if err != nil {
		return nil, err
	}
	if conflicts == nil {
		conflicts = []services.WindowConflict{}
	}

	return conflicts, nil
}
