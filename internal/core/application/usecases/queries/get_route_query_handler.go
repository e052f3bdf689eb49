package queries

import (
	"context"

	"tripplanner/internal/core/ports"
)

// GetRouteQueryHandler loads a route through a repository outside of any transaction.
type GetRouteQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

// NewGetRouteQueryHandler creates a handler reading routes through uowFactory.
func NewGetRouteQueryHandler(uowFactory ports.UnitOfWorkFactory) GetRouteQueryHandler {
	return GetRouteQueryHandler{uowFactory: uowFactory}
}

// Handle returns the route or errs.ObjectNotFoundError.
func (h GetRouteQueryHandler) Handle(ctx context.Context, query GetRouteQuery) (GetRouteQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetRouteQueryResponse{}, err
	}

	r, err := h.uowFactory.Create().RouteRepository().Get(ctx, query.RouteID())
	if err != nil {
		return GetRouteQueryResponse{}, err
	}

	return newGetRouteQueryResponse(r), nil
}
