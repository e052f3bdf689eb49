package queries

import (
	"errors"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/pkg/errs"
	"tripplanner/internal/pkg/guard"
)

var ErrGetRouteConflictsQueryIsNotConstructed = errors.New(
	"GetRouteConflictsQuery must be created via NewGetRouteConflictsQuery constructor",
)

// GetRouteConflictsQuery asks for the window conflicts of a stored route together
// with advisory proposals. Nothing is applied.
type GetRouteConflictsQuery struct {
	routeID kernel.UUID
	params  trip.OptimizationParameters

	guard guard.ConstructorGuard
}

// NewGetRouteConflictsQuery creates a conflicts query evaluated with params.
func NewGetRouteConflictsQuery(routeID kernel.UUID, params trip.OptimizationParameters) (GetRouteConflictsQuery, error) {
	var paramsErr error
	if err := params.Validate(); err != nil {
		paramsErr = errs.NewValueIsInvalidErrorWithCause("params", err)
	}
	if err := errors.Join(routeID.Validate(), paramsErr); err != nil {
		return GetRouteConflictsQuery{}, err
	}

	return GetRouteConflictsQuery{routeID: routeID, params: params, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetRouteConflictsQuery) Validate() error {
	return q.guard.Validate(ErrGetRouteConflictsQueryIsNotConstructed)
}

// RouteID returns the inspected route.
func (q GetRouteConflictsQuery) RouteID() kernel.UUID { return q.routeID }

// Params returns the parameters the conflicts are evaluated with.
func (q GetRouteConflictsQuery) Params() trip.OptimizationParameters { return q.params }
