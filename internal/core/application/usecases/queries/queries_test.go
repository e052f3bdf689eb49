package queries_test

import (
	"testing"

	"tripplanner/internal/core/application/usecases/queries"
	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetPendingOrdersQuery_Valid(t *testing.T) {
	require.NoError(t, queries.NewGetPendingOrdersQuery().Validate())
}

func TestGetPendingOrdersQuery_NotConstructedViaConstructor(t *testing.T) {
	err := queries.GetPendingOrdersQuery{}.Validate()
	assert.ErrorIs(t, err, queries.ErrGetPendingOrdersQueryIsNotConstructed)
}

func TestNewGetRouteQuery(t *testing.T) {
	id := kernel.NewUUID()
	query, err := queries.NewGetRouteQuery(id)
	require.NoError(t, err)
	assert.Equal(t, id, query.RouteID())

	_, err = queries.NewGetRouteQuery(kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	assert.ErrorIs(t, queries.GetRouteQuery{}.Validate(), queries.ErrGetRouteQueryIsNotConstructed)
}

func TestNewGetRouteConflictsQuery(t *testing.T) {
	query, err := queries.NewGetRouteConflictsQuery(kernel.NewUUID(), params())
	require.NoError(t, err)
	assert.Equal(t, params(), query.Params())

	bad := params()
	bad.MaxWindowShiftMinutes = -1
	_, err = queries.NewGetRouteConflictsQuery(kernel.UUID{}, bad)
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
