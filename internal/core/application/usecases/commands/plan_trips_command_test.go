package commands_test

import (
	"testing"

	"tripplanner/internal/core/application/usecases/commands"
	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlanTripsCommand_ValidInput(t *testing.T) {
	cmd, err := commands.NewPlanTripsCommand(plant, params())
	require.NoError(t, err)
	assert.Equal(t, plant, cmd.Origin())
	assert.Equal(t, params(), cmd.Params())
	require.NoError(t, cmd.Validate())
}

func TestNewPlanTripsCommand_InvalidInput(t *testing.T) {
	p := params()
	p.AverageSpeedKmh = 0

	_, err := commands.NewPlanTripsCommand(kernel.Location{}, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestPlanTripsCommand_ZeroValueIsNotConstructed(t *testing.T) {
	assert.ErrorIs(t, commands.PlanTripsCommand{}.Validate(), commands.ErrPlanTripsCommandIsNotConstructed)
}
