package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"tripplanner/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("without_cause", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("routeID", "r-1")

		assert.Equal(t, "routeID", err.ParamName)
		assert.Equal(t, "r-1", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: r-1", err.Error())
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("with_cause", func(t *testing.T) {
		cause := errors.New("record not found")
		err := errs.NewObjectNotFoundErrorWithCause("routeID", 42, cause)

		assert.Equal(t,
			"object not found: param is: routeID, ID is: 42 (cause: record not found)",
			err.Error())
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("without_cause", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("skuCode")

		assert.Equal(t, "value is invalid: skuCode", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("with_cause", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("window", errors.New("end before start"))

		assert.Equal(t, "value is invalid: window (cause: end before start)", err.Error())
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("without_cause", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("latitude", 91.5, -90, 90)

		assert.Equal(t, 91.5, err.Value)
		assert.Equal(t, -90, err.Min)
		assert.Equal(t, 90, err.Max)
		assert.Equal(t, "value is invalid: 91.5 is latitude, min value is -90, max value is 90", err.Error())
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("with_cause", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeErrorWithCause("quantity", 0, 1, "∞", errors.New("empty line"))

		assert.Equal(t,
			"value is invalid: 0 is quantity, min value is 1, max value is ∞ (cause: empty line)",
			err.Error())
	})

	t.Run("multiline_values_are_flattened", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("note", "first\nsecond", 0, 10)

		assert.Equal(t, "value is invalid: first second is note, min value is 0, max value is 10", err.Error())
	})
}

func TestValueIsRequiredError(t *testing.T) {
	err := errs.NewValueIsRequiredError("orders")
	assert.Equal(t, "value is required: orders", err.Error())
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	withCause := errs.NewValueIsRequiredErrorWithCause("origin", errors.New("zero value"))
	assert.Equal(t, "value is required: origin (cause: zero value)", withCause.Error())
}

func TestVersionIsInvalidError(t *testing.T) {
	err := errs.NewVersionIsInvalidError("route")
	assert.Equal(t, "version is invalid: route", err.Error())

	withCause := errs.NewVersionIsInvalidErrorWithCause("route", errors.New("expected 3, got 4"))
	assert.Equal(t, "version is invalid: route (cause: expected 3, got 4)", withCause.Error())
	assert.ErrorIs(t, withCause, errs.ErrVersionIsInvalid)
}

func TestInfeasibleInputError(t *testing.T) {
	t.Run("message_names_param_and_reason", func(t *testing.T) {
		err := errs.NewInfeasibleInputError("orders", "no orders to plan")

		assert.Equal(t, "infeasible input: orders: no orders to plan", err.Error())
		assert.ErrorIs(t, err, errs.ErrInfeasibleInput)
	})

	t.Run("survives_wrapping", func(t *testing.T) {
		cause := errs.NewValueIsOutOfRangeError("maxTripWeightKg", -1, 0, "∞")
		err := fmt.Errorf("plan: %w", errs.NewInfeasibleInputErrorWithCause("params", "invalid parameters", cause))

		var target *errs.InfeasibleInputError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, "params", target.ParamName)
		assert.Contains(t, err.Error(), "(cause: value is invalid: -1 is maxTripWeightKg")
	})
}
