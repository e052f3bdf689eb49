package guard_test

import (
	"errors"
	"testing"

	"tripplanner/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("constructed_guard_returns_nil", func(t *testing.T) {
		// Given
		g := guard.NewConstructorGuard()

		// When
		err := g.Validate(errors.New("not constructed"))

		// Then
		require.NoError(t, err)
	})

	t.Run("constructed_guard_ignores_nil_error", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_guard_returns_given_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard
		expected := errors.New("waypoint not constructed")

		// When
		err := g.Validate(expected)

		// Then
		require.Error(t, err)
		assert.Equal(t, expected, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		require.Error(t, err)
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	errStopNotConstructed := errors.New("stop must be created via newStop")

	type stop struct {
		orderID string
		guard   guard.ConstructorGuard
	}

	newStop := func(orderID string) (stop, error) {
		if orderID == "" {
			return stop{}, errors.New("order id is required")
		}
		return stop{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructor_built_value_is_valid", func(t *testing.T) {
		s, err := newStop("order-1")

		require.NoError(t, err)
		require.NoError(t, s.guard.Validate(errStopNotConstructed))

		copied := s
		require.NoError(t, copied.guard.Validate(errStopNotConstructed))
	})

	t.Run("zero_value_is_rejected", func(t *testing.T) {
		var s stop

		err := s.guard.Validate(errStopNotConstructed)

		assert.ErrorIs(t, err, errStopNotConstructed)
	})
}

func TestConstructorGuard_ConcurrentValidate(t *testing.T) {
	g := guard.NewConstructorGuard()
	validationError := errors.New("not constructed")

	done := make(chan struct{})
	for range 50 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 200 {
				assert.NoError(t, g.Validate(validationError))
			}
		}()
	}
	for range 50 {
		<-done
	}
}
