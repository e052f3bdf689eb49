package order_test

import (
	"testing"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLine(t *testing.T, code string, qty int, kg, m3 float64, temp order.TemperatureClass, fragile bool) order.SKULine {
	t.Helper()
	line, err := order.NewSKULine(code, qty, kg, m3, temp, fragile)
	require.NoError(t, err)
	return line
}

func TestNewOrder(t *testing.T) {
	id := kernel.NewUUID()
	destination := kernel.MustNewLocation(-1.29, 36.82)
	cola := mustLine(t, "SKU-COLA", 24, 0.5, 0.001, order.TemperatureAmbient, false)
	milk := mustLine(t, "SKU-MILK", 10, 1.0, 0.002, order.TemperatureRefrigerated, false)

	t.Run("creates_pending_order", func(t *testing.T) {
		o, err := order.NewOrder(id, destination, []order.SKULine{cola, milk}, nil, order.PriorityNormal)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(id))
		assert.Equal(t, order.Pending, o.Status())
		assert.Nil(t, o.Window())
		assert.InDelta(t, 22.0, o.WeightKg(), 1e-9)
		assert.InDelta(t, 0.044, o.VolumeM3(), 1e-9)
		assert.Equal(t, 2, o.SKUCount())
		assert.Equal(t,
			[]order.TemperatureClass{order.TemperatureAmbient, order.TemperatureRefrigerated},
			o.TemperatureClasses())
		assert.False(t, o.HasFragile())
	})

	t.Run("sku_count_counts_distinct_codes", func(t *testing.T) {
		again := mustLine(t, "SKU-COLA", 6, 0.5, 0.001, order.TemperatureAmbient, true)

		o, err := order.NewOrder(id, destination, []order.SKULine{cola, again}, nil, order.PriorityLow)

		require.NoError(t, err)
		assert.Equal(t, 1, o.SKUCount())
		assert.True(t, o.HasFragile())
	})

	t.Run("requires_lines", func(t *testing.T) {
		_, err := order.NewOrder(id, destination, nil, nil, order.PriorityNormal)

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("joins_all_validation_errors", func(t *testing.T) {
		_, err := order.NewOrder(kernel.UUID{}, kernel.Location{}, []order.SKULine{cola}, nil, order.PriorityUnknown)

		require.Error(t, err)
		assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
		assert.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("keeps_a_copy_of_the_window", func(t *testing.T) {
		start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
		w, err := kernel.NewTimeWindow(start, start.Add(time.Hour))
		require.NoError(t, err)

		o, err := order.NewOrder(id, destination, []order.SKULine{cola}, &w, order.PriorityHigh)
		require.NoError(t, err)

		w = w.Shift(time.Hour)
		require.NotNil(t, o.Window())
		assert.Equal(t, start, o.Window().Start())
	})
}

func TestOrder_Lifecycle(t *testing.T) {
	line := mustLine(t, "SKU-1", 1, 1, 1, order.TemperatureAmbient, false)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.MustNewLocation(0, 0), []order.SKULine{line}, nil, order.PriorityNormal)
	require.NoError(t, err)

	require.Error(t, o.MarkDelivered())

	require.NoError(t, o.MarkPlanned())
	assert.Equal(t, order.Planned, o.Status())
	require.Error(t, o.MarkPlanned())

	require.NoError(t, o.MarkDelivered())
	assert.Equal(t, order.Delivered, o.Status())
}

func TestRestoreOrder_RejectsUnknownStatus(t *testing.T) {
	line := mustLine(t, "SKU-1", 1, 1, 1, order.TemperatureAmbient, false)

	_, err := order.RestoreOrder(kernel.NewUUID(), kernel.MustNewLocation(0, 0),
		[]order.SKULine{line}, nil, order.PriorityNormal, order.Unknown)

	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestOrder_ZeroValueIsInvalid(t *testing.T) {
	var o *order.Order
	assert.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)
	assert.ErrorIs(t, (&order.Order{}).Validate(), order.ErrOrderIsNotConstructed)
}
