package queries

import (
	"context"
	"database/sql"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPendingOrdersQueryHandler reads pending orders with one aggregate query over
// orders and their SKU lines.
type GetPendingOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetPendingOrdersQueryHandler creates a handler for pending order queries.
func NewGetPendingOrdersQueryHandler(db *gorm.DB) GetPendingOrdersQueryHandler {
	return GetPendingOrdersQueryHandler{db: db}
}

// Handle returns every pending order sorted by ID.
func (h GetPendingOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetPendingOrdersQuery,
) ([]GetPendingOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetPendingOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.latitude,
			o.longitude,
			o.priority,
			o.window_start,
			o.window_end,
			COUNT(DISTINCT l.sku_code),
			COALESCE(SUM(l.quantity * l.unit_weight_kg), 0),
			COALESCE(SUM(l.quantity * l.unit_volume_m3), 0)
		FROM orders o
		LEFT JOIN order_lines l ON l.order_id = o.id
		WHERE o.status = ?
		GROUP BY o.id
		ORDER BY o.id
	`, int(order.Pending)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resp                   GetPendingOrdersQueryResponse
			id                     uuid.UUID
			lat, lon               float64
			priority               int
			windowStart, windowEnd sql.NullTime
		)

		err = rows.Scan(
			&id,
			&lat,
			&lon,
			&priority,
			&windowStart,
			&windowEnd,
			&resp.SKUCount,
			&resp.WeightKg,
			&resp.VolumeM3,
		)
		if err != nil {
			return nil, err
		}

		resp.ID, err = kernel.UUIDFromGoogle(id)
		if err != nil {
			return nil, err
		}
		resp.Destination, err = kernel.NewLocation(lat, lon)
		if err != nil {
			return nil, err
		}
		resp.Priority = order.Priority(priority)
		resp.WindowStart = nullTime(windowStart)
		resp.WindowEnd = nullTime(windowEnd)

		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
