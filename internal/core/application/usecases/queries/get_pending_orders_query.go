// Package queries contains read-only operations. Handlers read through GORM or
// repositories and return flat response structs; they never modify state.
package queries

import (
	"errors"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
	"tripplanner/internal/pkg/guard"
)

var (
	ErrGetPendingOrdersQueryIsNotConstructed = errors.New(
		"GetPendingOrdersQuery must be created via NewGetPendingOrdersQuery constructor",
	)
)

// GetPendingOrdersQuery lists the orders waiting for the next planning run with
// the load figures consolidation works with.
//
// Example:
//
//	query := NewGetPendingOrdersQuery()
//	handler := NewGetPendingOrdersQueryHandler(db)
//
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get pending orders: %w", err)
//	}
//
//	for _, o := range orders {
//	    fmt.Printf("Order %s: %d SKUs, %.1f kg\n", o.ID, o.SKUCount, o.WeightKg)
//	}
type GetPendingOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetPendingOrdersQuery creates a query to retrieve pending orders.
func NewGetPendingOrdersQuery() GetPendingOrdersQuery {
	return GetPendingOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetPendingOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingOrdersQueryIsNotConstructed)
}

// GetPendingOrdersQueryResponse is one pending order with its aggregated load.
type GetPendingOrdersQueryResponse struct {
	ID          kernel.UUID
	Destination kernel.Location
	Priority    order.Priority
	WindowStart *time.Time
	WindowEnd   *time.Time
	// SKUCount is the number of distinct SKU codes.
	SKUCount int
	WeightKg float64
	VolumeM3 float64
}
