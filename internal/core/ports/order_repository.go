// Package ports defines the contracts between the planning core and its infrastructure:
// repositories for orders and routes, the transaction boundary, the route event
// publisher and the manifest exporter.
package ports

import (
	"context"

	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates
// together with their SKU lines.
type OrderRepository interface {
	// Add persists a new order with all of its SKU lines.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the mutable state of an existing order (status, window, priority).
	// SKU lines are immutable once stored.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id. Returns errs.ObjectNotFoundError when absent.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllPending retrieves every order still waiting for a trip, ordered by id.
	GetAllPending(ctx context.Context) ([]*order.Order, error)
}
