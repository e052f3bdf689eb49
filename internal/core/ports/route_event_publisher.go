package ports

import (
	"context"
	"time"

	"tripplanner/internal/core/domain/model/kernel"
)

// RouteEventType names a change in a route's life.
type RouteEventType string

const (
	RouteEventPlanned           RouteEventType = "route.planned"
	RouteEventAdjusted          RouteEventType = "route.adjusted"
	RouteEventDeliveryCompleted RouteEventType = "route.delivery_completed"
)

// RouteEvent is published after the change it describes was committed.
type RouteEvent struct {
	Type       RouteEventType
	RouteID    kernel.UUID
	Version    int64
	OrderID    *kernel.UUID
	OccurredAt time.Time
}

// RouteEventPublisher delivers route events to downstream consumers.
type RouteEventPublisher interface {
	Publish(ctx context.Context, event RouteEvent) error
}
