// Package servers holds the HTTP API contract: the embedded openapi.yaml, the
// request and response types it describes and the echo routing for ServerInterface.
// The layout mirrors oapi-codegen's echo-server output but is kept by hand, so a
// change to openapi.yaml needs the matching change here. The package tests check
// that both describe the same operations.
package servers

import (
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Defines values for NewOrderPriority.
const (
	High   NewOrderPriority = "high"
	Low    NewOrderPriority = "low"
	Normal NewOrderPriority = "normal"
	Urgent NewOrderPriority = "urgent"
)

// Defines values for ResolutionKind.
const (
	Shift      ResolutionKind = "shift"
	Swap       ResolutionKind = "swap"
	Unresolved ResolutionKind = "unresolved"
)

// Defines values for SkuLineTemperature.
const (
	Ambient      SkuLineTemperature = "ambient"
	Frozen       SkuLineTemperature = "frozen"
	Refrigerated SkuLineTemperature = "refrigerated"
)

// Defines values for TripGroupSkuStatus.
const (
	AboveTarget  TripGroupSkuStatus = "above_target"
	BelowTarget  TripGroupSkuStatus = "below_target"
	WithinTarget TripGroupSkuStatus = "within_target"
)

// Defines values for WaypointStatus.
const (
	Delayed   WaypointStatus = "delayed"
	Delivered WaypointStatus = "delivered"
	InTransit WaypointStatus = "in_transit"
	Scheduled WaypointStatus = "scheduled"
)

// Adjustment defines model for Adjustment.
type Adjustment struct {
	// Delays Delay in minutes keyed by order id.
	Delays          *map[string]float64 `json:"delays,omitempty"`
	ExpectedVersion *int64              `json:"expected_version,omitempty"`

	// Traffic Traffic multiplier keyed by order id.
	Traffic *map[string]float64 `json:"traffic,omitempty"`
}

// CreatedOrder defines model for CreatedOrder.
type CreatedOrder struct {
	Id openapi_types.UUID `json:"id"`
}

// Error defines model for Error.
type Error struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// Location defines model for Location.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewOrder defines model for NewOrder.
type NewOrder struct {
	Destination Location          `json:"destination"`
	Lines       []SkuLine         `json:"lines"`
	Priority    *NewOrderPriority `json:"priority,omitempty"`
	WindowEnd   *time.Time        `json:"window_end,omitempty"`
	WindowStart *time.Time        `json:"window_start,omitempty"`
}

// NewOrderPriority defines model for NewOrder.Priority.
type NewOrderPriority string

// OptimizationParameters defines model for OptimizationParameters.
type OptimizationParameters struct {
	AverageSpeedKmh            *float64 `json:"average_speed_kmh,omitempty"`
	MaxDeliveryStops           *int     `json:"max_delivery_stops,omitempty"`
	MaxGeographicSpreadKm      *float64 `json:"max_geographic_spread_km,omitempty"`
	MaxTripDurationHours       *float64 `json:"max_trip_duration_hours,omitempty"`
	MaxTripVolumeM3            *float64 `json:"max_trip_volume_m3,omitempty"`
	MaxTripWeightKg            *float64 `json:"max_trip_weight_kg,omitempty"`
	MaxWindowShiftMinutes      *int     `json:"max_window_shift_minutes,omitempty"`
	ReturnToOrigin             *bool    `json:"return_to_origin,omitempty"`
	SeparateTemperatureClasses *bool    `json:"separate_temperature_classes,omitempty"`
	ServiceTimeMinutes         *int     `json:"service_time_minutes,omitempty"`
	SwapDistanceTolerance      *float64 `json:"swap_distance_tolerance,omitempty"`
	TargetSkuMax               *int     `json:"target_sku_max,omitempty"`
	TargetSkuMin               *int     `json:"target_sku_min,omitempty"`
	TravelBufferMinutes        *int     `json:"travel_buffer_minutes,omitempty"`
}

// PendingOrder defines model for PendingOrder.
type PendingOrder struct {
	Destination Location           `json:"destination"`
	Id          openapi_types.UUID `json:"id"`
	Priority    string             `json:"priority"`
	SkuCount    int                `json:"sku_count"`
	VolumeM3    float64            `json:"volume_m3"`
	WeightKg    float64            `json:"weight_kg"`
	WindowEnd   *time.Time         `json:"window_end,omitempty"`
	WindowStart *time.Time         `json:"window_start,omitempty"`
}

// Plan defines model for Plan.
type Plan struct {
	Conflicts  []WindowConflict `json:"conflicts"`
	Routes     []Route          `json:"routes"`
	TripGroups []TripGroup      `json:"trip_groups"`
}

// PlanRequest defines model for PlanRequest.
type PlanRequest struct {
	DepartAt   *time.Time              `json:"depart_at,omitempty"`
	Origin     *Location               `json:"origin,omitempty"`
	Parameters *OptimizationParameters `json:"parameters,omitempty"`
}

// Resolution defines model for Resolution.
type Resolution struct {
	DistanceKm   *float64            `json:"distance_km,omitempty"`
	Kind         ResolutionKind      `json:"kind"`
	OrderId      *openapi_types.UUID `json:"order_id,omitempty"`
	Reason       string              `json:"reason"`
	ShiftMinutes *float64            `json:"shift_minutes,omitempty"`
	WindowEnd    *time.Time          `json:"window_end,omitempty"`
	WindowStart  *time.Time          `json:"window_start,omitempty"`
}

// ResolutionKind defines model for Resolution.Kind.
type ResolutionKind string

// Route defines model for Route.
type Route struct {
	ConstraintsSatisfied   bool               `json:"constraints_satisfied"`
	DepartAt               time.Time          `json:"depart_at"`
	EstimatedDurationHours float64            `json:"estimated_duration_hours"`
	Id                     openapi_types.UUID `json:"id"`
	IterationCapHit        bool               `json:"iteration_cap_hit"`
	Manifest               *string            `json:"manifest,omitempty"`
	OptimizationScore      float64            `json:"optimization_score"`
	Origin                 Location           `json:"origin"`
	TotalDistanceKm        float64            `json:"total_distance_km"`
	TripGroupId            openapi_types.UUID `json:"trip_group_id"`
	Version                int64              `json:"version"`
	Violations             []Violation        `json:"violations"`
	VolumeM3               float64            `json:"volume_m3"`
	Waypoints              []Waypoint         `json:"waypoints"`
	WeightKg               float64            `json:"weight_kg"`
}

// SkuLine defines model for SkuLine.
type SkuLine struct {
	Code         string             `json:"code"`
	Fragile      *bool              `json:"fragile,omitempty"`
	Quantity     int                `json:"quantity"`
	Temperature  SkuLineTemperature `json:"temperature"`
	UnitVolumeM3 float64            `json:"unit_volume_m3"`
	UnitWeightKg float64            `json:"unit_weight_kg"`
}

// SkuLineTemperature defines model for SkuLine.Temperature.
type SkuLineTemperature string

// TripGroup defines model for TripGroup.
type TripGroup struct {
	Center      Location             `json:"center"`
	Id          openapi_types.UUID   `json:"id"`
	MaxSpreadKm float64              `json:"max_spread_km"`
	OrderIds    []openapi_types.UUID `json:"order_ids"`
	Reasons     *[]string            `json:"reasons,omitempty"`
	SkuCount    int                  `json:"sku_count"`
	SkuStatus   TripGroupSkuStatus   `json:"sku_status"`
	VolumeM3    float64              `json:"volume_m3"`
	WeightKg    float64              `json:"weight_kg"`
}

// TripGroupSkuStatus defines model for TripGroup.SkuStatus.
type TripGroupSkuStatus string

// Violation defines model for Violation.
type Violation struct {
	Kind     string                `json:"kind"`
	Message  string                `json:"message"`
	OrderIds *[]openapi_types.UUID `json:"order_ids,omitempty"`
}

// Waypoint defines model for Waypoint.
type Waypoint struct {
	EstimatedArrival *time.Time         `json:"estimated_arrival,omitempty"`
	Location         Location           `json:"location"`
	OrderId          openapi_types.UUID `json:"order_id"`
	Sequence         int                `json:"sequence"`
	Status           WaypointStatus     `json:"status"`
	WindowEnd        *time.Time         `json:"window_end,omitempty"`
	WindowStart      *time.Time         `json:"window_start,omitempty"`
}

// WaypointStatus defines model for Waypoint.Status.
type WaypointStatus string

// WindowConflict defines model for WindowConflict.
type WindowConflict struct {
	FirstOrderId     openapi_types.UUID `json:"first_order_id"`
	FirstSequence    int                `json:"first_sequence"`
	Resolution       Resolution         `json:"resolution"`
	SecondOrderId    openapi_types.UUID `json:"second_order_id"`
	ShortfallMinutes float64            `json:"shortfall_minutes"`
}

// RouteId defines model for RouteId.
type RouteId = openapi_types.UUID

// BadRequest defines model for Error.
type BadRequest = Error

// Conflict defines model for Error.
type Conflict = Error

// NotFound defines model for Error.
type NotFound = Error

// Unexpected defines model for Error.
type Unexpected = Error

// Unprocessable defines model for Error.
type Unprocessable = Error

// CreateOrderJSONRequestBody defines body for CreateOrder for application/json ContentType.
type CreateOrderJSONRequestBody = NewOrder

// PlanTripsJSONRequestBody defines body for PlanTrips for application/json ContentType.
type PlanTripsJSONRequestBody = PlanRequest

// AdjustRouteJSONRequestBody defines body for AdjustRoute for application/json ContentType.
type AdjustRouteJSONRequestBody = Adjustment

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Register a pending order
	// (POST /api/v1/orders)
	CreateOrder(ctx echo.Context) error
	// List orders waiting for planning
	// (GET /api/v1/orders/pending)
	GetPendingOrders(ctx echo.Context) error
	// Consolidate pending orders into trips and route them
	// (POST /api/v1/plans)
	PlanTrips(ctx echo.Context) error
	// Read a stored route
	// (GET /api/v1/routes/{routeId})
	GetRoute(ctx echo.Context, routeId RouteId) error
	// Re-optimize a route for delay and traffic signals
	// (POST /api/v1/routes/{routeId}/adjustments)
	AdjustRoute(ctx echo.Context, routeId RouteId) error
	// Detect time-window conflicts and propose resolutions
	// (GET /api/v1/routes/{routeId}/conflicts)
	GetRouteConflicts(ctx echo.Context, routeId RouteId) error
	// Mark a stop delivered
	// (POST /api/v1/routes/{routeId}/deliveries/{orderId})
	CompleteDelivery(ctx echo.Context, routeId RouteId, orderId openapi_types.UUID) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// CreateOrder converts echo context to params.
func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	var err error

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.CreateOrder(ctx)
	return err
}

// GetPendingOrders converts echo context to params.
func (w *ServerInterfaceWrapper) GetPendingOrders(ctx echo.Context) error {
	var err error

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.GetPendingOrders(ctx)
	return err
}

// PlanTrips converts echo context to params.
func (w *ServerInterfaceWrapper) PlanTrips(ctx echo.Context) error {
	var err error

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.PlanTrips(ctx)
	return err
}

// GetRoute converts echo context to params.
func (w *ServerInterfaceWrapper) GetRoute(ctx echo.Context) error {
	var err error
	// ------------- Path parameter "routeId" -------------
	var routeId RouteId

	err = runtime.BindStyledParameterWithOptions("simple", "routeId", ctx.Param("routeId"), &routeId, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter routeId: %s", err))
	}

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.GetRoute(ctx, routeId)
	return err
}

// AdjustRoute converts echo context to params.
func (w *ServerInterfaceWrapper) AdjustRoute(ctx echo.Context) error {
	var err error
	// ------------- Path parameter "routeId" -------------
	var routeId RouteId

	err = runtime.BindStyledParameterWithOptions("simple", "routeId", ctx.Param("routeId"), &routeId, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter routeId: %s", err))
	}

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.AdjustRoute(ctx, routeId)
	return err
}

// GetRouteConflicts converts echo context to params.
func (w *ServerInterfaceWrapper) GetRouteConflicts(ctx echo.Context) error {
	var err error
	// ------------- Path parameter "routeId" -------------
	var routeId RouteId

	err = runtime.BindStyledParameterWithOptions("simple", "routeId", ctx.Param("routeId"), &routeId, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter routeId: %s", err))
	}

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.GetRouteConflicts(ctx, routeId)
	return err
}

// CompleteDelivery converts echo context to params.
func (w *ServerInterfaceWrapper) CompleteDelivery(ctx echo.Context) error {
	var err error
	// ------------- Path parameter "routeId" -------------
	var routeId RouteId

	err = runtime.BindStyledParameterWithOptions("simple", "routeId", ctx.Param("routeId"), &routeId, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter routeId: %s", err))
	}

	// ------------- Path parameter "orderId" -------------
	var orderId openapi_types.UUID

	err = runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &orderId, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter orderId: %s", err))
	}

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.CompleteDelivery(ctx, routeId, orderId)
	return err
}

// EchoRouter is an interface for *echo.Echo and *echo.Group,
// so RegisterHandlers can attach to either.
type EchoRouter interface {
	CONNECT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	HEAD(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	OPTIONS(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	TRACE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// Registers handlers, and prepends BaseURL to the paths, so that the paths
// can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST(baseURL+"/api/v1/orders", wrapper.CreateOrder)
	router.GET(baseURL+"/api/v1/orders/pending", wrapper.GetPendingOrders)
	router.POST(baseURL+"/api/v1/plans", wrapper.PlanTrips)
	router.GET(baseURL+"/api/v1/routes/:routeId", wrapper.GetRoute)
	router.POST(baseURL+"/api/v1/routes/:routeId/adjustments", wrapper.AdjustRoute)
	router.GET(baseURL+"/api/v1/routes/:routeId/conflicts", wrapper.GetRouteConflicts)
	router.POST(baseURL+"/api/v1/routes/:routeId/deliveries/:orderId", wrapper.CompleteDelivery)
}

//go:embed openapi.yaml
var swaggerSpec []byte

// GetSwagger returns the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromData(swaggerSpec)
	if err != nil {
		return nil, fmt.Errorf("error loading Swagger: %w", err)
	}
	return swagger, nil
}
