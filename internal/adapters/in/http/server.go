package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tripplanner/internal/core/application/usecases/commands"
	"tripplanner/internal/core/application/usecases/queries"
	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/core/domain/services"
	"tripplanner/internal/generated/servers"
	"tripplanner/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Use case ports of the server. The command and query handlers satisfy them.
type (
	OrderCreator interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
	}

	TripPlanner interface {
		Handle(ctx context.Context, cmd commands.PlanTripsCommand) (commands.PlanTripsResult, error)
	}

	RouteAdjuster interface {
		Handle(ctx context.Context, cmd commands.AdjustRouteCommand) (*route.Route, error)
	}

	DeliveryCompleter interface {
		Handle(ctx context.Context, cmd commands.CompleteDeliveryCommand) (*route.Route, error)
	}

	PendingOrdersReader interface {
		Handle(ctx context.Context, query queries.GetPendingOrdersQuery) ([]queries.GetPendingOrdersQueryResponse, error)
	}

	RouteReader interface {
		Handle(ctx context.Context, query queries.GetRouteQuery) (queries.GetRouteQueryResponse, error)
	}

	RouteConflictsReader interface {
		Handle(ctx context.Context, query queries.GetRouteConflictsQuery) ([]services.WindowConflict, error)
	}
)

// PlanningDefaults fills what a request leaves out.
type PlanningDefaults struct {
	Origin kernel.Location
	Params func(departAt time.Time) trip.OptimizationParameters
	Now    func() time.Time
}

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler      OrderCreator
	planTripsHandler        TripPlanner
	adjustRouteHandler      RouteAdjuster
	completeDeliveryHandler DeliveryCompleter

	// Query handlers
	getPendingOrdersHandler  PendingOrdersReader
	getRouteHandler          RouteReader
	getRouteConflictsHandler RouteConflictsReader

	defaults PlanningDefaults
	metrics  *metrics.Metrics
}

var _ servers.ServerInterface = (*Server)(nil)

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler OrderCreator,
	planTripsHandler TripPlanner,
	adjustRouteHandler RouteAdjuster,
	completeDeliveryHandler DeliveryCompleter,
	getPendingOrdersHandler PendingOrdersReader,
	getRouteHandler RouteReader,
	getRouteConflictsHandler RouteConflictsReader,
	defaults PlanningDefaults,
	m *metrics.Metrics,
) *Server {
	if defaults.Now == nil {
		defaults.Now = time.Now
	}
	if defaults.Params == nil {
		defaults.Params = trip.DefaultParameters
	}

	return &Server{
		createOrderHandler:       createOrderHandler,
		planTripsHandler:         planTripsHandler,
		adjustRouteHandler:       adjustRouteHandler,
		completeDeliveryHandler:  completeDeliveryHandler,
		getPendingOrdersHandler:  getPendingOrdersHandler,
		getRouteHandler:          getRouteHandler,
		getRouteConflictsHandler: getRouteConflictsHandler,
		defaults:                 defaults,
		metrics:                  m,
	}
}

// CreateOrder handles POST /api/v1/orders - registers a pending order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body servers.CreateOrderJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := newCreateOrderCommand(body)
	if err != nil {
		return writeDomainError(ctx, err, "Invalid order data")
	}

	if handleErr := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeDomainError(ctx, handleErr, "Failed to create order")
	}

	return ctx.JSON(http.StatusCreated, servers.CreatedOrder{Id: cmd.OrderID().Google()})
}

// GetPendingOrders handles GET /api/v1/orders/pending - lists orders awaiting planning.
func (s *Server) GetPendingOrders(ctx echo.Context) error {
	orders, err := s.getPendingOrdersHandler.Handle(ctx.Request().Context(), queries.NewGetPendingOrdersQuery())
	if err != nil {
		return writeError(ctx, http.StatusInternalServerError, "Failed to retrieve orders")
	}

	response := make([]servers.PendingOrder, len(orders))
	for i, o := range orders {
		response[i] = servers.PendingOrder{
			Id:          o.ID.Google(),
			Destination: toLocation(o.Destination),
			Priority:    o.Priority.String(),
			WindowStart: o.WindowStart,
			WindowEnd:   o.WindowEnd,
			SkuCount:    o.SKUCount,
			WeightKg:    o.WeightKg,
			VolumeM3:    o.VolumeM3,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// PlanTrips handles POST /api/v1/plans - plans every pending order.
func (s *Server) PlanTrips(ctx echo.Context) error {
	var body servers.PlanTripsJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := s.newPlanTripsCommand(body)
	if err != nil {
		return writeDomainError(ctx, err, "Invalid planning request")
	}

	start := time.Now()
	result, err := s.planTripsHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		outcome := metrics.OutcomeFailed
		if errors.Is(err, commands.ErrNoPendingOrders) {
			outcome = metrics.OutcomeEmpty
		}
		s.metrics.ObservePlan(outcome, time.Since(start), 0, 0)
		return writeDomainError(ctx, err, "Failed to plan trips")
	}
	s.metrics.ObservePlan(metrics.OutcomeSuccess, time.Since(start),
		len(result.Plan.Routes), len(result.Plan.Compliance.Flagged()))

	return ctx.JSON(http.StatusCreated, PlanResponse(result))
}

// GetRoute handles GET /api/v1/routes/{routeId}.
func (s *Server) GetRoute(ctx echo.Context, routeId servers.RouteId) error {
	routeID, err := kernel.UUIDFromGoogle(routeId)
	if err != nil {
		return writeDomainError(ctx, err, "Invalid route id")
	}

	query, err := queries.NewGetRouteQuery(routeID)
	if err != nil {
		return writeDomainError(ctx, err, "Invalid route id")
	}

	response, err := s.getRouteHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeDomainError(ctx, err, "Failed to retrieve route")
	}

	return ctx.JSON(http.StatusOK, routeResponseToAPI(response))
}

// AdjustRoute handles POST /api/v1/routes/{routeId}/adjustments.
func (s *Server) AdjustRoute(ctx echo.Context, routeId servers.RouteId) error {
	var body servers.AdjustRouteJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := s.newAdjustRouteCommand(routeId, body)
	if err != nil {
		s.metrics.ObserveAdjustment("http", metrics.OutcomeFailed)
		return writeDomainError(ctx, err, "Invalid adjustment")
	}

	adjusted, err := s.adjustRouteHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		s.metrics.ObserveAdjustment("http", metrics.OutcomeFailed)
		return writeDomainError(ctx, err, "Failed to adjust route")
	}
	s.metrics.ObserveAdjustment("http", metrics.OutcomeSuccess)

	return ctx.JSON(http.StatusOK, toRoute(adjusted, ""))
}

// GetRouteConflicts handles GET /api/v1/routes/{routeId}/conflicts.
func (s *Server) GetRouteConflicts(ctx echo.Context, routeId servers.RouteId) error {
	routeID, err := kernel.UUIDFromGoogle(routeId)
	if err != nil {
		return writeDomainError(ctx, err, "Invalid route id")
	}

	query, err := queries.NewGetRouteConflictsQuery(routeID, s.defaults.Params(s.defaults.Now().UTC()))
	if err != nil {
		return writeDomainError(ctx, err, "Invalid conflict query")
	}

	conflicts, err := s.getRouteConflictsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeDomainError(ctx, err, "Failed to resolve conflicts")
	}

	return ctx.JSON(http.StatusOK, toConflicts(conflicts))
}

// CompleteDelivery handles POST /api/v1/routes/{routeId}/deliveries/{orderId}.
func (s *Server) CompleteDelivery(ctx echo.Context, routeId servers.RouteId, orderId openapi_types.UUID) error {
	routeID, routeErr := kernel.UUIDFromGoogle(routeId)
	orderID, orderErr := kernel.UUIDFromGoogle(orderId)
	if err := errors.Join(routeErr, orderErr); err != nil {
		return writeDomainError(ctx, err, "Invalid identifiers")
	}

	cmd, err := commands.NewCompleteDeliveryCommand(routeID, orderID)
	if err != nil {
		return writeDomainError(ctx, err, "Invalid identifiers")
	}

	updated, err := s.completeDeliveryHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeDomainError(ctx, err, "Failed to complete delivery")
	}
	s.metrics.ObserveDelivery()

	return ctx.JSON(http.StatusOK, toRoute(updated, ""))
}
