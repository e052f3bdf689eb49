package cmd

import (
	"context"
	"log/slog"
	"time"

	httpadapter "tripplanner/internal/adapters/in/http"
	kafkain "tripplanner/internal/adapters/in/kafka"
	"tripplanner/internal/adapters/out/postgres"
	"tripplanner/internal/core/application/usecases/commands"
	"tripplanner/internal/core/application/usecases/queries"
	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/core/domain/services"
	"tripplanner/internal/core/ports"
	"tripplanner/internal/jobs"
	"tripplanner/internal/pkg/metrics"

	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	origin     kernel.Location
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	planner    *services.Planner
	publisher  ports.RouteEventPublisher
	exporter   ports.RouteManifestExporter
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewCompositionRoot wires the application. publisher and exporter may be nil.
func NewCompositionRoot(
	config Config,
	origin kernel.Location,
	gormDB *gorm.DB,
	publisher ports.RouteEventPublisher,
	exporter ports.RouteManifestExporter,
	logger *slog.Logger,
) CompositionRoot {
	return CompositionRoot{
		config:     config,
		origin:     origin,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		planner:    services.NewPlanner(logger),
		publisher:  publisher,
		exporter:   exporter,
		metrics:    metrics.New(),
		logger:     logger,
	}
}

func (c *CompositionRoot) Metrics() *metrics.Metrics {
	return c.metrics
}

func (c *CompositionRoot) Parameters(departAt time.Time) trip.OptimizationParameters {
	return c.config.Parameters(departAt)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() *commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	h := commands.NewCreateOrderCommandHandler(f)
	return &h
}

func (c *CompositionRoot) CreatePlanTripsCommandHandler() commands.PlanTripsCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewPlanTripsCommandHandler(f, c.planner, c.publisher, c.exporter, c.logger)
}

func (c *CompositionRoot) CreateAdjustRouteCommandHandler() commands.AdjustRouteCommandHandler {
	var f commands.RouteUoWFactory = FuncRouteUoWFactory(func() commands.RouteUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAdjustRouteCommandHandler(f, c.planner, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateCompleteDeliveryCommandHandler() commands.CompleteDeliveryCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompleteDeliveryCommandHandler(f, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateGetPendingOrdersQueryHandler() queries.GetPendingOrdersQueryHandler {
	return queries.NewGetPendingOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetRouteQueryHandler() queries.GetRouteQueryHandler {
	return queries.NewGetRouteQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetRouteConflictsQueryHandler() queries.GetRouteConflictsQueryHandler {
	return queries.NewGetRouteConflictsQueryHandler(c.uowFactory, c.planner)
}

func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreatePlanTripsCommandHandler(),
		c.CreateAdjustRouteCommandHandler(),
		c.CreateCompleteDeliveryCommandHandler(),
		c.CreateGetPendingOrdersQueryHandler(),
		c.CreateGetRouteQueryHandler(),
		c.CreateGetRouteConflictsQueryHandler(),
		httpadapter.PlanningDefaults{Origin: c.origin, Params: c.Parameters},
		c.metrics,
	)
}

func (c *CompositionRoot) CreateRateLimiter() *httpadapter.RateLimiter {
	cfg := httpadapter.DefaultRateLimiterConfig()
	cfg.RequestsPerSecond = rate.Limit(c.config.RateLimitRPS)
	cfg.Burst = c.config.RateLimitBurst
	return httpadapter.NewRateLimiter(cfg)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	planning := jobs.NewTripPlanningJob(
		c.CreatePlanTripsCommandHandler(),
		func(now time.Time) (commands.PlanTripsCommand, error) {
			return commands.NewPlanTripsCommand(c.origin, c.Parameters(now))
		},
		c.config.PlannerCron,
		c.config.PlannerTimeout,
		c.metrics,
		c.logger,
	)
	return jobs.NewJobManager(planning)
}

func (c *CompositionRoot) CreateTelemetryConsumer() (*kafkain.TelemetryConsumer, error) {
	adjuster := meteredRouteAdjuster{
		next:    c.CreateAdjustRouteCommandHandler(),
		metrics: c.metrics,
		source:  "telemetry",
	}
	return kafkain.NewTelemetryConsumer(
		c.config.KafkaBrokers(),
		c.config.KafkaConsumerGroup,
		c.config.KafkaTelemetryTopic,
		adjuster,
		func() trip.OptimizationParameters { return c.Parameters(time.Now().UTC()) },
		c.logger,
	)
}

// meteredRouteAdjuster counts adjustment outcomes per source.
type meteredRouteAdjuster struct {
	next    kafkain.RouteAdjuster
	metrics *metrics.Metrics
	source  string
}

func (a meteredRouteAdjuster) Handle(ctx context.Context, cmd commands.AdjustRouteCommand) (*route.Route, error) {
	r, err := a.next.Handle(ctx, cmd)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	a.metrics.ObserveAdjustment(a.source, outcome)
	return r, err
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncRouteUoWFactory func() commands.RouteUoW

func (f FuncRouteUoWFactory) Create() commands.RouteUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
