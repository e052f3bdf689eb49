package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripplanner/cmd"
	httpadapter "tripplanner/internal/adapters/in/http"
	kafkaout "tripplanner/internal/adapters/out/kafka"
	postgresadapter "tripplanner/internal/adapters/out/postgres"
	s3adapter "tripplanner/internal/adapters/out/s3"
	"tripplanner/internal/core/ports"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	origin, err := configs.Origin()
	if err != nil {
		log.Fatalf("Invalid origin: %v", err)
	}

	gormDB, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err = gormDB.AutoMigrate(postgresadapter.Models()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var publisher ports.RouteEventPublisher
	if brokers := configs.KafkaBrokers(); len(brokers) > 0 {
		producer, producerErr := kafkaout.NewRouteEventProducer(brokers, configs.KafkaRouteEventsTopic)
		if producerErr != nil {
			log.Fatalf("Failed to create route event producer: %v", producerErr)
		}
		defer producer.Close()
		publisher = producer
	}

	var exporter ports.RouteManifestExporter
	if configs.S3Bucket != "" {
		client, clientErr := s3adapter.NewClient(ctx, configs.S3Region, configs.S3Endpoint)
		if clientErr != nil {
			log.Fatalf("Failed to create S3 client: %v", clientErr)
		}
		manifests, exporterErr := s3adapter.NewManifestExporter(client, configs.S3Bucket, configs.S3Prefix)
		if exporterErr != nil {
			log.Fatalf("Failed to create manifest exporter: %v", exporterErr)
		}
		exporter = manifests
	}

	app := cmd.NewCompositionRoot(configs, origin, gormDB, publisher, exporter, logger)

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	g, gctx := errgroup.WithContext(ctx)
	startWebServer(gctx, g, &app, configs.HTTPPort)
	if len(configs.KafkaBrokers()) > 0 {
		startTelemetryConsumer(gctx, g, &app)
	}

	if err = g.Wait(); err != nil {
		logger.Error("Service stopped with error", "error", err)
		return
	}
	logger.Info("Service stopped")
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Infof("No .env file loaded, using the process environment")
	}

	config, err := cmd.LoadConfig(os.Getenv, os.Environ())
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return config
}

func startWebServer(ctx context.Context, g *errgroup.Group, app *cmd.CompositionRoot, port string) {
	limiter := app.CreateRateLimiter()
	e, err := httpadapter.NewRouter(app.CreateHTTPServer(), app.Metrics(), limiter)
	if err != nil {
		log.Fatalf("Failed to build HTTP router: %v", err)
	}

	g.Go(func() error {
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); !errors.Is(startErr, http.ErrServerClosed) {
			return startErr
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		limiter.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
}

func startTelemetryConsumer(ctx context.Context, g *errgroup.Group, app *cmd.CompositionRoot) {
	consumer, err := app.CreateTelemetryConsumer()
	if err != nil {
		log.Fatalf("Failed to create telemetry consumer: %v", err)
	}

	g.Go(func() error {
		return consumer.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		return consumer.Close()
	})
}
