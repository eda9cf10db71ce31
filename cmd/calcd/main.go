package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgkafka "github.com/project2052/calculation-service/pkg/kafka"
	"github.com/project2052/calculation-service/pkg/observability"
	pkgpostgres "github.com/project2052/calculation-service/pkg/postgres"

	"github.com/project2052/calculation-service/internal/application/usecase"
	"github.com/project2052/calculation-service/internal/domain/service"
	"github.com/project2052/calculation-service/internal/infrastructure/cache"
	"github.com/project2052/calculation-service/internal/infrastructure/config"
	"github.com/project2052/calculation-service/internal/infrastructure/executor"
	infraKafka "github.com/project2052/calculation-service/internal/infrastructure/kafka"
	infraPostgres "github.com/project2052/calculation-service/internal/infrastructure/persistence/postgres"
	grpcPresentation "github.com/project2052/calculation-service/internal/presentation/grpc"
	"github.com/project2052/calculation-service/internal/presentation/rest"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "calculation-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load and validate configuration.
	cfg := config.Load()
	cfg.Validate()

	// Initialize structured logger.
	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slog.SetDefault(logger)

	logger.Info("starting calculation-service",
		"grpc_port", cfg.GRPCPort,
		"http_port", cfg.HTTPPort,
		"cache_capacity", cfg.Cache.Capacity,
		"executor_workers", cfg.Executor.Workers,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Tracing.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(ctx) }() //nolint:errcheck // best-effort tracer shutdown
	}

	// Metrics. The service runs fine without them; the use case skips
	// recording when the instruments are absent.
	var calcMetrics *observability.CalculationMetrics
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Port:        cfg.HTTPPort,
	})
	if err != nil {
		logger.Warn("failed to initialize metrics, continuing without metrics", "error", err)
	} else {
		calcMetrics, err = observability.NewCalculationMetrics(meterProvider)
		if err != nil {
			logger.Warn("failed to register calculation metrics", "error", err)
		}
	}

	// Database pool.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()
	logger.Info("database pool created")

	// Run database migrations.
	migDSN := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}.DSN()
	if migErr := pkgpostgres.RunMigrations(migDSN, "file://internal/infrastructure/persistence/postgres/migrations"); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Kafka producer and event publisher.
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers: cfg.Kafka.Brokers,
	})
	defer kafkaProducer.Close()
	publisher := infraKafka.NewKafkaEventPublisher(kafkaProducer, cfg.Kafka.PublishTopic, logger)

	// Infrastructure.
	snapshotRepo := infraPostgres.NewSnapshotRepo(pool)
	store := cache.New(cfg.Cache.Capacity)
	engine := service.NewProjectionEngine(service.NewCircularSolver())
	execPool := executor.New(engine, logger, executor.Config{
		Workers: cfg.Executor.Workers,
		Timeout: time.Duration(cfg.Executor.TimeoutSeconds) * time.Second,
	})

	// Use cases.
	runCalc := usecase.NewRunCalculationUseCase(execPool, store, snapshotRepo, publisher, calcMetrics, logger)
	cacheStats := usecase.NewGetCacheStatsUseCase(store)
	invalidate := usecase.NewInvalidateProposalUseCase(store, snapshotRepo, publisher, logger)
	latest := usecase.NewGetLatestSnapshotUseCase(snapshotRepo)

	// Proposal event consumer: deleted proposals purge their calculations.
	consumer := infraKafka.NewProposalConsumer(pkgkafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
	}, cfg.Kafka.ProposalTopic, invalidate, logger)
	defer func() { _ = consumer.Close() }()

	// gRPC server.
	handler := grpcPresentation.NewHandler(runCalc, cacheStats, invalidate, latest, logger)
	grpcServer := grpcPresentation.NewServer(handler, logger, cfg.GRPCPort)

	// HTTP server: health probes and metrics.
	healthHandler := rest.NewHealthHandler(pool, logger)
	mux := http.NewServeMux()
	healthHandler.RegisterRoutes(mux)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start servers and the consumer.
	errCh := make(chan error, 3)

	go func() {
		errCh <- grpcServer.Start()
	}()

	go func() {
		logger.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			errCh <- fmt.Errorf("proposal consumer: %w", err)
		}
	}()

	// Wait for a shutdown signal or a server failure.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
		return err
	}

	// Graceful shutdown.
	logger.Info("shutting down")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("calculation-service stopped")
	return nil
}
