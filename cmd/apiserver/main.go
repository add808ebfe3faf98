// The apiserver binary serves the CombiRx-Discovery HTTP and gRPC APIs.
// It wires the run store, graph store, cache, event bus, and artifact store
// into the discovery application service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/CombiRx-Discovery/internal/application/discovery"
	"github.com/turtacn/CombiRx-Discovery/internal/config"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/database/neo4j"
	neo4jrepo "github.com/turtacn/CombiRx-Discovery/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/database/postgres"
	pgrepo "github.com/turtacn/CombiRx-Discovery/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/database/redis"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/storage/minio"
	grpcserver "github.com/turtacn/CombiRx-Discovery/internal/interfaces/grpc"
	httpserver "github.com/turtacn/CombiRx-Discovery/internal/interfaces/http"
	"github.com/turtacn/CombiRx-Discovery/internal/interfaces/http/handlers"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
)

const shutdownGrace = 30 * time.Second

// loadConfig reads the YAML file when a path is given, otherwise builds the
// configuration from COMBIRX_* environment variables.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "apiserver:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewLogger(toLogConfig(cfg.Log))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.SetDefault(logger)
	logger.Info("starting apiserver", logging.String("version", version))

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "combirx",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Run store ────────────────────────────────────────────────────────────
	pgConn, err := postgres.NewConnection(ctx, toPostgresConfig(cfg.Database), logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pgConn.Close()

	if cfg.Database.MigrationPath != "" {
		dsn := toPostgresConfig(cfg.Database).DSN()
		if err := postgres.RunMigrations(dsn, cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}
	runStore := pgrepo.NewRunRepository(pgConn.Pool(), logger)

	// ── Graph store (shared network dataset) ─────────────────────────────────
	checkers := []handlers.HealthChecker{
		handlers.CheckFunc{ComponentName: "postgres", Fn: pgConn.HealthCheck},
	}
	var networkRepo neo4jrepo.NetworkRepository
	if cfg.Neo4j.URI != "" {
		graphDriver, err := neo4j.NewDriver(toNeo4jConfig(cfg.Neo4j), logger)
		if err != nil {
			return fmt.Errorf("connect neo4j: %w", err)
		}
		defer func() { _ = graphDriver.Close() }()
		networkRepo = neo4jrepo.NewNeo4jNetworkRepo(graphDriver, logger)
		checkers = append(checkers, handlers.CheckFunc{ComponentName: "neo4j", Fn: graphDriver.HealthCheck})
	}

	// ── Result cache ─────────────────────────────────────────────────────────
	var resultCache discovery.ResultCache
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.NewClient(toRedisConfig(cfg.Redis), logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = redisClient.Close() }()
		resultCache = redis.NewRedisCache(redisClient, logger)
		checkers = append(checkers, handlers.CheckFunc{ComponentName: "redis", Fn: redisClient.Ping})
	}

	// ── Event bus ────────────────────────────────────────────────────────────
	var events discovery.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(toProducerConfig(cfg.Kafka, "combirx-apiserver"), "apiserver", logger)
		if err != nil {
			return fmt.Errorf("init kafka producer: %w", err)
		}
		defer func() { _ = producer.Close() }()
		events = producer
	}

	// ── Artifact store ───────────────────────────────────────────────────────
	minioClient, err := minio.NewMinIOClient(toMinIOConfig(cfg.MinIO), logger)
	if err != nil {
		return fmt.Errorf("connect minio: %w", err)
	}
	defer func() { _ = minioClient.Close() }()
	if err := minioClient.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure artifact bucket: %w", err)
	}
	artifacts := minio.NewArtifactRepository(minioClient, logger)
	checkers = append(checkers, handlers.CheckFunc{ComponentName: "minio", Fn: minioClient.HealthCheck})

	// ── Application service ──────────────────────────────────────────────────
	svc, err := discovery.NewService(runStore, artifacts, resultCache, events, metrics, cfg.Engine, logger)
	if err != nil {
		return fmt.Errorf("init discovery service: %w", err)
	}

	// ── Transports ───────────────────────────────────────────────────────────
	routerCfg := httpserver.RouterConfig{
		DiscoveryHandler: handlers.NewDiscoveryHandler(svc, logger),
		HealthHandler:    handlers.NewHealthHandler(version, checkers...),
		Logger:           logger,
		Metrics:          metrics,
		MetricsHandler:   collector.Handler(),
	}
	if networkRepo != nil {
		routerCfg.DatasetHandler = handlers.NewDatasetHandler(networkRepo, logger)
	}

	httpSrv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)
	grpcSrv, err := grpcserver.NewServer(cfg.Server, grpcserver.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("init grpc server: %w", err)
	}

	errCh := make(chan error, 2)
	go func() { errCh <- httpSrv.Start() }()
	go func() { errCh <- grpcSrv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpSrv.Stop(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", logging.Err(err))
	}
	if err := grpcSrv.Stop(shutdownCtx); err != nil {
		logger.Error("grpc shutdown failed", logging.Err(err))
	}
	return nil
}

//Personal.AI order the ending
