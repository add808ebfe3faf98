// The worker binary executes submitted discovery runs.  It consumes run
// lifecycle events from Kafka, takes a per-run distributed lock so a run is
// executed exactly once across the worker fleet, and drives the discovery
// service through the evolutionary search.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/CombiRx-Discovery/internal/application/discovery"
	"github.com/turtacn/CombiRx-Discovery/internal/config"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/database/postgres"
	pgrepo "github.com/turtacn/CombiRx-Discovery/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/database/redis"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/storage/minio"
	httpserver "github.com/turtacn/CombiRx-Discovery/internal/interfaces/http"
	"github.com/turtacn/CombiRx-Discovery/internal/interfaces/http/handlers"
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/common"
)

var version = "dev"

const (
	shutdownGrace = 30 * time.Second

	// runLockTTL must exceed the longest expected run; the executor extends
	// the lock while the engine is still working.
	runLockTTL    = 30 * time.Minute
	lockExtendGap = 10 * time.Minute
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	healthPort := flag.Int("health-port", 8081, "port for health and metrics endpoints")
	flag.Parse()

	if err := run(*configPath, *healthPort); err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
}

func run(configPath string, healthPort int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewLogger(toLogConfig(cfg.Log))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.SetDefault(logger)
	logger = logger.Named("worker")
	logger.Info("starting worker", logging.String("version", version))

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "combirx",
		Subsystem:            "worker",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Infrastructure ───────────────────────────────────────────────────────
	pgConn, err := postgres.NewConnection(ctx, toPostgresConfig(cfg.Database), logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pgConn.Close()
	runStore := pgrepo.NewRunRepository(pgConn.Pool(), logger)

	redisClient, err := redis.NewClient(toRedisConfig(cfg.Redis), logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()
	resultCache := redis.NewRedisCache(redisClient, logger)

	minioClient, err := minio.NewMinIOClient(toMinIOConfig(cfg.MinIO), logger)
	if err != nil {
		return fmt.Errorf("connect minio: %w", err)
	}
	defer func() { _ = minioClient.Close() }()
	artifacts := minio.NewArtifactRepository(minioClient, logger)

	producer, err := kafka.NewProducer(toProducerConfig(cfg.Kafka, "combirx-worker"), "worker", logger)
	if err != nil {
		return fmt.Errorf("init kafka producer: %w", err)
	}
	defer func() { _ = producer.Close() }()

	topics, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger)
	if err != nil {
		return fmt.Errorf("connect kafka: %w", err)
	}
	if err := topics.EnsureDefaultTopics(ctx); err != nil {
		logger.Warn("topic provisioning failed", logging.Err(err))
	}
	_ = topics.Close()

	// ── Application service ──────────────────────────────────────────────────
	svc, err := discovery.NewService(runStore, artifacts, resultCache, producer, metrics, cfg.Engine, logger)
	if err != nil {
		return fmt.Errorf("init discovery service: %w", err)
	}

	executor := &runExecutor{
		svc:    svc,
		locks:  redisClient,
		logger: logger,
	}

	// ── Consumers ────────────────────────────────────────────────────────────
	concurrency := cfg.Worker.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
			Topic:   kafka.TopicRunCreated,
		}, producer, logger)
		if err != nil {
			return fmt.Errorf("init kafka consumer: %w", err)
		}
		consumer.Subscribe(kafka.TopicRunCreated, executor.handleRunCreated)

		c := consumer
		g.Go(func() error {
			defer func() { _ = c.Close() }()
			return c.Start(gctx)
		})
	}

	// ── Health endpoint ──────────────────────────────────────────────────────
	healthRouter := httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler: handlers.NewHealthHandler(version,
			handlers.CheckFunc{ComponentName: "postgres", Fn: pgConn.HealthCheck},
			handlers.CheckFunc{ComponentName: "redis", Fn: redisClient.Ping},
			handlers.CheckFunc{ComponentName: "minio", Fn: minioClient.HealthCheck},
		),
		Logger:         logger,
		MetricsHandler: collector.Handler(),
	})
	healthSrv := httpserver.NewServer(config.ServerConfig{Port: healthPort, Mode: "release"}, healthRouter, logger)
	g.Go(healthSrv.Start)

	logger.Info("worker consuming",
		logging.String("topic", kafka.TopicRunCreated),
		logging.String("group", cfg.Kafka.GroupID),
		logging.Int("concurrency", concurrency),
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := healthSrv.Stop(shutdownCtx); err != nil {
		logger.Error("health server shutdown failed", logging.Err(err))
	}
	return g.Wait()
}

// runExecutor turns run.created events into run executions guarded by a
// per-run distributed lock.
type runExecutor struct {
	svc    discovery.Service
	locks  *redis.Client
	logger logging.Logger
}

func (e *runExecutor) handleRunCreated(ctx context.Context, env *kafka.EventEnvelope) error {
	var payload kafka.RunCreatedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "undecodable run.created payload")
	}
	runID := common.ID(payload.RunID)

	lock := redis.NewRunLock(e.locks, e.logger, "run:"+runID.String(), redis.WithLockTTL(runLockTTL))
	acquired, err := lock.TryLock(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		// Another worker owns the run.
		e.logger.Debug("run locked elsewhere", logging.String("run_id", runID.String()))
		return nil
	}
	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Unlock(unlockCtx); err != nil {
			e.logger.Warn("run lock release failed", logging.Err(err))
		}
	}()

	execCtx, cancelExtend := context.WithCancel(ctx)
	defer cancelExtend()
	go e.keepLockAlive(execCtx, lock, runID)

	if err := e.svc.ExecuteSubmitted(execCtx, runID); err != nil {
		// Execution failures are recorded on the run itself; retrying the
		// event would re-fail against a terminal run.
		e.logger.Error("run execution failed",
			logging.String("run_id", runID.String()),
			logging.Err(err),
		)
	}
	return nil
}

func (e *runExecutor) keepLockAlive(ctx context.Context, lock *redis.RunLock, runID common.ID) {
	ticker := time.NewTicker(lockExtendGap)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := lock.Extend(ctx, runLockTTL)
			if err != nil || !ok {
				e.logger.Warn("run lock extension failed",
					logging.String("run_id", runID.String()),
					logging.Err(err),
				)
				return
			}
		}
	}
}

//Personal.AI order the ending
