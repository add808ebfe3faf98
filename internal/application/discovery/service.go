// Package discovery is the application service for combination-discovery
// runs.  It validates requests, assembles the immutable run inputs, drives
// the evolutionary engine, and fans results out to the run store, the
// artifact store, the cache, and the event bus.
package discovery

import (
	"context"
	"time"

	"github.com/turtacn/CombiRx-Discovery/internal/config"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/storage/minio"
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/common"
	types "github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// RunStore persists run metadata and lifecycle transitions.
// *repositories.RunRepository satisfies it.
type RunStore interface {
	Create(ctx context.Context, run *types.Run) error
	GetByID(ctx context.Context, id common.ID) (*types.Run, error)
	List(ctx context.Context, status common.Status, page common.Pagination) ([]*types.Run, int, error)
	MarkStarted(ctx context.Context, id common.ID, at time.Time) error
	MarkCompleted(ctx context.Context, id common.ID, at time.Time, artifactKey string, drugCount int) error
	MarkFailed(ctx context.Context, id common.ID, at time.Time, message string) error
}

// EventPublisher emits run lifecycle events.  *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key, eventType string, payload interface{}) error
}

// ResultCache is the subset of the redis cache the service needs.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Service is the discovery run application surface.
type Service interface {
	// ExecuteRun runs a discovery search synchronously and returns the
	// full result.
	ExecuteRun(ctx context.Context, req *types.RunRequest) (*types.RunResult, error)
	// SubmitRun validates and persists a run for asynchronous execution.
	SubmitRun(ctx context.Context, req *types.RunRequest) (*types.Run, error)
	// ExecuteSubmitted executes a previously submitted pending run.
	ExecuteSubmitted(ctx context.Context, id common.ID) error
	GetRun(ctx context.Context, id common.ID) (*types.Run, error)
	GetRunResult(ctx context.Context, id common.ID) (*types.RunResult, error)
	ListRuns(ctx context.Context, status common.Status, page common.Pagination) ([]*types.Run, int, error)
}

const resultCacheTTL = time.Hour

func resultCacheKey(id common.ID) string {
	return "run:" + id.String() + ":result"
}

type runService struct {
	store     RunStore
	artifacts minio.ArtifactRepository
	cache     ResultCache
	events    EventPublisher
	metrics   *prometheus.AppMetrics
	engineCfg config.EngineConfig
	logger    logging.Logger
}

// NewService wires the run service.  cache, events, and metrics may be nil;
// the corresponding side effects are then skipped.
func NewService(
	store RunStore,
	artifacts minio.ArtifactRepository,
	cache ResultCache,
	events EventPublisher,
	metrics *prometheus.AppMetrics,
	engineCfg config.EngineConfig,
	logger logging.Logger,
) (Service, error) {
	if store == nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "run service requires a run store")
	}
	if artifacts == nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "run service requires an artifact store")
	}
	if err := engineCfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid engine defaults")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &runService{
		store:     store,
		artifacts: artifacts,
		cache:     cache,
		events:    events,
		metrics:   metrics,
		engineCfg: engineCfg,
		logger:    logger.Named("discovery"),
	}, nil
}

func (s *runService) ExecuteRun(ctx context.Context, req *types.RunRequest) (*types.RunResult, error) {
	merged := *req
	merged.Parameters = s.mergeParameters(req.Parameters)

	rt, err := s.assemble(&merged)
	if err != nil {
		return nil, err
	}

	run := &types.Run{
		ID:         common.NewID(),
		Status:     common.StatusPending,
		Parameters: merged.Parameters,
		DrugCount:  rt.index.Len(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Create(ctx, run); err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.TopicRunCreated, run.ID, kafka.RunCreatedPayload{
		RunID:     run.ID.String(),
		DrugCount: run.DrugCount,
		CreatedAt: run.CreatedAt,
	})

	return s.execute(ctx, run, rt)
}

func (s *runService) SubmitRun(ctx context.Context, req *types.RunRequest) (*types.Run, error) {
	merged := *req
	merged.Parameters = s.mergeParameters(req.Parameters)

	// Full assembly up front: a submission that cannot run is rejected now,
	// not when a worker picks it up.
	rt, err := s.assemble(&merged)
	if err != nil {
		return nil, err
	}

	run := &types.Run{
		ID:         common.NewID(),
		Status:     common.StatusPending,
		Parameters: merged.Parameters,
		DrugCount:  rt.index.Len(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Create(ctx, run); err != nil {
		return nil, err
	}
	if _, err := s.artifacts.SaveRunRequest(ctx, run.ID, &merged); err != nil {
		failure := errors.Wrap(err, errors.ErrCodeRunEnqueueFailed, "failed to park run request")
		s.failRun(ctx, run, time.Now().UTC(), failure)
		return nil, failure
	}

	s.publish(ctx, kafka.TopicRunCreated, run.ID, kafka.RunCreatedPayload{
		RunID:     run.ID.String(),
		DrugCount: run.DrugCount,
		CreatedAt: run.CreatedAt,
	})
	s.logger.Info("run submitted",
		logging.String("run_id", run.ID.String()),
		logging.Int("drug_count", run.DrugCount))
	return run, nil
}

func (s *runService) ExecuteSubmitted(ctx context.Context, id common.ID) error {
	run, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if run.Status.IsTerminal() {
		s.logger.Info("skipping run in terminal state",
			logging.String("run_id", id.String()),
			logging.String("status", string(run.Status)))
		return nil
	}
	if run.Status != common.StatusPending {
		return errors.New(errors.ErrCodeRunStateInvalid,
			"run "+id.String()+" is not pending (status "+string(run.Status)+")")
	}

	req, err := s.artifacts.LoadRunRequest(ctx, id)
	if err != nil {
		s.failRun(ctx, run, time.Now().UTC(), err)
		return err
	}
	rt, err := s.assemble(req)
	if err != nil {
		s.failRun(ctx, run, time.Now().UTC(), err)
		return err
	}

	_, err = s.execute(ctx, run, rt)
	return err
}

// execute drives a created run to a terminal state.
func (s *runService) execute(ctx context.Context, run *types.Run, rt *runtime) (*types.RunResult, error) {
	started := time.Now().UTC()
	if err := s.store.MarkStarted(ctx, run.ID, started); err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.TopicRunStarted, run.ID, kafka.RunStartedPayload{
		RunID:     run.ID.String(),
		StartedAt: started,
	})
	if s.metrics != nil {
		s.metrics.RunsActive.WithLabelValues().Inc()
		defer s.metrics.RunsActive.WithLabelValues().Dec()
	}
	s.logger.Info("run started",
		logging.String("run_id", run.ID.String()),
		logging.Int("drug_count", rt.index.Len()))

	out, err := rt.engine.Run(ctx)
	if err != nil {
		s.failRun(ctx, run, started, err)
		return nil, err
	}

	result := ExtractResult(run.ID, rt.index, out)
	key, err := s.artifacts.SaveRunResult(ctx, result)
	if err != nil {
		s.failRun(ctx, run, started, err)
		return nil, err
	}

	finished := time.Now().UTC()
	if err := s.store.MarkCompleted(ctx, run.ID, finished, key, rt.index.Len()); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, resultCacheKey(run.ID), result, resultCacheTTL); err != nil {
			s.logger.Warn("failed to cache run result",
				logging.String("run_id", run.ID.String()), logging.Err(err))
		}
	}
	s.publish(ctx, kafka.TopicRunCompleted, run.ID, kafka.RunCompletedPayload{
		RunID:       run.ID.String(),
		ArtifactKey: key,
		Solutions:   len(result.Solutions),
		Generations: len(result.Log),
		FinishedAt:  finished,
	})
	if s.metrics != nil {
		prometheus.RecordRunCompleted(s.metrics, string(common.StatusCompleted), finished.Sub(started), len(result.Solutions))
	}
	s.logger.Info("run completed",
		logging.String("run_id", run.ID.String()),
		logging.Int("solutions", len(result.Solutions)),
		logging.Duration("elapsed", finished.Sub(started)))
	return result, nil
}

func (s *runService) failRun(ctx context.Context, run *types.Run, started time.Time, cause error) {
	finished := time.Now().UTC()
	if err := s.store.MarkFailed(ctx, run.ID, finished, cause.Error()); err != nil {
		s.logger.Error("failed to record run failure",
			logging.String("run_id", run.ID.String()), logging.Err(err))
	}
	s.publish(ctx, kafka.TopicRunFailed, run.ID, kafka.RunFailedPayload{
		RunID:      run.ID.String(),
		ErrorCode:  string(errors.GetCode(cause)),
		Message:    cause.Error(),
		FinishedAt: finished,
	})
	if s.metrics != nil {
		prometheus.RecordRunCompleted(s.metrics, string(common.StatusFailed), finished.Sub(started), -1)
		if errors.IsDegenerateInput(cause) {
			prometheus.RecordDegenerateInput(s.metrics, string(errors.GetCode(cause)))
		}
	}
	s.logger.Error("run failed",
		logging.String("run_id", run.ID.String()),
		logging.String("code", string(errors.GetCode(cause))),
		logging.Err(cause))
}

func (s *runService) GetRun(ctx context.Context, id common.ID) (*types.Run, error) {
	return s.store.GetByID(ctx, id)
}

func (s *runService) GetRunResult(ctx context.Context, id common.ID) (*types.RunResult, error) {
	run, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Status != common.StatusCompleted {
		return nil, errors.New(errors.ErrCodeRunStateInvalid,
			"run "+id.String()+" has no result (status "+string(run.Status)+")")
	}

	if s.cache != nil {
		var cached types.RunResult
		if err := s.cache.Get(ctx, resultCacheKey(id), &cached); err == nil {
			if s.metrics != nil {
				prometheus.RecordCacheAccess(s.metrics, "run_result", true)
			}
			return &cached, nil
		}
		if s.metrics != nil {
			prometheus.RecordCacheAccess(s.metrics, "run_result", false)
		}
	}

	result, err := s.artifacts.LoadRunResult(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, resultCacheKey(id), result, resultCacheTTL); err != nil {
			s.logger.Warn("failed to cache run result",
				logging.String("run_id", id.String()), logging.Err(err))
		}
	}
	return result, nil
}

func (s *runService) ListRuns(ctx context.Context, status common.Status, page common.Pagination) ([]*types.Run, int, error) {
	return s.store.List(ctx, status, page)
}

func (s *runService) publish(ctx context.Context, topic string, id common.ID, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, topic, id.String(), topic, payload); err != nil {
		s.logger.Warn("failed to publish run event",
			logging.String("topic", topic),
			logging.String("run_id", id.String()),
			logging.Err(err))
	}
}

//Personal.AI order the ending
