package cli

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/common"
	types "github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// memoryRunStore keeps run records in process memory.  Local CLI runs have
// no database; the record only exists for the duration of the command.
type memoryRunStore struct {
	mu   sync.Mutex
	runs map[common.ID]*types.Run
}

func newMemoryRunStore() *memoryRunStore {
	return &memoryRunStore{runs: make(map[common.ID]*types.Run)}
}

func (s *memoryRunStore) Create(_ context.Context, run *types.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *memoryRunStore) GetByID(_ context.Context, id common.ID) (*types.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run not found: "+id.String())
	}
	cp := *run
	return &cp, nil
}

func (s *memoryRunStore) List(_ context.Context, status common.Status, _ common.Pagination) ([]*types.Run, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Run
	for _, run := range s.runs {
		if status != "" && run.Status != status {
			continue
		}
		cp := *run
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (s *memoryRunStore) MarkStarted(_ context.Context, id common.ID, at time.Time) error {
	return s.update(id, func(run *types.Run) {
		run.Status = common.StatusRunning
		run.StartedAt = &at
	})
}

func (s *memoryRunStore) MarkCompleted(_ context.Context, id common.ID, at time.Time, artifactKey string, drugCount int) error {
	return s.update(id, func(run *types.Run) {
		run.Status = common.StatusCompleted
		run.FinishedAt = &at
		run.ArtifactKey = artifactKey
		run.DrugCount = drugCount
	})
}

func (s *memoryRunStore) MarkFailed(_ context.Context, id common.ID, at time.Time, message string) error {
	return s.update(id, func(run *types.Run) {
		run.Status = common.StatusFailed
		run.FinishedAt = &at
		run.Error = message
	})
}

func (s *memoryRunStore) update(id common.ID, fn func(*types.Run)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return errors.New(errors.ErrCodeRunNotFound, "run not found: "+id.String())
	}
	fn(run)
	return nil
}

// memoryArtifactRepo holds run artifacts in memory, mirroring the object
// store layout used by the server deployment.
type memoryArtifactRepo struct {
	mu       sync.Mutex
	results  map[common.ID]*types.RunResult
	requests map[common.ID]*types.RunRequest
}

func newMemoryArtifactRepo() *memoryArtifactRepo {
	return &memoryArtifactRepo{
		results:  make(map[common.ID]*types.RunResult),
		requests: make(map[common.ID]*types.RunRequest),
	}
}

func (r *memoryArtifactRepo) SaveRunResult(_ context.Context, result *types.RunResult) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.RunID] = result
	return "runs/" + result.RunID.String() + "/result.json", nil
}

func (r *memoryArtifactRepo) LoadRunResult(_ context.Context, runID common.ID) (*types.RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result, ok := r.results[runID]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "result artifact not found")
	}
	return result, nil
}

func (r *memoryArtifactRepo) SaveRunRequest(_ context.Context, runID common.ID, req *types.RunRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[runID] = req
	return "runs/" + runID.String() + "/request.json", nil
}

func (r *memoryArtifactRepo) LoadRunRequest(_ context.Context, runID common.ID) (*types.RunRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[runID]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "request artifact not found")
	}
	return req, nil
}

func (r *memoryArtifactRepo) DeleteRunArtifacts(_ context.Context, runID common.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.results, runID)
	delete(r.requests, runID)
	return nil
}

func (r *memoryArtifactRepo) ResultExists(_ context.Context, runID common.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.results[runID]
	return ok, nil
}

func (r *memoryArtifactRepo) PresignResultURL(_ context.Context, _ common.ID) (string, error) {
	return "", errors.New(errors.ErrCodeNotImplemented, "presigned URLs require an object store")
}

//Personal.AI order the ending
