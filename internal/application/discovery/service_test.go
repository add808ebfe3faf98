package discovery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CombiRx-Discovery/internal/config"
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/common"
	types "github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeStore struct {
	mu   sync.Mutex
	runs map[common.ID]*types.Run
}

func newFakeStore() *fakeStore {
	return &fakeStore{runs: make(map[common.ID]*types.Run)}
}

func (f *fakeStore) Create(ctx context.Context, run *types.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.runs[run.ID]; ok {
		return errors.New(errors.ErrCodeRunAlreadyExists, "duplicate")
	}
	cp := *run
	f.runs[run.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id common.ID) (*types.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeRunNotFound, "not found")
	}
	cp := *run
	return &cp, nil
}

func (f *fakeStore) List(ctx context.Context, status common.Status, page common.Pagination) ([]*types.Run, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Run
	for _, run := range f.runs {
		if status == "" || run.Status == status {
			cp := *run
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) MarkStarted(ctx context.Context, id common.ID, at time.Time) error {
	return f.transition(id, common.StatusPending, common.StatusRunning, func(r *types.Run) {
		r.StartedAt = &at
	})
}

func (f *fakeStore) MarkCompleted(ctx context.Context, id common.ID, at time.Time, artifactKey string, drugCount int) error {
	return f.transition(id, common.StatusRunning, common.StatusCompleted, func(r *types.Run) {
		r.FinishedAt = &at
		r.ArtifactKey = artifactKey
		r.DrugCount = drugCount
	})
}

func (f *fakeStore) MarkFailed(ctx context.Context, id common.ID, at time.Time, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return errors.New(errors.ErrCodeRunNotFound, "not found")
	}
	run.Status = common.StatusFailed
	run.FinishedAt = &at
	run.Error = message
	return nil
}

func (f *fakeStore) transition(id common.ID, from, to common.Status, apply func(*types.Run)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return errors.New(errors.ErrCodeRunNotFound, "not found")
	}
	if run.Status != from {
		return errors.New(errors.ErrCodeRunStateInvalid, "bad transition")
	}
	run.Status = to
	apply(run)
	return nil
}

type fakeArtifacts struct {
	mu       sync.Mutex
	results  map[common.ID]*types.RunResult
	requests map[common.ID]*types.RunRequest
	saveErr  error
}

func newFakeArtifacts() *fakeArtifacts {
	return &fakeArtifacts{
		results:  make(map[common.ID]*types.RunResult),
		requests: make(map[common.ID]*types.RunRequest),
	}
}

func (f *fakeArtifacts) SaveRunResult(ctx context.Context, result *types.RunResult) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.results[result.RunID] = result
	return "runs/" + result.RunID.String() + "/result.json", nil
}

func (f *fakeArtifacts) LoadRunResult(ctx context.Context, runID common.ID) (*types.RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.results[runID]
	if !ok {
		return nil, errors.NotFound("no result")
	}
	return result, nil
}

func (f *fakeArtifacts) SaveRunRequest(ctx context.Context, runID common.ID, req *types.RunRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[runID] = req
	return "runs/" + runID.String() + "/request.json", nil
}

func (f *fakeArtifacts) LoadRunRequest(ctx context.Context, runID common.ID) (*types.RunRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[runID]
	if !ok {
		return nil, errors.NotFound("no request")
	}
	return req, nil
}

func (f *fakeArtifacts) DeleteRunArtifacts(ctx context.Context, runID common.ID) error {
	return nil
}

func (f *fakeArtifacts) ResultExists(ctx context.Context, runID common.ID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.results[runID]
	return ok, nil
}

func (f *fakeArtifacts) PresignResultURL(ctx context.Context, runID common.ID) (string, error) {
	return "https://store.local/" + runID.String(), nil
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]*types.RunResult
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]*types.RunResult)}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return errors.NotFound("miss")
	}
	*dest.(*types.RunResult) = *value
	return nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value.(*types.RunResult)
	return nil
}

type publishedEvent struct {
	topic     string
	key       string
	eventType string
}

type fakeEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeEvents) PublishEvent(ctx context.Context, topic, key, eventType string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{topic: topic, key: key, eventType: eventType})
	return nil
}

func (f *fakeEvents) topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.topic
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixture
// ─────────────────────────────────────────────────────────────────────────────

// sampleRequest builds a small but fully valid run: four drugs over a
// six-leaf star interactome with ranked nodes.
func sampleRequest(seed int64) *types.RunRequest {
	drugs := []string{"d1", "d2", "d3", "d4"}
	var distances []types.DistanceRecord
	for i := 0; i < len(drugs); i++ {
		for j := i + 1; j < len(drugs); j++ {
			distances = append(distances, types.DistanceRecord{
				Drug1:    drugs[i],
				Drug2:    drugs[j],
				Distance: float64(i+j) * 0.25,
			})
		}
	}

	leaves := []string{"la", "lb", "lc", "ld", "le", "lf"}
	var edges []types.EdgeRecord
	ranks := []types.RankRecord{{Gene: "HUB", Rank: 1}}
	for i, leaf := range leaves {
		edges = append(edges, types.EdgeRecord{Gene1: "HUB", Gene2: leaf})
		ranks = append(ranks, types.RankRecord{Gene: leaf, Rank: float64(i + 2)})
	}

	return &types.RunRequest{
		SmilesDistances: distances,
		MoaDistances:    distances,
		GraphDistances:  distances,
		PPINetwork:      edges,
		GraphRank:       ranks,
		DrugTargets: []types.TargetRecord{
			{Drug: "d1", Gene: "la"},
			{Drug: "d2", Gene: "lb"},
			{Drug: "d3", Gene: "lc"},
			{Drug: "d4", Gene: "ld"},
		},
		Parameters: types.Parameters{
			PopulationSize: types.Int(8),
			NOffsprings:    types.Int(8),
			NGenerations:   types.Int(2),
			Seed:           &seed,
		},
	}
}

func engineDefaults() config.EngineConfig {
	return config.EngineConfig{
		PopulationSize:        16,
		NOffsprings:           16,
		AttributeInitProb:     0.5,
		AttributeMutationProb: 0.1,
		CrossoverProb:         0.6,
		MutationProb:          0.3,
		NGenerations:          10,
		// One worker keeps evaluation order, and therefore the scorer's
		// seeded permutation stream, fully deterministic.
		EvalWorkers:           1,
		Permutations:          20,
		DegreeBins:            2,
		NeighborhoodOrder:     1,
		CoverageCacheSize:     64,
	}
}

type testHarness struct {
	service   Service
	store     *fakeStore
	artifacts *fakeArtifacts
	cache     *fakeCache
	events    *fakeEvents
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		store:     newFakeStore(),
		artifacts: newFakeArtifacts(),
		cache:     newFakeCache(),
		events:    &fakeEvents{},
	}
	service, err := NewService(h.store, h.artifacts, h.cache, h.events, nil, engineDefaults(), nil)
	require.NoError(t, err)
	h.service = service
	return h
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestExecuteRunHappyPath(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	result, err := h.service.ExecuteRun(ctx, sampleRequest(7))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, []string{"d1", "d2", "d3", "d4"}, result.DrugNames)
	assert.Len(t, result.Population, 8)
	// Generation log: one row for initialization plus one per generation.
	assert.Len(t, result.Log, 3)
	assert.NotEmpty(t, result.Solutions)

	run, err := h.service.GetRun(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, common.StatusCompleted, run.Status)
	assert.Equal(t, 4, run.DrugCount)
	assert.NotEmpty(t, run.ArtifactKey)
	assert.NotNil(t, run.StartedAt)
	assert.NotNil(t, run.FinishedAt)

	assert.Equal(t, []string{
		"discovery.run.created",
		"discovery.run.started",
		"discovery.run.completed",
	}, h.events.topics())

	// Result was cached alongside the artifact.
	assert.Contains(t, h.cache.values, resultCacheKey(result.RunID))
	assert.Contains(t, h.artifacts.results, result.RunID)
}

func TestExecuteRunIsReproducible(t *testing.T) {
	ctx := context.Background()

	first, err := newHarness(t).service.ExecuteRun(ctx, sampleRequest(99))
	require.NoError(t, err)
	second, err := newHarness(t).service.ExecuteRun(ctx, sampleRequest(99))
	require.NoError(t, err)

	assert.Equal(t, first.Log, second.Log)
	assert.Equal(t, first.Solutions, second.Solutions)
}

func TestExecuteRunInputError(t *testing.T) {
	h := newHarness(t)

	req := sampleRequest(1)
	req.SmilesDistances = nil
	_, err := h.service.ExecuteRun(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatasetMissing, errors.GetCode(err))

	// Nothing was persisted and no events fired.
	assert.Empty(t, h.store.runs)
	assert.Empty(t, h.events.topics())
}

func TestExecuteRunAborted(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.service.ExecuteRun(ctx, sampleRequest(5))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRunAborted, errors.GetCode(err))

	// The run record ends up failed and a failure event is published.
	topics := h.events.topics()
	assert.Contains(t, topics, "discovery.run.failed")
	for _, run := range h.store.runs {
		assert.Equal(t, common.StatusFailed, run.Status)
		assert.NotEmpty(t, run.Error)
	}
}

func TestSubmitAndExecuteSubmitted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	run, err := h.service.SubmitRun(ctx, sampleRequest(11))
	require.NoError(t, err)
	assert.Equal(t, common.StatusPending, run.Status)
	assert.Contains(t, h.artifacts.requests, run.ID)
	assert.Equal(t, []string{"discovery.run.created"}, h.events.topics())

	require.NoError(t, h.service.ExecuteSubmitted(ctx, run.ID))

	got, err := h.service.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, common.StatusCompleted, got.Status)

	// Re-executing a terminal run is a no-op.
	require.NoError(t, h.service.ExecuteSubmitted(ctx, run.ID))
}

func TestExecuteSubmittedNotPending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	run, err := h.service.SubmitRun(ctx, sampleRequest(3))
	require.NoError(t, err)
	require.NoError(t, h.store.MarkStarted(ctx, run.ID, time.Now()))

	err = h.service.ExecuteSubmitted(ctx, run.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRunStateInvalid, errors.GetCode(err))
}

func TestExecuteSubmittedUnknownRun(t *testing.T) {
	h := newHarness(t)
	err := h.service.ExecuteSubmitted(context.Background(), common.NewID())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRunNotFound, errors.GetCode(err))
}

func TestGetRunResult(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	result, err := h.service.ExecuteRun(ctx, sampleRequest(21))
	require.NoError(t, err)

	got, err := h.service.GetRunResult(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, got.RunID)
	assert.Equal(t, result.Solutions, got.Solutions)
}

func TestGetRunResultBeforeCompletion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	run, err := h.service.SubmitRun(ctx, sampleRequest(31))
	require.NoError(t, err)

	_, err = h.service.GetRunResult(ctx, run.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRunStateInvalid, errors.GetCode(err))
}

func TestMergeParametersDefaults(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	req := sampleRequest(41)
	req.Parameters = types.Parameters{Seed: req.Parameters.Seed}
	run, err := h.service.SubmitRun(ctx, req)
	require.NoError(t, err)

	// Absent parameters picked up the platform defaults.
	require.NotNil(t, run.Parameters.PopulationSize)
	assert.Equal(t, 16, *run.Parameters.PopulationSize)
	require.NotNil(t, run.Parameters.NGenerations)
	assert.Equal(t, 10, *run.Parameters.NGenerations)
	require.NotNil(t, run.Parameters.CrossoverProb)
	assert.Equal(t, 0.6, *run.Parameters.CrossoverProb)
}

func TestMergeParametersHonorsExplicitZeros(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	req := sampleRequest(43)
	req.Parameters.NGenerations = types.Int(0)
	req.Parameters.MutationProb = types.Float64(0)
	req.Parameters.CrossoverProb = types.Float64(0)

	result, err := h.service.ExecuteRun(ctx, req)
	require.NoError(t, err)

	// Zero generations means the initial population only.
	assert.Len(t, result.Log, 1)
	assert.Len(t, result.Population, 8)

	run, err := h.service.GetRun(ctx, result.RunID)
	require.NoError(t, err)
	require.NotNil(t, run.Parameters.NGenerations)
	assert.Equal(t, 0, *run.Parameters.NGenerations)
	require.NotNil(t, run.Parameters.MutationProb)
	assert.Equal(t, 0.0, *run.Parameters.MutationProb)
	require.NotNil(t, run.Parameters.CrossoverProb)
	assert.Equal(t, 0.0, *run.Parameters.CrossoverProb)
}

//Personal.AI order the ending
