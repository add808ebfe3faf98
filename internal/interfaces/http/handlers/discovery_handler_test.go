package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/common"
	types "github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeService is a canned-response implementation of discovery.Service.
type fakeService struct {
	executeResult *types.RunResult
	executeErr    error
	submitRun     *types.Run
	submitErr     error
	run           *types.Run
	runErr        error
	result        *types.RunResult
	resultErr     error
	runs          []*types.Run
	listTotal     int
	listErr       error

	lastRequest *types.RunRequest
	lastID      common.ID
	lastStatus  common.Status
	lastPage    common.Pagination
}

func (f *fakeService) ExecuteRun(_ context.Context, req *types.RunRequest) (*types.RunResult, error) {
	f.lastRequest = req
	return f.executeResult, f.executeErr
}

func (f *fakeService) SubmitRun(_ context.Context, req *types.RunRequest) (*types.Run, error) {
	f.lastRequest = req
	return f.submitRun, f.submitErr
}

func (f *fakeService) ExecuteSubmitted(_ context.Context, id common.ID) error {
	f.lastID = id
	return nil
}

func (f *fakeService) GetRun(_ context.Context, id common.ID) (*types.Run, error) {
	f.lastID = id
	return f.run, f.runErr
}

func (f *fakeService) GetRunResult(_ context.Context, id common.ID) (*types.RunResult, error) {
	f.lastID = id
	return f.result, f.resultErr
}

func (f *fakeService) ListRuns(_ context.Context, status common.Status, page common.Pagination) ([]*types.Run, int, error) {
	f.lastStatus = status
	f.lastPage = page
	return f.runs, f.listTotal, f.listErr
}

func newTestRouter(svc *fakeService) *gin.Engine {
	r := gin.New()
	h := NewDiscoveryHandler(svc, nil)
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func sampleResult() *types.RunResult {
	return &types.RunResult{
		RunID:     "run-1",
		DrugNames: []string{"d1", "d2"},
		Solutions: []types.Solution{
			{Drugs: []string{"d1", "d2"}, Fitness: types.FitnessValues{NDrugs: 2}},
		},
	}
}

func TestExecuteRun(t *testing.T) {
	svc := &fakeService{executeResult: sampleResult()}
	r := newTestRouter(svc)

	w := postJSON(t, r, "/api/v1/discovery/runs", types.RunRequest{
		Parameters: types.Parameters{PopulationSize: types.Int(16), Seed: types.Int64(7)},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result types.RunResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, common.ID("run-1"), result.RunID)
	require.NotNil(t, svc.lastRequest)
	require.NotNil(t, svc.lastRequest.Parameters.PopulationSize)
	assert.Equal(t, 16, *svc.lastRequest.Parameters.PopulationSize)
}

func TestExecuteRunInputError(t *testing.T) {
	svc := &fakeService{
		executeErr: errors.New(errors.ErrCodeDatasetMissing, "smiles distance listing is empty"),
	}
	r := newTestRouter(svc)

	w := postJSON(t, r, "/api/v1/discovery/runs", types.RunRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DAT_001", resp.Code)
	assert.Contains(t, resp.Message, "smiles")
}

func TestExecuteRunDegenerateCoverage(t *testing.T) {
	svc := &fakeService{
		executeErr: errors.New(errors.ErrCodeCoverageDegenerate, "all permutation coverages identical"),
	}
	r := newTestRouter(svc)

	w := postJSON(t, r, "/api/v1/discovery/runs", types.RunRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestExecuteRunMalformedBody(t *testing.T) {
	r := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/discovery/runs", bytes.NewReader([]byte("{nope")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "COMMON_002", resp.Code)
}

func TestSubmitRun(t *testing.T) {
	now := time.Now().UTC()
	svc := &fakeService{
		submitRun: &types.Run{ID: "run-9", Status: common.StatusPending, CreatedAt: now},
	}
	r := newTestRouter(svc)

	w := postJSON(t, r, "/api/v1/discovery/runs/submit", types.RunRequest{})

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "/api/v1/discovery/runs/run-9", w.Header().Get("Location"))
	var run types.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, common.StatusPending, run.Status)
}

func TestGetRun(t *testing.T) {
	svc := &fakeService{run: &types.Run{ID: "run-2", Status: common.StatusRunning}}
	r := newTestRouter(svc)

	w := get(r, "/api/v1/discovery/runs/run-2")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, common.ID("run-2"), svc.lastID)
}

func TestGetRunNotFound(t *testing.T) {
	svc := &fakeService{runErr: errors.New(errors.ErrCodeRunNotFound, "run not found")}
	r := newTestRouter(svc)

	w := get(r, "/api/v1/discovery/runs/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetResultBeforeCompletion(t *testing.T) {
	svc := &fakeService{resultErr: errors.New(errors.ErrCodeRunStateInvalid, "run is still running")}
	r := newTestRouter(svc)

	w := get(r, "/api/v1/discovery/runs/run-3/result")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetSolutions(t *testing.T) {
	svc := &fakeService{result: sampleResult()}
	r := newTestRouter(svc)

	w := get(r, "/api/v1/discovery/runs/run-1/solutions")

	require.Equal(t, http.StatusOK, w.Code)
	var resp SolutionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, common.ID("run-1"), resp.RunID)
	require.Len(t, resp.Solutions, 1)
	assert.Equal(t, []string{"d1", "d2"}, resp.Solutions[0].Drugs)
}

func TestListRuns(t *testing.T) {
	svc := &fakeService{
		runs:      []*types.Run{{ID: "a"}, {ID: "b"}},
		listTotal: 12,
	}
	r := newTestRouter(svc)

	w := get(r, "/api/v1/discovery/runs?status=completed&page=2&page_size=2")

	require.Equal(t, http.StatusOK, w.Code)
	var resp ListRunsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Runs, 2)
	assert.Equal(t, int64(12), resp.Page.Total)
	assert.Equal(t, common.StatusCompleted, svc.lastStatus)
	assert.Equal(t, 2, svc.lastPage.Page)
	assert.Equal(t, 2, svc.lastPage.PageSize)
}

func TestListRunsBadStatus(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := get(r, "/api/v1/discovery/runs?status=done")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

//Personal.AI order the ending
