package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CombiRx-Discovery/internal/application/discovery"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/common"
	types "github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// DiscoveryHandler serves the combination-discovery run endpoints.
type DiscoveryHandler struct {
	svc    discovery.Service
	logger logging.Logger
}

// NewDiscoveryHandler creates a DiscoveryHandler backed by the given service.
func NewDiscoveryHandler(svc discovery.Service, logger logging.Logger) *DiscoveryHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DiscoveryHandler{svc: svc, logger: logger.Named("http.discovery")}
}

// RegisterRoutes mounts the run endpoints under the given group.
func (h *DiscoveryHandler) RegisterRoutes(g *gin.RouterGroup) {
	runs := g.Group("/discovery/runs")
	runs.POST("", h.Execute)
	runs.POST("/submit", h.Submit)
	runs.GET("", h.List)
	runs.GET("/:id", h.Get)
	runs.GET("/:id/result", h.Result)
	runs.GET("/:id/solutions", h.Solutions)
}

// ListRunsResponse is the paginated run-listing body.
type ListRunsResponse struct {
	Runs []*types.Run      `json:"runs"`
	Page common.Pagination `json:"page"`
}

// SolutionsResponse carries only the non-dominated combinations of a
// completed run, for clients that do not need the full population.
type SolutionsResponse struct {
	RunID     common.ID        `json:"run_id"`
	DrugNames []string         `json:"drug_names"`
	Solutions []types.Solution `json:"solutions"`
}

// Execute runs a discovery search synchronously and returns the full result.
//
//	POST /api/v1/discovery/runs
func (h *DiscoveryHandler) Execute(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}
	result, err := h.svc.ExecuteRun(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Submit validates a run and enqueues it for asynchronous execution.
//
//	POST /api/v1/discovery/runs/submit
func (h *DiscoveryHandler) Submit(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}
	run, err := h.svc.SubmitRun(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Location", "/api/v1/discovery/runs/"+run.ID.String())
	c.JSON(http.StatusAccepted, run)
}

// List returns persisted runs, optionally filtered by status.
//
//	GET /api/v1/discovery/runs?status=completed&page=1&page_size=20
func (h *DiscoveryHandler) List(c *gin.Context) {
	var status common.Status
	if v := c.Query("status"); v != "" {
		status = common.Status(strings.ToLower(v))
		switch status {
		case common.StatusPending, common.StatusRunning, common.StatusCompleted, common.StatusFailed:
		default:
			writeError(c, errors.InvalidParam("unknown status filter: "+v))
			return
		}
	}
	page := parsePagination(c)

	runs, total, err := h.svc.ListRuns(c.Request.Context(), status, page)
	if err != nil {
		writeError(c, err)
		return
	}
	page.Total = int64(total)
	c.JSON(http.StatusOK, ListRunsResponse{Runs: runs, Page: page})
}

// Get returns the persisted record of one run.
//
//	GET /api/v1/discovery/runs/:id
func (h *DiscoveryHandler) Get(c *gin.Context) {
	id, ok := h.runID(c)
	if !ok {
		return
	}
	run, err := h.svc.GetRun(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// Result returns the full result artifact of a completed run.
//
//	GET /api/v1/discovery/runs/:id/result
func (h *DiscoveryHandler) Result(c *gin.Context) {
	id, ok := h.runID(c)
	if !ok {
		return
	}
	result, err := h.svc.GetRunResult(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Solutions returns only the Pareto archive of a completed run.
//
//	GET /api/v1/discovery/runs/:id/solutions
func (h *DiscoveryHandler) Solutions(c *gin.Context) {
	id, ok := h.runID(c)
	if !ok {
		return
	}
	result, err := h.svc.GetRunResult(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SolutionsResponse{
		RunID:     result.RunID,
		DrugNames: result.DrugNames,
		Solutions: result.Solutions,
	})
}

func (h *DiscoveryHandler) bindRequest(c *gin.Context) (*types.RunRequest, bool) {
	var req types.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("malformed run request", logging.Err(err))
		writeError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "malformed request body"))
		return nil, false
	}
	return &req, true
}

func (h *DiscoveryHandler) runID(c *gin.Context) (common.ID, bool) {
	id := common.ID(c.Param("id"))
	if id.IsZero() {
		writeError(c, errors.InvalidParam("run id is required"))
		return "", false
	}
	return id, true
}

//Personal.AI order the ending
