package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	types "github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// DatasetHandler serves the shared interaction-network dataset held in the
// graph store.  Clients that omit network data from a run request can fetch
// the stored dataset, and operators load new releases through the import
// endpoint.
type DatasetHandler struct {
	networks repositories.NetworkRepository
	logger   logging.Logger
}

// NewDatasetHandler creates a DatasetHandler over the given repository.
func NewDatasetHandler(networks repositories.NetworkRepository, logger logging.Logger) *DatasetHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DatasetHandler{networks: networks, logger: logger.Named("http.dataset")}
}

// RegisterRoutes mounts the dataset endpoints under the given group.
func (h *DatasetHandler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/datasets/network", h.GetNetwork)
	g.PUT("/datasets/network", h.ImportNetwork)
}

// NetworkDataset is the stored interactome with its ranks and drug-target
// associations.
type NetworkDataset struct {
	Edges   []types.EdgeRecord   `json:"edges"`
	Ranks   []types.RankRecord   `json:"ranks"`
	Targets []types.TargetRecord `json:"targets"`
}

// GetNetwork returns the stored network dataset.
//
//	GET /api/v1/datasets/network
func (h *DatasetHandler) GetNetwork(c *gin.Context) {
	ctx := c.Request.Context()

	edges, err := h.networks.LoadEdges(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	ranks, err := h.networks.LoadRanks(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	targets, err := h.networks.LoadTargets(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NetworkDataset{Edges: edges, Ranks: ranks, Targets: targets})
}

// ImportNetwork replaces or extends the stored dataset.  Sections absent
// from the body are left untouched; the import merges on node and drug
// identity, so re-importing a release is idempotent.
//
//	PUT /api/v1/datasets/network
func (h *DatasetHandler) ImportNetwork(c *gin.Context) {
	var dataset NetworkDataset
	if err := c.ShouldBindJSON(&dataset); err != nil {
		writeError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "malformed dataset body"))
		return
	}
	if len(dataset.Edges) == 0 && len(dataset.Ranks) == 0 && len(dataset.Targets) == 0 {
		writeError(c, errors.InvalidParam("dataset body is empty"))
		return
	}

	ctx := c.Request.Context()
	if err := h.networks.ImportEdges(ctx, dataset.Edges); err != nil {
		writeError(c, err)
		return
	}
	if err := h.networks.ImportRanks(ctx, dataset.Ranks); err != nil {
		writeError(c, err)
		return
	}
	if err := h.networks.ImportTargets(ctx, dataset.Targets); err != nil {
		writeError(c, err)
		return
	}

	h.logger.Info("network dataset imported",
		logging.Int("edges", len(dataset.Edges)),
		logging.Int("ranks", len(dataset.Ranks)),
		logging.Int("targets", len(dataset.Targets)),
	)
	c.JSON(http.StatusOK, gin.H{
		"edges":   len(dataset.Edges),
		"ranks":   len(dataset.Ranks),
		"targets": len(dataset.Targets),
	})
}

//Personal.AI order the ending
