package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
)

func healthRouter(h *HealthHandler) *gin.Engine {
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler("1.2.3")
	w := get(healthRouter(h), "/healthz")

	require.Equal(t, http.StatusOK, w.Code)
	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestReadinessAllHealthy(t *testing.T) {
	h := NewHealthHandler("test",
		CheckFunc{ComponentName: "postgres", Fn: func(context.Context) error { return nil }},
		CheckFunc{ComponentName: "redis", Fn: func(context.Context) error { return nil }},
	)
	w := get(healthRouter(h), "/readyz")

	require.Equal(t, http.StatusOK, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "ok", resp.Components["postgres"].Status)
	assert.Equal(t, "ok", resp.Components["redis"].Status)
}

func TestReadinessOneUnhealthy(t *testing.T) {
	h := NewHealthHandler("test",
		CheckFunc{ComponentName: "postgres", Fn: func(context.Context) error { return nil }},
		CheckFunc{ComponentName: "neo4j", Fn: func(context.Context) error {
			return errors.New(errors.ErrCodeDatabaseError, "connectivity check failed")
		}},
	)
	w := get(healthRouter(h), "/readyz")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["neo4j"].Status)
	assert.Contains(t, resp.Components["neo4j"].Error, "connectivity")
	assert.Equal(t, "ok", resp.Components["postgres"].Status)
}

//Personal.AI order the ending
