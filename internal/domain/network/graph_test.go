package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

func edge(a, b string) discovery.EdgeRecord {
	return discovery.EdgeRecord{Gene1: a, Gene2: b}
}

// pathGraph builds A-B-C-D-E.
func pathGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := NewGraph([]discovery.EdgeRecord{
		edge("A", "B"), edge("B", "C"), edge("C", "D"), edge("D", "E"),
	})
	require.NoError(t, err)
	return g
}

func TestNewGraph(t *testing.T) {
	g := pathGraph(t)

	assert.Equal(t, 5, g.Order())
	assert.Equal(t, 4, g.EdgeCount())
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, g.Nodes())
	assert.True(t, g.Contains("C"))
	assert.False(t, g.Contains("Z"))
}

func TestNewGraph_DuplicateAndSelfEdges(t *testing.T) {
	g, err := NewGraph([]discovery.EdgeRecord{
		edge("A", "B"), edge("B", "A"), edge("A", "A"), edge("B", "C"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, g.Order())
	assert.Equal(t, 2, g.EdgeCount())
}

func TestNewGraph_Errors(t *testing.T) {
	_, err := NewGraph(nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGraphEmpty))

	_, err = NewGraph([]discovery.EdgeRecord{edge("", "B")})
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetInvalid))

	// only self-loops leaves nothing
	_, err = NewGraph([]discovery.EdgeRecord{edge("A", "A")})
	assert.True(t, errors.IsCode(err, errors.ErrCodeGraphEmpty))
}

func TestGraph_Degree(t *testing.T) {
	g := pathGraph(t)

	d, err := g.Degree("A")
	require.NoError(t, err)
	assert.Equal(t, 1, d)

	d, err = g.Degree("C")
	require.NoError(t, err)
	assert.Equal(t, 2, d)

	_, err = g.Degree("Z")
	assert.True(t, errors.IsCode(err, errors.ErrCodeNodeNotFound))
}

func TestGraph_Intersect(t *testing.T) {
	g := pathGraph(t)

	assert.Equal(t, []string{"A", "C"}, g.Intersect([]string{"C", "A", "Z", "C"}))
	assert.Empty(t, g.Intersect([]string{"X", "Y"}))
	assert.Empty(t, g.Intersect(nil))
}

func TestGraph_Neighborhood(t *testing.T) {
	g := pathGraph(t)

	// order 0 is the seed set itself
	n, err := g.Neighborhood([]string{"C"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, n)

	n, err = g.Neighborhood([]string{"C"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "D"}, n)

	n, err = g.Neighborhood([]string{"C"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, n)

	// union over multiple seeds
	n, err = g.Neighborhood([]string{"A", "E"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "D", "E"}, n)
}

func TestGraph_Neighborhood_Errors(t *testing.T) {
	g := pathGraph(t)

	_, err := g.Neighborhood([]string{"Z"}, 1)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNodeNotFound))

	_, err = g.Neighborhood([]string{"A"}, -1)
	assert.Error(t, err)
}

//Personal.AI order the ending
