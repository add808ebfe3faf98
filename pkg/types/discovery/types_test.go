package discovery_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

func TestFitnessValues_JSONKeys(t *testing.T) {
	t.Parallel()

	fv := discovery.FitnessValues{
		SmilesDistance:       0.4,
		MoaDistance:          0.3,
		ShortestPathDistance: 0.2,
		Coverage:             0.01,
		NDrugs:               3,
	}
	data, err := json.Marshal(fv)
	require.NoError(t, err)

	var m map[string]float64
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "smiles_distance")
	assert.Contains(t, m, "moa_distance")
	assert.Contains(t, m, "shortest_path_distance")
	assert.Contains(t, m, "coverage")
	assert.Contains(t, m, "n_drugs")
	assert.Equal(t, 3.0, m["n_drugs"])
}

func TestRunRequest_Decode(t *testing.T) {
	t.Parallel()

	raw := `{
		"smiles_distances": [{"drug1":"a","drug2":"b","distance":0.5}],
		"moa_distances": [{"drug1":"a","drug2":"b","distance":0.2}],
		"graph_distances": [{"drug1":"a","drug2":"b","distance":0.9}],
		"ppi_network": [{"gene1":"TP53","gene2":"MDM2"}],
		"graph_rank": [{"gene":"TP53","rank":1}],
		"drug_targets": [{"drug":"a","gene":"TP53"}],
		"parameters": {"population_size":50,"n_generations":10,"seed":42}
	}`

	var req discovery.RunRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	assert.Len(t, req.SmilesDistances, 1)
	assert.Equal(t, "MDM2", req.PPINetwork[0].Gene2)
	require.NotNil(t, req.Parameters.PopulationSize)
	assert.Equal(t, 50, *req.Parameters.PopulationSize)
	require.NotNil(t, req.Parameters.Seed)
	assert.Equal(t, int64(42), *req.Parameters.Seed)
	assert.Nil(t, req.Parameters.MutationProb)
}

func TestParameters_ExplicitZeroSurvivesDecode(t *testing.T) {
	t.Parallel()

	var p discovery.Parameters
	require.NoError(t, json.Unmarshal([]byte(`{"n_generations":0,"mutation_prob":0}`), &p))

	require.NotNil(t, p.NGenerations)
	assert.Equal(t, 0, *p.NGenerations)
	require.NotNil(t, p.MutationProb)
	assert.Equal(t, 0.0, *p.MutationProb)
	assert.Nil(t, p.CrossoverProb)
}

//Personal.AI order the ending
