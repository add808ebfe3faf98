package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

func writeDataset(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

// testDatasetDir writes a minimal four-drug dataset and returns the dir.
func testDatasetDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	drugs := []string{"d1", "d2", "d3", "d4"}
	var distances []types.DistanceRecord
	for i := 0; i < len(drugs); i++ {
		for j := i + 1; j < len(drugs); j++ {
			distances = append(distances, types.DistanceRecord{
				Drug1: drugs[i], Drug2: drugs[j], Distance: float64(i+j) * 0.25,
			})
		}
	}
	writeDataset(t, dir, "smiles.json", distances)
	writeDataset(t, dir, "moa.json", distances)
	writeDataset(t, dir, "graph.json", distances)

	edges := []types.EdgeRecord{
		{Gene1: "HUB", Gene2: "A"}, {Gene1: "HUB", Gene2: "B"},
		{Gene1: "HUB", Gene2: "C"}, {Gene1: "HUB", Gene2: "D"},
		{Gene1: "HUB", Gene2: "E"}, {Gene1: "HUB", Gene2: "F"},
	}
	writeDataset(t, dir, "ppi.json", edges)

	ranks := []types.RankRecord{
		{Gene: "HUB", Rank: 1},
		{Gene: "A", Rank: 2}, {Gene: "B", Rank: 3}, {Gene: "C", Rank: 4},
		{Gene: "D", Rank: 5}, {Gene: "E", Rank: 6}, {Gene: "F", Rank: 7},
	}
	writeDataset(t, dir, "rank.json", ranks)

	targets := []types.TargetRecord{
		{Drug: "d1", Gene: "A"}, {Drug: "d2", Gene: "B"},
		{Drug: "d3", Gene: "C"}, {Drug: "d4", Gene: "D"},
	}
	writeDataset(t, dir, "targets.json", targets)

	return dir
}

func runArgs(dir string, extra ...string) []string {
	args := []string{
		"--quiet", "run",
		"--smiles", filepath.Join(dir, "smiles.json"),
		"--moa", filepath.Join(dir, "moa.json"),
		"--graph", filepath.Join(dir, "graph.json"),
		"--network", filepath.Join(dir, "ppi.json"),
		"--rank", filepath.Join(dir, "rank.json"),
		"--targets", filepath.Join(dir, "targets.json"),
	}
	return append(args, extra...)
}

func TestRunCommandWritesResultFile(t *testing.T) {
	dir := testDatasetDir(t)
	out := filepath.Join(dir, "result.json")

	cmd := NewRootCommand()
	cmd.SetArgs(runArgs(dir,
		"--population", "16",
		"--generations", "2",
		"--seed", "7",
		"--params", writeDataset(t, dir, "params.json", types.Parameters{NOffsprings: types.Int(16)}),
		"-o", out,
	))
	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var result types.RunResult
	require.NoError(t, json.Unmarshal(raw, &result))

	assert.Equal(t, []string{"d1", "d2", "d3", "d4"}, result.DrugNames)
	assert.Len(t, result.Log, 3) // initial generation plus two evolved ones
	assert.NotEmpty(t, result.Solutions)
	assert.Len(t, result.Population, 16)
}

func TestRunCommandMissingDataset(t *testing.T) {
	dir := testDatasetDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "rank.json")))

	cmd := NewRootCommand()
	cmd.SetArgs(runArgs(dir, "--generations", "1"))
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank.json")
}

func TestRunCommandZeroGenerations(t *testing.T) {
	dir := testDatasetDir(t)
	out := filepath.Join(dir, "result.json")

	// an explicit zero is a real request: initial population only
	cmd := NewRootCommand()
	cmd.SetArgs(runArgs(dir,
		"--population", "8",
		"--generations", "0",
		"--seed", "5",
		"-o", out,
	))
	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var result types.RunResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Len(t, result.Log, 1)
	assert.Len(t, result.Population, 8)
}

func TestRunCommandRequiresDatasetFlags(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"run"})
	require.Error(t, cmd.Execute())
}

func TestRunCommandFlagOverridesBeatParamsFile(t *testing.T) {
	dir := testDatasetDir(t)
	out := filepath.Join(dir, "result.json")
	params := writeDataset(t, dir, "params.json", types.Parameters{
		PopulationSize: types.Int(100), NGenerations: types.Int(50), NOffsprings: types.Int(8),
	})

	cmd := NewRootCommand()
	cmd.SetArgs(runArgs(dir,
		"--params", params,
		"--population", "8",
		"--generations", "1",
		"--seed", "3",
		"-o", out,
	))
	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var result types.RunResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Len(t, result.Population, 8)
	assert.Len(t, result.Log, 2)
}

//Personal.AI order the ending
