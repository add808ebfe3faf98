package repositories

import (
	"context"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	driver "github.com/turtacn/CombiRx-Discovery/internal/infrastructure/database/neo4j"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// fakeResult replays canned records through the driver.Result interface.
type fakeResult struct {
	records []*neo4j.Record
	pos     int
	err     error
}

func (f *fakeResult) Next(ctx context.Context) bool {
	if f.pos < len(f.records) {
		return true
	}
	return false
}

func (f *fakeResult) Record() *neo4j.Record {
	rec := f.records[f.pos]
	f.pos++
	return rec
}

func (f *fakeResult) Err() error { return f.err }

func (f *fakeResult) Consume(ctx context.Context) (neo4j.ResultSummary, error) { return nil, nil }

// fakeTransaction matches queries by substring and returns the configured
// result set, recording every statement it sees.
type fakeTransaction struct {
	results map[string]*fakeResult
	runs    []string
	params  []map[string]any
}

func (f *fakeTransaction) Run(ctx context.Context, cypher string, params map[string]any) (driver.Result, error) {
	f.runs = append(f.runs, cypher)
	f.params = append(f.params, params)
	for key, res := range f.results {
		if strings.Contains(cypher, key) {
			return res, nil
		}
	}
	return &fakeResult{}, nil
}

type fakeDriver struct {
	tx       *fakeTransaction
	readErr  error
	writeErr error
}

func (f *fakeDriver) ExecuteRead(ctx context.Context, work driver.TransactionWork) (any, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return work(f.tx)
}

func (f *fakeDriver) ExecuteWrite(ctx context.Context, work driver.TransactionWork) (any, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return work(f.tx)
}

func (f *fakeDriver) HealthCheck(ctx context.Context) error { return nil }

func record(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func TestLoadEdges(t *testing.T) {
	tx := &fakeTransaction{results: map[string]*fakeResult{
		"INTERACTS_WITH": {records: []*neo4j.Record{
			record([]string{"gene1", "gene2"}, "TP53", "MDM2"),
			record([]string{"gene1", "gene2"}, "MDM2", "CDKN1A"),
		}},
	}}
	repo := NewNeo4jNetworkRepo(&fakeDriver{tx: tx}, nil)

	edges, err := repo.LoadEdges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []discovery.EdgeRecord{
		{Gene1: "TP53", Gene2: "MDM2"},
		{Gene1: "MDM2", Gene2: "CDKN1A"},
	}, edges)
}

func TestLoadRanks(t *testing.T) {
	tx := &fakeTransaction{results: map[string]*fakeResult{
		"g.rank IS NOT NULL": {records: []*neo4j.Record{
			record([]string{"gene", "rank"}, "TP53", 1.0),
			record([]string{"gene", "rank"}, "MDM2", int64(2)),
		}},
	}}
	repo := NewNeo4jNetworkRepo(&fakeDriver{tx: tx}, nil)

	ranks, err := repo.LoadRanks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []discovery.RankRecord{
		{Gene: "TP53", Rank: 1},
		{Gene: "MDM2", Rank: 2},
	}, ranks)
}

func TestLoadTargets(t *testing.T) {
	tx := &fakeTransaction{results: map[string]*fakeResult{
		"TARGETS": {records: []*neo4j.Record{
			record([]string{"drug", "gene"}, "nutlin", "MDM2"),
		}},
	}}
	repo := NewNeo4jNetworkRepo(&fakeDriver{tx: tx}, nil)

	targets, err := repo.LoadTargets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []discovery.TargetRecord{{Drug: "nutlin", Gene: "MDM2"}}, targets)
}

func TestLoadEdgesBadColumn(t *testing.T) {
	tx := &fakeTransaction{results: map[string]*fakeResult{
		"INTERACTS_WITH": {records: []*neo4j.Record{
			record([]string{"gene1", "gene2"}, "TP53", int64(7)),
		}},
	}}
	repo := NewNeo4jNetworkRepo(&fakeDriver{tx: tx}, nil)

	_, err := repo.LoadEdges(context.Background())
	assert.Error(t, err)
}

func TestImportEdgesBatchesRows(t *testing.T) {
	tx := &fakeTransaction{results: map[string]*fakeResult{}}
	repo := NewNeo4jNetworkRepo(&fakeDriver{tx: tx}, nil)

	err := repo.ImportEdges(context.Background(), []discovery.EdgeRecord{
		{Gene1: "TP53", Gene2: "MDM2"},
		{Gene1: "MDM2", Gene2: "CDKN1A"},
	})
	require.NoError(t, err)
	require.Len(t, tx.runs, 1)
	assert.Contains(t, tx.runs[0], "MERGE (a)-[:INTERACTS_WITH]->(b)")

	batch, ok := tx.params[0]["batch"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, batch, 2)
	assert.Equal(t, "TP53", batch[0]["gene1"])
}

func TestImportEmptyBatchSkipsWrite(t *testing.T) {
	tx := &fakeTransaction{results: map[string]*fakeResult{}}
	repo := NewNeo4jNetworkRepo(&fakeDriver{tx: tx}, nil)

	require.NoError(t, repo.ImportEdges(context.Background(), nil))
	require.NoError(t, repo.ImportRanks(context.Background(), nil))
	require.NoError(t, repo.ImportTargets(context.Background(), nil))
	assert.Empty(t, tx.runs)
}

//Personal.AI order the ending
