package combination

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CombiRx-Discovery/internal/domain/drug"
	"github.com/turtacn/CombiRx-Discovery/internal/domain/evolution"
	"github.com/turtacn/CombiRx-Discovery/internal/domain/network"
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// fixture wires four drugs over a 6-leaf star network with leaf ranks 2..7
// and hub rank 1.  Drugs d1..d3 target distinct leaves; d4 targets a gene
// outside the network.
type fixture struct {
	index   *drug.Index
	smiles  *drug.Matrix
	moa     *drug.Matrix
	paths   *drug.Matrix
	targets *drug.TargetMap
	scorer  *network.Scorer
}

func buildFixture(t *testing.T, seed int64) *fixture {
	t.Helper()

	leaves := []string{"la", "lb", "lc", "ld", "le", "lf"}
	var edges []discovery.EdgeRecord
	ranks := []discovery.RankRecord{{Gene: "HUB", Rank: 1}}
	for i, leaf := range leaves {
		edges = append(edges, discovery.EdgeRecord{Gene1: "HUB", Gene2: leaf})
		ranks = append(ranks, discovery.RankRecord{Gene: leaf, Rank: float64(i + 2)})
	}
	g, err := network.NewGraph(edges)
	require.NoError(t, err)
	rt, err := network.NewRankTable(ranks)
	require.NoError(t, err)
	scorer, err := network.NewScorer(g, rt, network.ScorerOptions{
		Permutations: 50,
		DegreeBins:   4,
		Rand:         rand.New(rand.NewSource(seed)),
	})
	require.NoError(t, err)

	drugs := []string{"d1", "d2", "d3", "d4"}
	dist := func(scale float64) *drug.Matrix {
		var recs []discovery.DistanceRecord
		for i := 0; i < len(drugs); i++ {
			for j := i + 1; j < len(drugs); j++ {
				recs = append(recs, discovery.DistanceRecord{
					Drug1: drugs[i], Drug2: drugs[j],
					Distance: scale * float64(i+j),
				})
			}
		}
		m, err := drug.NewMatrix(recs)
		require.NoError(t, err)
		return m
	}

	tm, err := drug.NewTargetMap([]discovery.TargetRecord{
		{Drug: "d1", Gene: "la"},
		{Drug: "d2", Gene: "lb"},
		{Drug: "d3", Gene: "lc"},
		{Drug: "d4", Gene: "OFF_NETWORK"},
	})
	require.NoError(t, err)

	index, err := drug.NewIndex(drugs)
	require.NoError(t, err)

	return &fixture{
		index:   index,
		smiles:  dist(1.0),
		moa:     dist(0.5),
		paths:   dist(0.25),
		targets: tm,
		scorer:  scorer,
	}
}

func newEvaluator(t *testing.T, f *fixture) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(f.index, f.smiles, f.moa, f.paths, f.targets, f.scorer, 64)
	require.NoError(t, err)
	return e
}

func TestEvaluator_PairwiseMeans(t *testing.T) {
	f := buildFixture(t, 42)
	e := newEvaluator(t, f)

	// d1 and d2 selected: one pair (indices 0,1), distance scale*(0+1)
	fit, err := e.Evaluate(context.Background(), []bool{true, true, false, false})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, fit.Smiles, 1e-12)
	assert.InDelta(t, 0.5, fit.Moa, 1e-12)
	assert.InDelta(t, 0.25, fit.Path, 1e-12)
	assert.Equal(t, 2.0, fit.NDrugs)
	assert.Greater(t, fit.CoveragePValue, 0.0)
	assert.LessOrEqual(t, fit.CoveragePValue, 0.5)
}

func TestEvaluator_NDrugsMatchesPopcount(t *testing.T) {
	f := buildFixture(t, 7)
	e := newEvaluator(t, f)

	fit, err := e.Evaluate(context.Background(), []bool{true, true, true, false})
	require.NoError(t, err)
	assert.Equal(t, 3.0, fit.NDrugs)
}

func TestEvaluator_DegenerateSmallCombinations(t *testing.T) {
	f := buildFixture(t, 1)
	e := newEvaluator(t, f)

	// empty and single-drug genomes penalize n_drugs at the full index
	// size, never the selected count
	empty, err := e.Evaluate(context.Background(), []bool{false, false, false, false})
	require.NoError(t, err)
	assert.Equal(t, evolution.Objectives{CoveragePValue: 1, NDrugs: 4}, empty)

	single, err := e.Evaluate(context.Background(), []bool{false, false, true, false})
	require.NoError(t, err)
	assert.Equal(t, evolution.Objectives{CoveragePValue: 1, NDrugs: 4}, single)
}

func TestEvaluator_DegenerateNeverDominatesRealCombination(t *testing.T) {
	f := buildFixture(t, 13)
	e := newEvaluator(t, f)

	single, err := e.Evaluate(context.Background(), []bool{true, false, false, false})
	require.NoError(t, err)
	pair, err := e.Evaluate(context.Background(), []bool{true, true, false, false})
	require.NoError(t, err)

	assert.False(t, single.Dominates(pair))
	assert.True(t, pair.Dominates(single))
}

func TestEvaluator_AllZeroDistances(t *testing.T) {
	f := buildFixture(t, 3)

	var recs []discovery.DistanceRecord
	for i := 1; i <= 4; i++ {
		for j := i + 1; j <= 4; j++ {
			recs = append(recs, discovery.DistanceRecord{
				Drug1: fmt.Sprintf("d%d", i), Drug2: fmt.Sprintf("d%d", j),
			})
		}
	}
	zero, err := drug.NewMatrix(recs)
	require.NoError(t, err)

	e, err := NewEvaluator(f.index, zero, zero, zero, f.targets, f.scorer, 0)
	require.NoError(t, err)

	fit, err := e.Evaluate(context.Background(), []bool{true, true, true, true})
	require.NoError(t, err)
	assert.Zero(t, fit.Smiles)
	assert.Zero(t, fit.Moa)
	assert.Zero(t, fit.Path)
	assert.Equal(t, 4.0, fit.NDrugs)
}

func TestEvaluator_Memoization(t *testing.T) {
	f := buildFixture(t, 11)
	e := newEvaluator(t, f)

	genome := []bool{true, false, true, false}
	first, err := e.Evaluate(context.Background(), genome)
	require.NoError(t, err)
	assert.Equal(t, 1, e.CacheLen())

	// the scorer draws fresh permutations per call, so an identical result
	// proves the cache answered
	second, err := e.Evaluate(context.Background(), genome)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, e.CacheLen())
}

func TestEvaluator_DegenerateCoveragePropagates(t *testing.T) {
	f := buildFixture(t, 5)

	// both selected drugs target only off-network genes
	tm, err := drug.NewTargetMap([]discovery.TargetRecord{
		{Drug: "d1", Gene: "OFF_NETWORK"},
		{Drug: "d4", Gene: "ALSO_OFF"},
	})
	require.NoError(t, err)

	e, err := NewEvaluator(f.index, f.smiles, f.moa, f.paths, tm, f.scorer, 0)
	require.NoError(t, err)

	_, err = e.Evaluate(context.Background(), []bool{true, false, false, true})
	require.Error(t, err)
	assert.True(t, errors.IsDegenerateInput(err))
}

func TestEvaluator_GenomeLengthMismatch(t *testing.T) {
	f := buildFixture(t, 2)
	e := newEvaluator(t, f)

	_, err := e.Evaluate(context.Background(), []bool{true, true})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEvaluationFailed))
}

func TestNewEvaluator_MatrixMustCoverIndex(t *testing.T) {
	f := buildFixture(t, 9)

	narrow, err := drug.NewMatrix([]discovery.DistanceRecord{
		{Drug1: "d1", Drug2: "d2", Distance: 1},
	})
	require.NoError(t, err)

	_, err = NewEvaluator(f.index, narrow, f.moa, f.paths, f.targets, f.scorer, 0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDrugUnknown))
}

//Personal.AI order the ending
