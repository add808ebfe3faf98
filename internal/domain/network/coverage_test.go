package network

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// starScorer builds a 6-leaf star with ranks H=1, leaves 2..7.
func starScorer(t *testing.T, opts ScorerOptions) *Scorer {
	t.Helper()
	g := starGraph(t, 6)

	records := []discovery.RankRecord{{Gene: "H", Rank: 1}}
	for i := 0; i < 6; i++ {
		records = append(records, discovery.RankRecord{Gene: leafName(i), Rank: float64(i + 2)})
	}
	rt, err := NewRankTable(records)
	require.NoError(t, err)

	s, err := NewScorer(g, rt, opts)
	require.NoError(t, err)
	return s
}

func TestNewScorer_RequiresFullRankCoverage(t *testing.T) {
	g := starGraph(t, 3)
	rt, err := NewRankTable([]discovery.RankRecord{{Gene: "H", Rank: 1}})
	require.NoError(t, err)

	_, err = NewScorer(g, rt, ScorerOptions{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeRankMissing))
}

func TestScorer_Score(t *testing.T) {
	s := starScorer(t, ScorerOptions{
		Permutations: 200,
		DegreeBins:   4,
		Rand:         rand.New(rand.NewSource(42)),
	})

	res, err := s.Score([]string{leafName(0), "NOT_IN_NETWORK"})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Seeds)
	assert.Equal(t, 2, res.NeighborhoodSize)
	// neighborhood {aa, H}: coverage 2/7, median rank (1+2)/2
	assert.InDelta(t, (2.0/7.0)/1.5, res.Observed, 1e-12)

	assert.Greater(t, res.Std, 0.0)
	assert.Greater(t, res.PValue, 0.0)
	assert.LessOrEqual(t, res.PValue, 0.5)
}

func TestScorer_Score_Reproducible(t *testing.T) {
	a := starScorer(t, ScorerOptions{Rand: rand.New(rand.NewSource(7))})
	b := starScorer(t, ScorerOptions{Rand: rand.New(rand.NewSource(7))})

	ra, err := a.Score([]string{leafName(2)})
	require.NoError(t, err)
	rb, err := b.Score([]string{leafName(2)})
	require.NoError(t, err)

	assert.Equal(t, ra, rb)
}

func TestScorer_Score_EmptyIntersectionIsDegenerate(t *testing.T) {
	s := starScorer(t, ScorerOptions{Rand: rand.New(rand.NewSource(1))})

	_, err := s.Score([]string{"X", "Y"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCoverageDegenerate))
	assert.True(t, errors.IsDegenerateInput(err))

	_, err = s.Score(nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCoverageDegenerate))
}

func TestScorer_Score_ZeroVariance(t *testing.T) {
	// Complete graph: every closed 1-neighborhood is the whole node set,
	// so all permutation draws score identically.
	g, err := NewGraph([]discovery.EdgeRecord{
		edge("A", "B"), edge("A", "C"), edge("A", "D"),
		edge("B", "C"), edge("B", "D"), edge("C", "D"),
	})
	require.NoError(t, err)

	rt, err := NewRankTable([]discovery.RankRecord{
		{Gene: "A", Rank: 1}, {Gene: "B", Rank: 2},
		{Gene: "C", Rank: 3}, {Gene: "D", Rank: 4},
	})
	require.NoError(t, err)

	s, err := NewScorer(g, rt, ScorerOptions{Rand: rand.New(rand.NewSource(3))})
	require.NoError(t, err)

	_, err = s.Score([]string{"A"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeZeroVariance))
	assert.True(t, errors.IsDegenerateInput(err))
}

func TestScorer_Defaults(t *testing.T) {
	s := starScorer(t, ScorerOptions{})
	assert.Equal(t, DefaultPermutations, s.permutations)
	assert.Equal(t, DefaultNeighborhoodOrder, s.order)
}

//Personal.AI order the ending
