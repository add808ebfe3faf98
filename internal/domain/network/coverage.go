package network

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
)

// Default scoring parameters.
const (
	DefaultPermutations      = 100
	DefaultDegreeBinCount    = 20
	DefaultNeighborhoodOrder = 1
)

// ScorerOptions configures a Scorer.  Zero values select the defaults; a
// nil Rand falls back to an unseeded source, so reproducible runs must pass
// their own.
type ScorerOptions struct {
	Permutations      int
	DegreeBins        int
	NeighborhoodOrder int
	Rand              *rand.Rand
}

// Result carries the outcome of a coverage significance test.
type Result struct {
	// Observed is the raw coverage score of the target set:
	// (neighborhood size / network order) / median neighborhood rank.
	Observed float64
	// Mean and Std describe the degree-matched null distribution.
	Mean float64
	Std  float64
	// Z is the standard score of Observed under the null.
	Z float64
	// PValue is the two-sided normal tail probability Phi(-|z|).
	PValue float64
	// Seeds is the number of target genes present in the network.
	Seeds int
	// NeighborhoodSize is the closed k-order neighborhood cardinality.
	NeighborhoodSize int
}

// Scorer computes permutation-tested network coverage scores.  It is safe
// for concurrent use: the random source is guarded and all other state is
// immutable after construction.
type Scorer struct {
	graph *Graph
	ranks *RankTable
	bins  *DegreeBins

	permutations int
	order        int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewScorer builds a Scorer over the network and rank table.  Every network
// node must carry a rank so permutation draws can always be scored.
func NewScorer(g *Graph, ranks *RankTable, opts ScorerOptions) (*Scorer, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeGraphEmpty, "scorer requires a network")
	}
	if ranks == nil {
		return nil, errors.New(errors.ErrCodeDatasetMissing, "scorer requires a rank table")
	}
	if err := ranks.Covers(g.Nodes()); err != nil {
		return nil, err
	}

	if opts.Permutations <= 0 {
		opts.Permutations = DefaultPermutations
	}
	if opts.DegreeBins <= 0 {
		opts.DegreeBins = DefaultDegreeBinCount
	}
	if opts.NeighborhoodOrder <= 0 {
		opts.NeighborhoodOrder = DefaultNeighborhoodOrder
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(rand.Int63()))
	}

	bins, err := NewDegreeBins(g, opts.DegreeBins)
	if err != nil {
		return nil, err
	}

	return &Scorer{
		graph:        g,
		ranks:        ranks,
		bins:         bins,
		permutations: opts.Permutations,
		order:        opts.NeighborhoodOrder,
		rng:          opts.Rand,
	}, nil
}

// rawScore computes the coverage score of a seed set already restricted to
// network nodes.  The configured neighborhood order applies to both the
// observed score and every permutation sample, so the two statistics always
// expand seed sets the same way.
func (s *Scorer) rawScore(seeds []string) (float64, int, error) {
	neigh, err := s.graph.Neighborhood(seeds, s.order)
	if err != nil {
		return 0, 0, err
	}
	med, err := s.ranks.MedianRank(neigh)
	if err != nil {
		return 0, 0, err
	}
	if med <= 0 {
		return 0, 0, errors.New(errors.ErrCodeDatasetInvalid, "median neighborhood rank must be positive")
	}
	coverage := float64(len(neigh)) / float64(s.graph.Order())
	return coverage / med, len(neigh), nil
}

func (s *Scorer) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Score runs the full significance test for a combination's target genes.
//
// Targets outside the network are silently dropped first; an empty
// remainder is degenerate input.  The null distribution is built from
// degree-matched random seed sets, and a null with zero variance cannot
// yield a standard score, so it is reported as a dedicated error as well.
func (s *Scorer) Score(targets []string) (*Result, error) {
	seeds := s.graph.Intersect(targets)
	if len(seeds) == 0 {
		return nil, errors.New(errors.ErrCodeCoverageDegenerate,
			"no target gene is present in the interaction network")
	}

	observed, neighSize, err := s.rawScore(seeds)
	if err != nil {
		return nil, err
	}

	counts, err := s.bins.Counts(seeds)
	if err != nil {
		return nil, err
	}

	null := make([]float64, s.permutations)
	for i := range null {
		sample, err := s.bins.Sample(counts, s.intn)
		if err != nil {
			return nil, err
		}
		score, _, err := s.rawScore(sample)
		if err != nil {
			return nil, err
		}
		null[i] = score
	}

	mean := stat.Mean(null, nil)
	std := stat.PopStdDev(null, nil)
	if std == 0 {
		return nil, errors.New(errors.ErrCodeZeroVariance,
			"permutation null distribution has zero variance")
	}

	z := (observed - mean) / std
	p := distuv.UnitNormal.CDF(-math.Abs(z))

	return &Result{
		Observed:         observed,
		Mean:             mean,
		Std:              std,
		Z:                z,
		PValue:           p,
		Seeds:            len(seeds),
		NeighborhoodSize: neighSize,
	}, nil
}

//Personal.AI order the ending
