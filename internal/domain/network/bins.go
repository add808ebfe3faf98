package network

import (
	"math"
	"sort"

	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
)

// DegreeBins partitions the network's nodes into equal-frequency bins by
// node degree.  The permutation test draws degree-matched random gene sets
// by sampling, per bin, the same number of nodes as the observed seed set
// contributes to that bin.
//
// Bin edges are degree quantiles; nodes sharing a degree value always land
// in the same bin, so with highly skewed degree distributions the effective
// bin count can be lower than requested.
type DegreeBins struct {
	edges  []float64
	bins   [][]string
	binOf  map[string]int
	degree map[string]int
}

// NewDegreeBins computes equal-frequency degree bins over all nodes of g.
func NewDegreeBins(g *Graph, nBins int) (*DegreeBins, error) {
	if nBins < 1 {
		return nil, errors.InvalidParam("degree bin count must be positive")
	}
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil, errors.New(errors.ErrCodeGraphEmpty, "cannot bin an empty network")
	}

	degree := make(map[string]int, len(nodes))
	degrees := make([]float64, 0, len(nodes))
	for _, n := range nodes {
		d, err := g.Degree(n)
		if err != nil {
			return nil, err
		}
		degree[n] = d
		degrees = append(degrees, float64(d))
	}
	sort.Float64s(degrees)

	// Interior quantile cut points; duplicates collapse so equal-degree
	// nodes never straddle a bin boundary.
	edges := make([]float64, 0, nBins-1)
	for i := 1; i < nBins; i++ {
		q := quantile(degrees, float64(i)/float64(nBins))
		if len(edges) == 0 || q > edges[len(edges)-1] {
			edges = append(edges, q)
		}
	}

	db := &DegreeBins{
		edges:  edges,
		bins:   make([][]string, len(edges)+1),
		binOf:  make(map[string]int, len(nodes)),
		degree: degree,
	}
	for _, n := range nodes {
		b := db.binIndex(float64(degree[n]))
		db.bins[b] = append(db.bins[b], n)
		db.binOf[n] = b
	}
	return db, nil
}

// quantile computes the linearly interpolated q-quantile of sorted values,
// matching the numpy default.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// binIndex returns the bin for a degree value: the number of interior edges
// strictly below it.
func (db *DegreeBins) binIndex(deg float64) int {
	return sort.SearchFloat64s(db.edges, deg)
}

// NumBins returns the effective number of bins after duplicate edges have
// been collapsed.
func (db *DegreeBins) NumBins() int { return len(db.bins) }

// Bin returns the bin index of a node.
func (db *DegreeBins) Bin(gene string) (int, error) {
	b, ok := db.binOf[gene]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeNodeNotFound, "gene %s not in network", gene)
	}
	return b, nil
}

// Members returns the nodes in a bin.  The slice is shared; callers must
// not mutate it.
func (db *DegreeBins) Members(bin int) []string { return db.bins[bin] }

// Counts returns, for the given seed genes, how many fall into each bin.
func (db *DegreeBins) Counts(seeds []string) ([]int, error) {
	counts := make([]int, len(db.bins))
	for _, s := range seeds {
		b, ok := db.binOf[s]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeNodeNotFound, "gene %s not in network", s)
		}
		counts[b]++
	}
	return counts, nil
}

// Sample draws a degree-matched random gene set: for each bin it samples
// counts[bin] distinct nodes uniformly without replacement.  The intn
// argument supplies random integers in [0, n) so callers control seeding
// and locking.
func (db *DegreeBins) Sample(counts []int, intn func(n int) int) ([]string, error) {
	if len(counts) != len(db.bins) {
		return nil, errors.New(errors.ErrCodeBinningFailed, "bin count mismatch in permutation sample")
	}
	var out []string
	for b, want := range counts {
		if want == 0 {
			continue
		}
		members := db.bins[b]
		if want > len(members) {
			return nil, errors.Newf(errors.ErrCodeBinningFailed,
				"bin %d holds %d nodes but %d were requested", b, len(members), want)
		}
		// Partial Fisher-Yates over a scratch copy.
		scratch := make([]string, len(members))
		copy(scratch, members)
		for i := 0; i < want; i++ {
			j := i + intn(len(scratch)-i)
			scratch[i], scratch[j] = scratch[j], scratch[i]
		}
		out = append(out, scratch[:want]...)
	}
	return out, nil
}

//Personal.AI order the ending
