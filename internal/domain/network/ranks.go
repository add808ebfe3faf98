package network

import (
	"math"
	"sort"

	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// RankTable maps gene symbols to their precomputed network centrality rank.
// Lower rank means more central; the coverage score divides by the median
// rank of a neighborhood so central neighborhoods score higher.
type RankTable struct {
	ranks map[string]float64
}

// NewRankTable builds a RankTable from rank records.  Duplicate genes must
// agree on the rank value.
func NewRankTable(records []discovery.RankRecord) (*RankTable, error) {
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetMissing, "gene rank records are empty")
	}
	ranks := make(map[string]float64, len(records))
	for _, r := range records {
		if r.Gene == "" {
			return nil, errors.New(errors.ErrCodeDatasetInvalid, "rank record with empty gene name")
		}
		if math.IsNaN(r.Rank) || math.IsInf(r.Rank, 0) {
			return nil, errors.Newf(errors.ErrCodeDatasetInvalid, "non-finite rank for gene %s", r.Gene)
		}
		if prev, dup := ranks[r.Gene]; dup && prev != r.Rank {
			return nil, errors.Newf(errors.ErrCodeDatasetInvalid,
				"conflicting ranks for gene %s: %v vs %v", r.Gene, prev, r.Rank)
		}
		ranks[r.Gene] = r.Rank
	}
	return &RankTable{ranks: ranks}, nil
}

// Len returns the number of ranked genes.
func (rt *RankTable) Len() int { return len(rt.ranks) }

// Rank returns the rank of a single gene.
func (rt *RankTable) Rank(gene string) (float64, error) {
	r, ok := rt.ranks[gene]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeRankMissing, "gene %s has no rank", gene)
	}
	return r, nil
}

// Covers verifies that every gene in the list has a rank entry.
func (rt *RankTable) Covers(genes []string) error {
	for _, g := range genes {
		if _, ok := rt.ranks[g]; !ok {
			return errors.Newf(errors.ErrCodeRankMissing, "gene %s has no rank", g)
		}
	}
	return nil
}

// MedianRank returns the median rank over the given genes, interpolating the
// two middle values for even-sized inputs.
func (rt *RankTable) MedianRank(genes []string) (float64, error) {
	if len(genes) == 0 {
		return 0, errors.New(errors.ErrCodeDatasetInvalid, "median rank of empty gene set")
	}
	vals := make([]float64, 0, len(genes))
	for _, g := range genes {
		r, ok := rt.ranks[g]
		if !ok {
			return 0, errors.Newf(errors.ErrCodeRankMissing, "gene %s has no rank", g)
		}
		vals = append(vals, r)
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], nil
	}
	return (vals[mid-1] + vals[mid]) / 2, nil
}

//Personal.AI order the ending
