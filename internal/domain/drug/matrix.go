// Package drug holds the drug-level reference data used by the discovery
// engine: symmetric pairwise distance matrices, the canonical drug index that
// maps individual genome bits to drug names, and the drug-to-target mapping.
package drug

import (
	"math"
	"sort"

	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// Matrix is a symmetric drug-by-drug distance matrix with a name index.
// The diagonal is always zero; values are mirrored so Distance(a, b) ==
// Distance(b, a) regardless of which orientation appeared in the input.
type Matrix struct {
	names  []string
	pos    map[string]int
	values [][]float64
}

// NewMatrix builds a Matrix from pairwise records.  The name index is the
// sorted union of all drug names appearing on either side of a record.
// Duplicate records for the same unordered pair must agree on the distance
// value; a conflict is rejected as inconsistent input.
func NewMatrix(records []discovery.DistanceRecord) (*Matrix, error) {
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetMissing, "distance records are empty")
	}

	nameSet := make(map[string]struct{}, len(records)*2)
	for _, r := range records {
		if r.Drug1 == "" || r.Drug2 == "" {
			return nil, errors.New(errors.ErrCodeDatasetInvalid, "distance record with empty drug name")
		}
		if math.IsNaN(r.Distance) || math.IsInf(r.Distance, 0) {
			return nil, errors.Newf(errors.ErrCodeDatasetInvalid,
				"non-finite distance for pair (%s, %s)", r.Drug1, r.Drug2)
		}
		nameSet[r.Drug1] = struct{}{}
		nameSet[r.Drug2] = struct{}{}
	}

	names := make([]string, 0, len(nameSet))
	for n := range nameSet {
		names = append(names, n)
	}
	sort.Strings(names)

	pos := make(map[string]int, len(names))
	for i, n := range names {
		pos[n] = i
	}

	n := len(names)
	values := make([][]float64, n)
	seen := make([][]bool, n)
	for i := range values {
		values[i] = make([]float64, n)
		seen[i] = make([]bool, n)
	}

	for _, r := range records {
		i, j := pos[r.Drug1], pos[r.Drug2]
		if i == j {
			if r.Distance != 0 {
				return nil, errors.Newf(errors.ErrCodeMatrixInconsistent,
					"non-zero self distance for drug %s", r.Drug1)
			}
			continue
		}
		if seen[i][j] && values[i][j] != r.Distance {
			return nil, errors.Newf(errors.ErrCodeMatrixInconsistent,
				"conflicting distances for pair (%s, %s): %v vs %v",
				r.Drug1, r.Drug2, values[i][j], r.Distance)
		}
		values[i][j] = r.Distance
		values[j][i] = r.Distance
		seen[i][j] = true
		seen[j][i] = true
	}

	return &Matrix{names: names, pos: pos, values: values}, nil
}

// Names returns the matrix name index in canonical (sorted) order.  The
// returned slice is shared; callers must not mutate it.
func (m *Matrix) Names() []string { return m.names }

// Size returns the number of drugs in the matrix.
func (m *Matrix) Size() int { return len(m.names) }

// Contains reports whether the matrix has a row for the drug.
func (m *Matrix) Contains(name string) bool {
	_, ok := m.pos[name]
	return ok
}

// Position returns the row index of a drug name.
func (m *Matrix) Position(name string) (int, bool) {
	i, ok := m.pos[name]
	return i, ok
}

// Distance returns the pairwise distance between two drugs by name.
func (m *Matrix) Distance(a, b string) (float64, error) {
	i, ok := m.pos[a]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeDrugUnknown, "drug %s not in distance matrix", a)
	}
	j, ok := m.pos[b]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeDrugUnknown, "drug %s not in distance matrix", b)
	}
	return m.values[i][j], nil
}

// At returns the distance at matrix positions (i, j) without bounds checks
// beyond the slice's own.  Callers obtain positions via Position.
func (m *Matrix) At(i, j int) float64 { return m.values[i][j] }

// MeanPairwise returns the mean distance over the strict upper triangle of
// the submatrix selected by drug names.  For fewer than two drugs there are
// no pairs and the mean is zero.
func (m *Matrix) MeanPairwise(names []string) (float64, error) {
	idx := make([]int, 0, len(names))
	for _, n := range names {
		i, ok := m.pos[n]
		if !ok {
			return 0, errors.Newf(errors.ErrCodeDrugUnknown, "drug %s not in distance matrix", n)
		}
		idx = append(idx, i)
	}
	if len(idx) < 2 {
		return 0, nil
	}

	var sum float64
	var count int
	for a := 0; a < len(idx); a++ {
		for b := a + 1; b < len(idx); b++ {
			sum += m.values[idx[a]][idx[b]]
			count++
		}
	}
	return sum / float64(count), nil
}

//Personal.AI order the ending
