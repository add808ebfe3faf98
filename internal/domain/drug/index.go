package drug

import (
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
)

// Index is the canonical drug ordering for a discovery run.  Bit i of an
// individual's genome selects the drug at Index position i, so every
// component that interprets genomes must share the same Index instance.
//
// The canonical ordering is taken from the chemical-structure distance
// matrix; the other matrices and the target map are validated against it at
// run assembly time.
type Index struct {
	names []string
	pos   map[string]int
}

// NewIndex creates an Index over the given ordered drug names.
func NewIndex(names []string) (*Index, error) {
	if len(names) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetMissing, "drug index is empty")
	}
	pos := make(map[string]int, len(names))
	for i, n := range names {
		if n == "" {
			return nil, errors.New(errors.ErrCodeDatasetInvalid, "drug index contains an empty name")
		}
		if _, dup := pos[n]; dup {
			return nil, errors.Newf(errors.ErrCodeDatasetInvalid, "duplicate drug name %s in index", n)
		}
		pos[n] = i
	}
	return &Index{names: names, pos: pos}, nil
}

// Len returns the number of drugs, which equals the genome length.
func (ix *Index) Len() int { return len(ix.names) }

// Name returns the drug name at position i.
func (ix *Index) Name(i int) string { return ix.names[i] }

// Names returns the full ordered name list.  Callers must not mutate it.
func (ix *Index) Names() []string { return ix.names }

// Position returns the position of a drug name in the index.
func (ix *Index) Position(name string) (int, bool) {
	i, ok := ix.pos[name]
	return i, ok
}

// Selected maps a genome to the names of the selected drugs, preserving
// index order.
func (ix *Index) Selected(bits []bool) []string {
	out := make([]string, 0, len(bits))
	for i, b := range bits {
		if b && i < len(ix.names) {
			out = append(out, ix.names[i])
		}
	}
	return out
}

// CoveredBy verifies that every drug in the index is present in the given
// matrix, so fitness lookups can never miss during a run.
func (ix *Index) CoveredBy(m *Matrix, label string) error {
	for _, n := range ix.names {
		if !m.Contains(n) {
			return errors.Newf(errors.ErrCodeDrugUnknown,
				"drug %s missing from %s distance matrix", n, label)
		}
	}
	return nil
}

//Personal.AI order the ending
