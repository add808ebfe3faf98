package drug

import (
	"sort"

	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// TargetMap associates each drug with the set of genes it targets.  Drugs
// without any recorded target simply contribute nothing to a combination's
// target union; that is valid input, not an error.
type TargetMap struct {
	targets map[string]map[string]struct{}
}

// NewTargetMap builds a TargetMap from drug-target association records.
func NewTargetMap(records []discovery.TargetRecord) (*TargetMap, error) {
	targets := make(map[string]map[string]struct{})
	for _, r := range records {
		if r.Drug == "" || r.Gene == "" {
			return nil, errors.New(errors.ErrCodeDatasetInvalid, "target record with empty drug or gene")
		}
		set, ok := targets[r.Drug]
		if !ok {
			set = make(map[string]struct{})
			targets[r.Drug] = set
		}
		set[r.Gene] = struct{}{}
	}
	return &TargetMap{targets: targets}, nil
}

// Targets returns the sorted gene targets of a single drug.  A drug with no
// recorded targets yields an empty slice.
func (tm *TargetMap) Targets(drugName string) []string {
	set := tm.targets[drugName]
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Union returns the deduplicated target set of a drug combination as a
// sorted slice.
func (tm *TargetMap) Union(drugNames []string) []string {
	union := make(map[string]struct{})
	for _, d := range drugNames {
		for g := range tm.targets[d] {
			union[g] = struct{}{}
		}
	}
	out := make([]string, 0, len(union))
	for g := range union {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// DrugCount returns the number of drugs with at least one recorded target.
func (tm *TargetMap) DrugCount() int { return len(tm.targets) }

//Personal.AI order the ending
