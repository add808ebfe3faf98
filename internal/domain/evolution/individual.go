// Package evolution implements the multi-objective genetic search: binary
// genomes over the drug index, NSGA-II selection, DEAP-style or-variation
// and a monotonic non-dominated archive.
package evolution

import (
	"math/rand"
)

// Objective weights: chemical, mechanism and pathway diversity are
// maximized, coverage p-value and combination size are minimized.
var objectiveWeights = [NumObjectives]float64{1, 1, 1, -1, -1}

// NumObjectives is the dimensionality of the fitness space.
const NumObjectives = 5

// Objectives holds one fitness vector.  Dominance and selection always
// operate on the weighted view so the mixed max/min directions collapse
// into a single maximization problem.
type Objectives struct {
	Smiles         float64
	Moa            float64
	Path           float64
	CoveragePValue float64
	NDrugs         float64
}

// Values returns the raw objective vector in canonical order.
func (o Objectives) Values() [NumObjectives]float64 {
	return [NumObjectives]float64{o.Smiles, o.Moa, o.Path, o.CoveragePValue, o.NDrugs}
}

func (o Objectives) weighted() [NumObjectives]float64 {
	v := o.Values()
	for i := range v {
		v[i] *= objectiveWeights[i]
	}
	return v
}

// Dominates reports Pareto dominance: o is no worse than other in every
// objective and strictly better in at least one.
func (o Objectives) Dominates(other Objectives) bool {
	a, b := o.weighted(), other.weighted()
	better := false
	for i := range a {
		if a[i] < b[i] {
			return false
		}
		if a[i] > b[i] {
			better = true
		}
	}
	return better
}

// Equal reports exact fitness equality across all objectives.
func (o Objectives) Equal(other Objectives) bool {
	return o == other
}

// Individual is one candidate drug combination: bit i selects the drug at
// position i of the run's drug index.  Fitness is cached on the individual
// and cleared whenever variation touches the genome.
type Individual struct {
	Bits []bool

	fitness   Objectives
	evaluated bool
}

// NewIndividual returns an individual with an all-false genome of length n.
func NewIndividual(n int) *Individual {
	return &Individual{Bits: make([]bool, n)}
}

// RandomIndividual draws a genome of length n with independent Bernoulli(p)
// bits.
func RandomIndividual(n int, p float64, rng *rand.Rand) *Individual {
	ind := NewIndividual(n)
	for i := range ind.Bits {
		ind.Bits[i] = rng.Float64() < p
	}
	return ind
}

// Clone returns a deep copy, fitness cache included.
func (ind *Individual) Clone() *Individual {
	bits := make([]bool, len(ind.Bits))
	copy(bits, ind.Bits)
	return &Individual{Bits: bits, fitness: ind.fitness, evaluated: ind.evaluated}
}

// Fitness returns the cached fitness and whether it is valid.
func (ind *Individual) Fitness() (Objectives, bool) {
	return ind.fitness, ind.evaluated
}

// SetFitness stores an evaluated fitness on the individual.
func (ind *Individual) SetFitness(o Objectives) {
	ind.fitness = o
	ind.evaluated = true
}

// Invalidate clears the fitness cache after the genome changed.
func (ind *Individual) Invalidate() {
	ind.fitness = Objectives{}
	ind.evaluated = false
}

// Evaluated reports whether the individual carries a valid fitness.
func (ind *Individual) Evaluated() bool { return ind.evaluated }

// CountSelected returns the number of set bits, i.e. the combination size.
func (ind *Individual) CountSelected() int {
	n := 0
	for _, b := range ind.Bits {
		if b {
			n++
		}
	}
	return n
}

// SameBits reports genome equality with another individual.
func (ind *Individual) SameBits(other *Individual) bool {
	if len(ind.Bits) != len(other.Bits) {
		return false
	}
	for i, b := range ind.Bits {
		if b != other.Bits[i] {
			return false
		}
	}
	return true
}

// Key renders the genome as a compact string for memoization maps.
func (ind *Individual) Key() string {
	buf := make([]byte, len(ind.Bits))
	for i, b := range ind.Bits {
		if b {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

//Personal.AI order the ending
