// Package discovery defines the wire-level data transfer types for
// combination-discovery runs: the input datasets, engine parameters, and the
// result shapes handed back to API clients and the CLI.
//
// These are deliberately plain structs with JSON tags; the domain packages
// under internal/ define their own richer types and never depend on this
// package's field layout beyond the documented conversions.
package discovery

import (
	"time"

	"github.com/turtacn/CombiRx-Discovery/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Input datasets
// ─────────────────────────────────────────────────────────────────────────────

// DistanceRecord is one entry of a pairwise drug-distance listing.  A full
// listing covers every unordered drug pair once; the symmetric matrix is the
// record set mirrored across its zero diagonal.
type DistanceRecord struct {
	Drug1    string  `json:"drug1"`
	Drug2    string  `json:"drug2"`
	Distance float64 `json:"distance"`
}

// EdgeRecord is one undirected edge of the protein-protein interaction network.
type EdgeRecord struct {
	Gene1 string `json:"gene1"`
	Gene2 string `json:"gene2"`
}

// RankRecord assigns an importance rank to a network node.  Lower rank means
// a more important node, by convention.
type RankRecord struct {
	Gene string  `json:"gene"`
	Rank float64 `json:"rank"`
}

// TargetRecord is one drug → target-gene association.
type TargetRecord struct {
	Drug string `json:"drug"`
	Gene string `json:"gene"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Engine parameters
// ─────────────────────────────────────────────────────────────────────────────

// Parameters carries the numeric configuration of an evolutionary run.
// Fields are pointers so that absence and an explicit zero stay
// distinguishable: nil fields are filled from platform defaults (see
// internal/config), while a present zero is honored as-is — a caller may
// legitimately ask for zero generations or a zero mutation probability.
type Parameters struct {
	PopulationSize        *int     `json:"population_size,omitempty"`
	NOffsprings           *int     `json:"n_offsprings,omitempty"`
	AttributeInitProb     *float64 `json:"attribute_init_prob,omitempty"`
	AttributeMutationProb *float64 `json:"attribute_mutation_prob,omitempty"`
	CrossoverProb         *float64 `json:"crossover_prob,omitempty"`
	MutationProb          *float64 `json:"mutation_prob,omitempty"`
	NGenerations          *int     `json:"n_generations,omitempty"`

	// Seed, when non-nil, makes bit initialization, variation, and
	// permutation sampling deterministic.
	Seed *int64 `json:"seed,omitempty"`
}

// Int returns a pointer to v, for building Parameters literals.
func Int(v int) *int { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// RunRequest is the complete input of a discovery run: the three distance
// listings, the interaction network, the node ranks, the drug-target map,
// and the engine parameters.
type RunRequest struct {
	SmilesDistances []DistanceRecord `json:"smiles_distances"`
	MoaDistances    []DistanceRecord `json:"moa_distances"`
	GraphDistances  []DistanceRecord `json:"graph_distances"`
	PPINetwork      []EdgeRecord     `json:"ppi_network"`
	GraphRank       []RankRecord     `json:"graph_rank"`
	DrugTargets     []TargetRecord   `json:"drug_targets"`
	Parameters      Parameters       `json:"parameters"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Results
// ─────────────────────────────────────────────────────────────────────────────

// FitnessValues is the named 5-objective fitness of an individual.
// SmilesDistance, MoaDistance, and ShortestPathDistance are maximized;
// Coverage (a permutation-test p-value) and NDrugs are minimized.
type FitnessValues struct {
	SmilesDistance       float64 `json:"smiles_distance"`
	MoaDistance          float64 `json:"moa_distance"`
	ShortestPathDistance float64 `json:"shortest_path_distance"`
	Coverage             float64 `json:"coverage"`
	NDrugs               float64 `json:"n_drugs"`
}

// Solution is one non-dominated drug combination from the final archive.
type Solution struct {
	Drugs   []string      `json:"drugs"`
	Fitness FitnessValues `json:"fitness"`
}

// IndividualResult is one member of the final population: its selection
// vector over the run's drug index, plus its fitness.
type IndividualResult struct {
	Bits    []bool        `json:"bits"`
	Fitness FitnessValues `json:"fitness"`
}

// GenerationRecord is one logbook row.  Field names follow the engine's
// logbook header: generation index, number of evaluations performed, and
// survivor-population means per objective.
type GenerationRecord struct {
	Gen         int     `json:"gen"`
	NEvals      int     `json:"nevals"`
	AvgSmiles   float64 `json:"avg_smile"`
	AvgMoa      float64 `json:"avg_moa"`
	AvgPaths    float64 `json:"avg_paths"`
	AvgCoverage float64 `json:"avg_coverage"`
	AvgNDrugs   float64 `json:"n_drugs"`
}

// RunResult is the full outcome of a completed run.
type RunResult struct {
	RunID      common.ID          `json:"run_id"`
	DrugNames  []string           `json:"drug_names"`
	Population []IndividualResult `json:"population"`
	Log        []GenerationRecord `json:"logbook"`
	Solutions  []Solution         `json:"solutions"`
}

// Run is the persisted record of a discovery run.
type Run struct {
	ID          common.ID     `json:"id"`
	Status      common.Status `json:"status"`
	Parameters  Parameters    `json:"parameters"`
	DrugCount   int           `json:"drug_count"`
	Error       string        `json:"error,omitempty"`
	ArtifactKey string        `json:"artifact_key,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	FinishedAt  *time.Time    `json:"finished_at,omitempty"`
}

//Personal.AI order the ending
