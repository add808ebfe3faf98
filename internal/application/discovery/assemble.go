package discovery

import (
	"math/rand"

	"github.com/turtacn/CombiRx-Discovery/internal/domain/combination"
	"github.com/turtacn/CombiRx-Discovery/internal/domain/drug"
	"github.com/turtacn/CombiRx-Discovery/internal/domain/evolution"
	"github.com/turtacn/CombiRx-Discovery/internal/domain/network"
	types "github.com/turtacn/CombiRx-Discovery/pkg/types/discovery"
)

// runtime bundles the assembled, immutable inputs of one run: the drug
// index that genome bits map onto, the evaluator, and the configured engine.
type runtime struct {
	index  *drug.Index
	engine *evolution.Engine
}

// mergeParameters fills absent (nil) request parameters from the platform
// engine defaults.  Present values always win, including explicit zeros: a
// caller asking for mutation_prob 0 or n_generations 0 gets exactly that.
func (s *runService) mergeParameters(p types.Parameters) types.Parameters {
	d := s.engineCfg
	if p.PopulationSize == nil {
		p.PopulationSize = types.Int(d.PopulationSize)
	}
	if p.NOffsprings == nil {
		p.NOffsprings = types.Int(d.NOffsprings)
	}
	if p.AttributeInitProb == nil {
		p.AttributeInitProb = types.Float64(d.AttributeInitProb)
	}
	if p.AttributeMutationProb == nil {
		p.AttributeMutationProb = types.Float64(d.AttributeMutationProb)
	}
	if p.CrossoverProb == nil {
		p.CrossoverProb = types.Float64(d.CrossoverProb)
	}
	if p.MutationProb == nil {
		p.MutationProb = types.Float64(d.MutationProb)
	}
	if p.NGenerations == nil {
		p.NGenerations = types.Int(d.NGenerations)
	}
	return p
}

// assemble validates the request datasets and builds the run machinery.
// Every error returned here is an input error: nothing has been persisted
// and no search has started.
func (s *runService) assemble(req *types.RunRequest) (*runtime, error) {
	smiles, err := drug.NewMatrix(req.SmilesDistances)
	if err != nil {
		return nil, err
	}
	moa, err := drug.NewMatrix(req.MoaDistances)
	if err != nil {
		return nil, err
	}
	paths, err := drug.NewMatrix(req.GraphDistances)
	if err != nil {
		return nil, err
	}

	// The chemical-structure listing defines the candidate drug set and
	// the genome bit ordering; the other matrices must cover it.
	index, err := drug.NewIndex(smiles.Names())
	if err != nil {
		return nil, err
	}

	targets, err := drug.NewTargetMap(req.DrugTargets)
	if err != nil {
		return nil, err
	}

	graph, err := network.NewGraph(req.PPINetwork)
	if err != nil {
		return nil, err
	}
	ranks, err := network.NewRankTable(req.GraphRank)
	if err != nil {
		return nil, err
	}

	opts := network.ScorerOptions{
		Permutations:      s.engineCfg.Permutations,
		DegreeBins:        s.engineCfg.DegreeBins,
		NeighborhoodOrder: s.engineCfg.NeighborhoodOrder,
	}
	if req.Parameters.Seed != nil {
		// Separate stream from the engine's so both stay reproducible.
		opts.Rand = rand.New(rand.NewSource(*req.Parameters.Seed + 1))
	}
	scorer, err := network.NewScorer(graph, ranks, opts)
	if err != nil {
		return nil, err
	}

	evaluator, err := combination.NewEvaluator(index, smiles, moa, paths, targets, scorer, s.engineCfg.CoverageCacheSize)
	if err != nil {
		return nil, err
	}

	// Merging is idempotent; re-merging here keeps assemble total for
	// callers that pass a raw request, such as parked submissions.
	p := s.mergeParameters(req.Parameters)
	engine, err := evolution.NewEngine(evolution.Config{
		GenomeLength:          index.Len(),
		PopulationSize:        *p.PopulationSize,
		NOffsprings:           *p.NOffsprings,
		AttributeInitProb:     *p.AttributeInitProb,
		AttributeMutationProb: *p.AttributeMutationProb,
		CrossoverProb:         *p.CrossoverProb,
		MutationProb:          *p.MutationProb,
		NGenerations:          *p.NGenerations,
		EvalWorkers:           s.engineCfg.EvalWorkers,
		Seed:                  p.Seed,
	}, evaluator, s.logger)
	if err != nil {
		return nil, err
	}

	return &runtime{index: index, engine: engine}, nil
}

//Personal.AI order the ending
