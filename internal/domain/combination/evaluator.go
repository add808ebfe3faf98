// Package combination evaluates candidate drug combinations against the
// five search objectives: chemical-structure diversity, mechanism-of-action
// diversity, pathway diversity, network coverage significance and
// combination size.
package combination

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/turtacn/CombiRx-Discovery/internal/domain/drug"
	"github.com/turtacn/CombiRx-Discovery/internal/domain/evolution"
	"github.com/turtacn/CombiRx-Discovery/internal/domain/network"
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
)

// DefaultCacheSize bounds the fitness memoization cache.
const DefaultCacheSize = 4096

// Evaluator implements evolution.Evaluator over the run's reference data.
// Genomes are interpreted through the drug index; fitness values are
// memoized by genome since the search revisits combinations frequently.
//
// Evaluator is safe for concurrent use: the matrices and target map are
// immutable, the scorer locks its random source and the cache is the
// thread-safe hashicorp implementation.
type Evaluator struct {
	index   *drug.Index
	smiles  *drug.Matrix
	moa     *drug.Matrix
	paths   *drug.Matrix
	targets *drug.TargetMap
	scorer  *network.Scorer

	cache *lru.Cache[string, evolution.Objectives]
}

// NewEvaluator validates that every matrix covers the drug index and builds
// an Evaluator.  cacheSize below one selects the default.
func NewEvaluator(
	index *drug.Index,
	smiles, moa, paths *drug.Matrix,
	targets *drug.TargetMap,
	scorer *network.Scorer,
	cacheSize int,
) (*Evaluator, error) {
	if index == nil || smiles == nil || moa == nil || paths == nil || targets == nil || scorer == nil {
		return nil, errors.New(errors.ErrCodeDatasetMissing, "evaluator requires all reference datasets")
	}
	if err := index.CoveredBy(smiles, "chemical structure"); err != nil {
		return nil, err
	}
	if err := index.CoveredBy(moa, "mechanism of action"); err != nil {
		return nil, err
	}
	if err := index.CoveredBy(paths, "pathway"); err != nil {
		return nil, err
	}

	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, evolution.Objectives](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create fitness cache")
	}

	return &Evaluator{
		index:   index,
		smiles:  smiles,
		moa:     moa,
		paths:   paths,
		targets: targets,
		scorer:  scorer,
		cache:   cache,
	}, nil
}

// Index returns the drug index the evaluator interprets genomes with.
func (e *Evaluator) Index() *drug.Index { return e.index }

// Evaluate computes the fitness of one genome.
//
// Combinations of at most one drug carry no pairwise diversity and no
// meaningful coverage, so they receive the fixed worst-plausible fitness
// (0, 0, 0, 1, D) with D the full index size instead of going through the
// scorer.  Reporting D rather than the selected count matters: n_drugs is
// minimized, so a smaller value would make degenerate genomes Pareto
// non-dominated against every real combination.
func (e *Evaluator) Evaluate(ctx context.Context, bits []bool) (evolution.Objectives, error) {
	if len(bits) != e.index.Len() {
		return evolution.Objectives{}, errors.Newf(errors.ErrCodeEvaluationFailed,
			"genome length %d does not match drug index size %d", len(bits), e.index.Len())
	}
	if err := ctx.Err(); err != nil {
		return evolution.Objectives{}, err
	}

	selected := e.index.Selected(bits)
	if len(selected) <= 1 {
		return evolution.Objectives{CoveragePValue: 1, NDrugs: float64(e.index.Len())}, nil
	}

	key := genomeKey(bits)
	if fit, ok := e.cache.Get(key); ok {
		return fit, nil
	}

	smiles, err := e.smiles.MeanPairwise(selected)
	if err != nil {
		return evolution.Objectives{}, err
	}
	moa, err := e.moa.MeanPairwise(selected)
	if err != nil {
		return evolution.Objectives{}, err
	}
	path, err := e.paths.MeanPairwise(selected)
	if err != nil {
		return evolution.Objectives{}, err
	}

	coverage, err := e.scorer.Score(e.targets.Union(selected))
	if err != nil {
		return evolution.Objectives{}, err
	}

	fit := evolution.Objectives{
		Smiles:         smiles,
		Moa:            moa,
		Path:           path,
		CoveragePValue: coverage.PValue,
		NDrugs:         float64(len(selected)),
	}
	e.cache.Add(key, fit)
	return fit, nil
}

// CacheLen returns the number of memoized fitness entries.
func (e *Evaluator) CacheLen() int { return e.cache.Len() }

func genomeKey(bits []bool) string {
	buf := make([]byte, len(bits))
	for i, b := range bits {
		if b {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

//Personal.AI order the ending
