package evolution

import (
	"context"
	"math/rand"
	"time"

	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CombiRx-Discovery/internal/parallel"
	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
)

// Evaluator computes the fitness of one genome.  Implementations must be
// safe for concurrent use; the engine fans evaluations out across workers.
type Evaluator interface {
	Evaluate(ctx context.Context, bits []bool) (Objectives, error)
}

// Config holds all engine parameters for one run.
type Config struct {
	GenomeLength          int
	PopulationSize        int
	NOffsprings           int
	AttributeInitProb     float64
	AttributeMutationProb float64
	CrossoverProb         float64
	MutationProb          float64
	NGenerations          int
	EvalWorkers           int

	// Seed fixes the random stream for reproducible runs; nil draws an
	// entropy-based seed.
	Seed *int64
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	switch {
	case c.GenomeLength <= 0:
		return errors.New(errors.ErrCodeConfigInvalid, "genome length must be positive")
	case c.PopulationSize <= 0:
		return errors.New(errors.ErrCodeConfigInvalid, "population size must be positive")
	case c.NOffsprings <= 0:
		return errors.New(errors.ErrCodeConfigInvalid, "offspring count must be positive")
	case c.NGenerations < 0:
		return errors.New(errors.ErrCodeConfigInvalid, "generation count must be non-negative")
	case c.AttributeInitProb < 0 || c.AttributeInitProb > 1:
		return errors.New(errors.ErrCodeConfigInvalid, "attribute init probability must be in [0, 1]")
	case c.AttributeMutationProb < 0 || c.AttributeMutationProb > 1:
		return errors.New(errors.ErrCodeConfigInvalid, "attribute mutation probability must be in [0, 1]")
	case c.CrossoverProb < 0 || c.MutationProb < 0:
		return errors.New(errors.ErrCodeConfigInvalid, "variation probabilities must be non-negative")
	case c.CrossoverProb+c.MutationProb > 1:
		return errors.New(errors.ErrCodeConfigInvalid,
			"crossover and mutation probabilities must sum to at most 1")
	}
	return nil
}

// LogEntry is one row of the generation logbook.  NEvals counts the
// fitness evaluations actually performed in that generation; averages are
// taken over the post-selection population.
type LogEntry struct {
	Gen         int
	NEvals      int
	AvgSmiles   float64
	AvgMoa      float64
	AvgPath     float64
	AvgCoverage float64
	AvgNDrugs   float64
}

// Output is the final state of a completed run.
type Output struct {
	Population []*Individual
	Archive    []*Individual
	Log        []LogEntry
}

// Engine drives the mu-plus-lambda NSGA-II search.
type Engine struct {
	cfg       Config
	evaluator Evaluator
	logger    logging.Logger
	rng       *rand.Rand
}

// NewEngine validates the configuration and builds an Engine.
func NewEngine(cfg Config, evaluator Evaluator, logger logging.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if evaluator == nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "engine requires an evaluator")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.EvalWorkers <= 0 {
		cfg.EvalWorkers = 1
	}

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	return &Engine{
		cfg:       cfg,
		evaluator: evaluator,
		logger:    logger.Named("engine"),
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// evaluateInvalid evaluates every individual without a valid fitness and
// returns how many evaluations were performed.
func (e *Engine) evaluateInvalid(ctx context.Context, pop []*Individual) (int, error) {
	var pending []*Individual
	for _, ind := range pop {
		if !ind.Evaluated() {
			pending = append(pending, ind)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	results, err := parallel.Map(ctx, e.cfg.EvalWorkers, pending,
		func(ctx context.Context, ind *Individual) (Objectives, error) {
			return e.evaluator.Evaluate(ctx, ind.Bits)
		})
	if err != nil {
		if ctx.Err() != nil {
			return 0, errors.Wrap(ctx.Err(), errors.ErrCodeRunAborted, "run canceled during evaluation")
		}
		return 0, errors.Wrap(err, errors.ErrCodeEvaluationFailed, "fitness evaluation failed")
	}
	for i, ind := range pending {
		ind.SetFitness(results[i])
	}
	return len(pending), nil
}

func logEntry(gen, nevals int, pop []*Individual) LogEntry {
	entry := LogEntry{Gen: gen, NEvals: nevals}
	if len(pop) == 0 {
		return entry
	}
	for _, ind := range pop {
		fit, _ := ind.Fitness()
		entry.AvgSmiles += fit.Smiles
		entry.AvgMoa += fit.Moa
		entry.AvgPath += fit.Path
		entry.AvgCoverage += fit.CoveragePValue
		entry.AvgNDrugs += fit.NDrugs
	}
	n := float64(len(pop))
	entry.AvgSmiles /= n
	entry.AvgMoa /= n
	entry.AvgPath /= n
	entry.AvgCoverage /= n
	entry.AvgNDrugs /= n
	return entry
}

// Run executes the full evolutionary search.  The context aborts the run
// between evaluations; a canceled run returns a run-aborted error rather
// than partial output.
func (e *Engine) Run(ctx context.Context) (*Output, error) {
	start := time.Now()

	pop := make([]*Individual, e.cfg.PopulationSize)
	for i := range pop {
		pop[i] = RandomIndividual(e.cfg.GenomeLength, e.cfg.AttributeInitProb, e.rng)
	}

	nevals, err := e.evaluateInvalid(ctx, pop)
	if err != nil {
		return nil, err
	}

	archive := NewArchive()
	archive.Update(pop)

	log := []LogEntry{logEntry(0, nevals, pop)}
	e.logger.Info("search initialized",
		logging.Int("population_size", len(pop)),
		logging.Int("genome_length", e.cfg.GenomeLength),
		logging.Int("nevals", nevals),
	)

	for gen := 1; gen <= e.cfg.NGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeRunAborted, "run canceled")
		}

		offspring, err := VarOr(pop, e.cfg.NOffsprings,
			e.cfg.CrossoverProb, e.cfg.MutationProb, e.cfg.AttributeMutationProb, e.rng)
		if err != nil {
			return nil, err
		}

		nevals, err := e.evaluateInvalid(ctx, offspring)
		if err != nil {
			return nil, err
		}

		archive.Update(offspring)
		pop = SelectNSGA2(append(pop, offspring...), e.cfg.PopulationSize)

		entry := logEntry(gen, nevals, pop)
		log = append(log, entry)

		if gen%100 == 0 || gen == e.cfg.NGenerations {
			e.logger.Debug("generation complete",
				logging.Int("gen", gen),
				logging.Int("nevals", nevals),
				logging.Int("archive_size", archive.Len()),
				logging.Float64("avg_coverage", entry.AvgCoverage),
			)
		}
	}

	e.logger.Info("search complete",
		logging.Int("generations", e.cfg.NGenerations),
		logging.Int("archive_size", archive.Len()),
		logging.Duration("elapsed", time.Since(start)),
	)

	return &Output{
		Population: pop,
		Archive:    archive.Items(),
		Log:        log,
	}, nil
}

//Personal.AI order the ending
