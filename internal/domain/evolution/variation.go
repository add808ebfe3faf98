package evolution

import (
	"math/rand"

	"github.com/turtacn/CombiRx-Discovery/pkg/errors"
)

// CxOnePoint performs in-place one-point crossover on two genomes of equal
// length, swapping the tails after a cut point drawn from [1, n-1].
// Genomes shorter than two bits are left untouched.
func CxOnePoint(a, b *Individual, rng *rand.Rand) {
	n := len(a.Bits)
	if n != len(b.Bits) || n < 2 {
		return
	}
	point := 1 + rng.Intn(n-1)
	for i := point; i < n; i++ {
		a.Bits[i], b.Bits[i] = b.Bits[i], a.Bits[i]
	}
}

// MutShuffleIndexes performs in-place shuffle-index mutation: each position
// independently swaps with another uniformly drawn position with
// probability indpb.
func MutShuffleIndexes(ind *Individual, indpb float64, rng *rand.Rand) {
	n := len(ind.Bits)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		if rng.Float64() < indpb {
			j := rng.Intn(n - 1)
			if j >= i {
				j++
			}
			ind.Bits[i], ind.Bits[j] = ind.Bits[j], ind.Bits[i]
		}
	}
}

// VarOr produces lambda offspring from the population using the
// or-variation scheme: for each offspring exactly one of crossover,
// mutation or reproduction is applied, chosen by a single uniform draw.
// Crossover and mutation invalidate the offspring's fitness; reproduction
// clones a parent verbatim, cached fitness included.
func VarOr(pop []*Individual, lambda int, cxpb, mutpb, indpb float64, rng *rand.Rand) ([]*Individual, error) {
	if cxpb+mutpb > 1 {
		return nil, errors.New(errors.ErrCodeConfigInvalid,
			"crossover and mutation probabilities must sum to at most 1")
	}
	if len(pop) == 0 {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "cannot vary an empty population")
	}

	offspring := make([]*Individual, 0, lambda)
	for len(offspring) < lambda {
		switch choice := rng.Float64(); {
		case choice < cxpb:
			i := rng.Intn(len(pop))
			j := rng.Intn(len(pop))
			if len(pop) > 1 {
				for j == i {
					j = rng.Intn(len(pop))
				}
			}
			child, partner := pop[i].Clone(), pop[j].Clone()
			CxOnePoint(child, partner, rng)
			child.Invalidate()
			offspring = append(offspring, child)

		case choice < cxpb+mutpb:
			child := pop[rng.Intn(len(pop))].Clone()
			MutShuffleIndexes(child, indpb, rng)
			child.Invalidate()
			offspring = append(offspring, child)

		default:
			offspring = append(offspring, pop[rng.Intn(len(pop))].Clone())
		}
	}
	return offspring, nil
}

//Personal.AI order the ending
