package optimizer

import (
	"math/rand"

	"github.com/your-org/rule-search/internal/chromosome"
)

// individual is a population member with a cached fitness.
type individual struct {
	ch      chromosome.Chromosome
	fitness float64
	valid   bool
}

func (ind *individual) clone() *individual {
	return &individual{ch: ind.ch.Clone(), fitness: ind.fitness, valid: ind.valid}
}

// selectTournament draws k winners, each the fittest of size members picked
// uniformly with replacement. Winners are shared, not copied.
func selectTournament(rng *rand.Rand, pop []*individual, k, size int) []*individual {
	out := make([]*individual, k)
	for i := range out {
		best := pop[rng.Intn(len(pop))]
		for j := 1; j < size; j++ {
			if c := pop[rng.Intn(len(pop))]; c.fitness > best.fitness {
				best = c
			}
		}
		out[i] = best
	}
	return out
}

// crossTwoPoint swaps the segment between two random cut points of a and b.
func crossTwoPoint(rng *rand.Rand, a, b chromosome.Chromosome) {
	size := min(len(a), len(b))
	if size < 2 {
		return
	}
	p1 := 1 + rng.Intn(size)
	p2 := 1 + rng.Intn(size-1)
	if p2 >= p1 {
		p2++
	} else {
		p1, p2 = p2, p1
	}
	for i := p1; i < p2; i++ {
		a[i], b[i] = b[i], a[i]
	}
}

// flipBits flips every bit of ch independently with probability p.
func flipBits(rng *rand.Rand, ch chromosome.Chromosome, p float64) {
	for i := range ch {
		if rng.Float64() < p {
			ch[i] ^= 1
		}
	}
}

// vary applies pairwise crossover and mutation to a cloned offspring
// population, invalidating the fitness of every touched individual.
func vary(rng *rand.Rand, offspring []*individual, cfg Config) {
	for i := 1; i < len(offspring); i += 2 {
		if rng.Float64() < cfg.CrossoverProb {
			crossTwoPoint(rng, offspring[i-1].ch, offspring[i].ch)
			offspring[i-1].valid = false
			offspring[i].valid = false
		}
	}
	for _, ind := range offspring {
		if rng.Float64() < cfg.MutationProb {
			flipBits(rng, ind.ch, cfg.BitFlipProb)
			ind.valid = false
		}
	}
}
