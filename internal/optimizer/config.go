package optimizer

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidProbability = errors.New("probability must lie in [0, 1]")
	ErrInvalidPopulation  = errors.New("population size must be at least 2")
	ErrInvalidGenerations = errors.New("generation count must not be negative")
	ErrInvalidHallOfFame  = errors.New("hall of fame size must be positive")
	ErrInvalidTournament  = errors.New("tournament size must be positive")
	ErrInvalidWorkers     = errors.New("worker count must not be negative")
)

// Config holds the parameters of a genetic search.
type Config struct {
	PopulationSize int
	Generations    int
	TournamentSize int
	HallOfFameSize int
	// Workers bounds parallel fitness evaluation. Zero uses GOMAXPROCS.
	Workers int

	CrossoverProb float64
	MutationProb  float64
	// BitFlipProb is the per-bit flip chance of a mutated individual.
	BitFlipProb float64

	Seed int64
	// TargetFitness stops the search early once the best fitness reaches it.
	TargetFitness *float64
}

// DefaultConfig returns the standard search parameters.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 300,
		Generations:    15,
		TournamentSize: 3,
		HallOfFameSize: 5,
		CrossoverProb:  0.5,
		MutationProb:   0.2,
		BitFlipProb:    0.05,
		Seed:           1337,
	}
}

// Validate fails fast on parameters the search cannot run with.
func (c Config) Validate() error {
	probs := []struct {
		name string
		v    float64
	}{
		{"crossover", c.CrossoverProb},
		{"mutation", c.MutationProb},
		{"bit flip", c.BitFlipProb},
	}
	for _, p := range probs {
		// NaN fails this check as well.
		if !(p.v >= 0 && p.v <= 1) {
			return fmt.Errorf("%w: %s probability is %v", ErrInvalidProbability, p.name, p.v)
		}
	}
	if c.PopulationSize < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidPopulation, c.PopulationSize)
	}
	if c.Generations < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidGenerations, c.Generations)
	}
	if c.HallOfFameSize < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidHallOfFame, c.HallOfFameSize)
	}
	if c.TournamentSize < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidTournament, c.TournamentSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers)
	}
	return nil
}
