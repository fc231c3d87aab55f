// Package optimizer searches rule combinations with a genetic algorithm.
//
// A generation selects parents by tournament, recombines pairs with two-point
// crossover, flips bits of some offspring and re-evaluates only the
// individuals that changed. The best chromosomes ever seen are kept in a
// HallOfFame.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/your-org/rule-search/internal/chromosome"
	"github.com/your-org/rule-search/internal/engine"
	"github.com/your-org/rule-search/internal/series"
)

// ErrNilEvaluator is returned by New without a fitness function.
var ErrNilEvaluator = errors.New("fitness evaluator is nil")

// GenerationStats summarises the fitness of one generation.
type GenerationStats struct {
	Gen         int
	Evaluations int
	Min         float64
	Max         float64
	Mean        float64
	Std         float64
}

// Result is the outcome of a search.
type Result struct {
	RunID      uuid.UUID
	HallOfFame []Entry
	Log        []GenerationStats
	// Generations is the number of generations actually run.
	Generations int
	Elapsed     time.Duration
}

// Best returns the top hall of fame entry.
func (r *Result) Best() Entry {
	if len(r.HallOfFame) == 0 {
		return Entry{}
	}
	return r.HallOfFame[0]
}

// Observer is notified after every generation.
type Observer func(runID uuid.UUID, stats GenerationStats, best float64)

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithObserver registers a callback invoked after every generation.
func WithObserver(obs Observer) Option {
	return func(o *Optimizer) { o.observers = append(o.observers, obs) }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id uuid.UUID) Option {
	return func(o *Optimizer) { o.runID = id }
}

// Optimizer runs a genetic search over chromosomes scored by a Fitness.
type Optimizer struct {
	eval      engine.Fitness
	prices    *series.PriceSeries
	cfg       Config
	logger    *zap.Logger
	observers []Observer
	runID     uuid.UUID
}

// New validates cfg and creates an optimizer.
func New(eval engine.Fitness, prices *series.PriceSeries, cfg Config, logger *zap.Logger, opts ...Option) (*Optimizer, error) {
	if eval == nil {
		return nil, ErrNilEvaluator
	}
	if eval.ChromosomeLength() == 0 {
		return nil, engine.ErrNoRules
	}
	if prices == nil || prices.Len() == 0 {
		return nil, series.ErrEmptySeries
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Optimizer{eval: eval, prices: prices, cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	if o.runID == uuid.Nil {
		o.runID = uuid.New()
	}
	return o, nil
}

// Run executes the search. The same seed, configuration, rules and prices
// always produce the same hall of fame.
func (o *Optimizer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	rng := rand.New(rand.NewSource(o.cfg.Seed))
	length := o.eval.ChromosomeLength()
	hof := NewHallOfFame(o.cfg.HallOfFameSize)

	log := o.logger.With(zap.String("run_id", o.runID.String()))
	log.Info("genetic search started",
		zap.Int("population", o.cfg.PopulationSize),
		zap.Int("generations", o.cfg.Generations),
		zap.Int("chromosome_bits", length),
		zap.Int64("seed", o.cfg.Seed))

	pop := make([]*individual, o.cfg.PopulationSize)
	for i := range pop {
		pop[i] = &individual{ch: chromosome.Random(rng, length)}
	}

	res := &Result{RunID: o.runID}
	record := func(gen int, pop []*individual) (bool, error) {
		n, err := o.evaluate(ctx, pop)
		if err != nil {
			return false, err
		}
		hof.Update(entries(pop))
		stats := summarize(gen, n, pop)
		res.Log = append(res.Log, stats)
		best, _ := hof.Best()
		log.Debug("generation done",
			zap.Int("gen", gen),
			zap.Int("evals", n),
			zap.Float64("max", stats.Max),
			zap.Float64("mean", stats.Mean),
			zap.Float64("best", best.Fitness))
		for _, obs := range o.observers {
			obs(o.runID, stats, best.Fitness)
		}
		return o.cfg.TargetFitness != nil && best.Fitness >= *o.cfg.TargetFitness, nil
	}

	done, err := record(0, pop)
	if err != nil {
		return nil, err
	}
	for gen := 1; gen <= o.cfg.Generations && !done; gen++ {
		winners := selectTournament(rng, pop, len(pop), o.cfg.TournamentSize)
		offspring := make([]*individual, len(winners))
		for i, w := range winners {
			offspring[i] = w.clone()
		}
		vary(rng, offspring, o.cfg)
		pop = offspring

		if done, err = record(gen, pop); err != nil {
			return nil, err
		}
		res.Generations = gen
	}

	res.HallOfFame = hof.Entries()
	res.Elapsed = time.Since(start)
	best, _ := hof.Best()
	log.Info("genetic search finished",
		zap.Int("generations", res.Generations),
		zap.Float64("best_fitness", best.Fitness),
		zap.String("best", best.Chromosome.String()),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// evaluate scores every individual without a valid fitness. Work is spread
// over the configured workers; results are written back by index.
func (o *Optimizer) evaluate(ctx context.Context, pop []*individual) (int, error) {
	var todo []int
	for i, ind := range pop {
		if !ind.valid {
			todo = append(todo, i)
		}
	}

	workers := o.cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	fitness := make([]float64, len(todo))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k, idx := range todo {
		ch := pop[idx].ch.Clone()
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := o.eval.Fitness(ch, o.prices)
			if err != nil {
				return fmt.Errorf("evaluate %s: %w", ch, err)
			}
			fitness[k] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	for k, idx := range todo {
		pop[idx].fitness = fitness[k]
		pop[idx].valid = true
	}
	return len(todo), nil
}

func entries(pop []*individual) []Entry {
	out := make([]Entry, len(pop))
	for i, ind := range pop {
		out[i] = Entry{Chromosome: ind.ch, Fitness: ind.fitness}
	}
	return out
}

func summarize(gen, evals int, pop []*individual) GenerationStats {
	s := GenerationStats{Gen: gen, Evaluations: evals, Min: math.Inf(1), Max: math.Inf(-1)}
	for _, ind := range pop {
		s.Min = math.Min(s.Min, ind.fitness)
		s.Max = math.Max(s.Max, ind.fitness)
		s.Mean += ind.fitness
	}
	s.Mean /= float64(len(pop))
	for _, ind := range pop {
		d := ind.fitness - s.Mean
		s.Std += d * d
	}
	s.Std = math.Sqrt(s.Std / float64(len(pop)))
	return s
}
