package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/your-org/rule-search/internal/chromosome"
	"github.com/your-org/rule-search/internal/engine"
)

var (
	ErrEmptyHallOfFame = errors.New("cross validation needs at least one candidate")
	ErrNotRun          = errors.New("cross validation has not been run")
	ErrNilDependency   = errors.New("simulator and evaluator are required")
)

// Score is the performance of one candidate across all simulated paths.
type Score struct {
	Chromosome chromosome.Chromosome
	Mean       float64
	Min        float64
	Max        float64
}

// CrossValidator re-scores candidates on simulated paths and picks the one
// with the highest mean net profit.
type CrossValidator struct {
	candidates []chromosome.Chromosome
	sim        Simulator
	eval       engine.Fitness
	logger     *zap.Logger
	workers    int

	scores []Score
	best   int
}

// ValidatorOption configures a CrossValidator.
type ValidatorOption func(*CrossValidator)

// WithWorkers bounds the number of paths scored concurrently.
func WithWorkers(n int) ValidatorOption {
	return func(v *CrossValidator) {
		if n > 0 {
			v.workers = n
		}
	}
}

// NewCrossValidator creates a validator for candidates, typically a hall of
// fame in rank order.
func NewCrossValidator(candidates []chromosome.Chromosome, sim Simulator, eval engine.Fitness, logger *zap.Logger, opts ...ValidatorOption) (*CrossValidator, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyHallOfFame
	}
	if sim == nil || eval == nil {
		return nil, ErrNilDependency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &CrossValidator{
		sim:     sim,
		eval:    eval,
		logger:  logger,
		workers: runtime.GOMAXPROCS(0),
		best:    -1,
	}
	for _, c := range candidates {
		v.candidates = append(v.candidates, c.Clone())
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Run simulates n paths of the given length, scores every candidate on each
// of them and returns the candidate with the highest mean. Ties go to the
// earlier candidate.
func (v *CrossValidator) Run(ctx context.Context, n, steps int) (chromosome.Chromosome, error) {
	paths, err := v.sim.Simulate(ctx, n, steps)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	// profits[p][c] is the net profit of candidate c on path p.
	profits := make([][]float64, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for p, path := range paths {
		g.Go(func() error {
			row := make([]float64, len(v.candidates))
			for c, ch := range v.candidates {
				if err := gctx.Err(); err != nil {
					return err
				}
				f, err := v.eval.Fitness(ch, path)
				if err != nil {
					return fmt.Errorf("candidate %d on path %d: %w", c, p, err)
				}
				row[c] = f
			}
			profits[p] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scores := make([]Score, len(v.candidates))
	best := 0
	for c, ch := range v.candidates {
		s := Score{Chromosome: ch, Min: math.Inf(1), Max: math.Inf(-1)}
		for p := range profits {
			f := profits[p][c]
			s.Mean += f
			s.Min = math.Min(s.Min, f)
			s.Max = math.Max(s.Max, f)
		}
		s.Mean /= float64(len(profits))
		scores[c] = s
		if s.Mean > scores[best].Mean {
			best = c
		}
		v.logger.Debug("candidate scored",
			zap.Int("rank", c),
			zap.String("chromosome", ch.String()),
			zap.Float64("mean_net_profit", s.Mean))
	}

	v.scores, v.best = scores, best
	v.logger.Info("cross validation finished",
		zap.Int("paths", len(paths)),
		zap.Int("steps", steps),
		zap.Int("best_rank", best),
		zap.Float64("best_mean_net_profit", scores[best].Mean))
	return v.candidates[best].Clone(), nil
}

// Best returns the winning candidate of the last Run.
func (v *CrossValidator) Best() (chromosome.Chromosome, error) {
	if v.best < 0 {
		return nil, ErrNotRun
	}
	return v.candidates[v.best].Clone(), nil
}

// Scores returns the per-candidate results of the last Run in candidate
// order, or nil before Run.
func (v *CrossValidator) Scores() []Score {
	if v.scores == nil {
		return nil
	}
	out := make([]Score, len(v.scores))
	copy(out, v.scores)
	return out
}
