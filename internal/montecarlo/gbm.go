// Package montecarlo generates synthetic price paths and re-scores search
// candidates on them.
package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/your-org/rule-search/internal/indicator"
	"github.com/your-org/rule-search/internal/series"
)

var (
	ErrInsufficientHistory = errors.New("at least two historical prices are required")
	ErrInvalidHorizon      = errors.New("time steps must be positive")
	ErrInvalidSimulations  = errors.New("number of simulations must be positive")
)

// Simulator produces synthetic price series.
type Simulator interface {
	Simulate(ctx context.Context, n, steps int) ([]*series.PriceSeries, error)
}

// GeometricBrownianMotion draws paths whose daily log returns are normal with
// the mean and variance of the historical log returns.
type GeometricBrownianMotion struct {
	drift float64
	sigma float64
	last  float64
	end   time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGBM fits the model to history. Successive Simulate calls continue the
// random stream started from seed.
func NewGBM(history *series.PriceSeries, seed int64) (*GeometricBrownianMotion, error) {
	if history == nil || history.Len() < 2 {
		return nil, ErrInsufficientHistory
	}
	mean, std := indicator.MeanStd(indicator.LogReturns(history.Prices()))
	if math.IsNaN(std) {
		// A single return carries no dispersion.
		std = 0
	}
	end, last := history.Last()
	return &GeometricBrownianMotion{
		drift: mean - std*std/2,
		sigma: std,
		last:  last,
		end:   end,
		rng:   rand.New(rand.NewSource(seed)),
	}, nil
}

// Drift returns the fitted per-step drift of the log price.
func (g *GeometricBrownianMotion) Drift() float64 { return g.drift }

// Sigma returns the fitted per-step volatility of the log price.
func (g *GeometricBrownianMotion) Sigma() float64 { return g.sigma }

// Simulate returns n paths of length steps. Each path compounds from the last
// historical price and is stamped with consecutive days starting the day
// after history ends.
func (g *GeometricBrownianMotion) Simulate(ctx context.Context, n, steps int) ([]*series.PriceSeries, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSimulations, n)
	}
	if steps < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, steps)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	start := g.end.AddDate(0, 0, 1)
	paths := make([]*series.PriceSeries, n)
	for p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := series.Daily(start, compound(g.rng, g.last, g.drift, g.sigma, steps))
		if err != nil {
			return nil, fmt.Errorf("simulated path %d: %w", p, err)
		}
		paths[p] = s
	}
	return paths, nil
}

func compound(rng *rand.Rand, s0, drift, sigma float64, steps int) []float64 {
	prices := make([]float64, steps)
	prev := s0
	for i := range prices {
		prev *= math.Exp(drift + sigma*rng.NormFloat64())
		prices[i] = prev
	}
	return prices
}

// Synthetic draws a single daily path of length days starting at start. The
// first price is s0; later prices follow the same log-normal steps as
// Simulate.
func Synthetic(start time.Time, s0, drift, sigma float64, days int, seed int64) (*series.PriceSeries, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, days)
	}
	if s0 <= 0 {
		return nil, fmt.Errorf("%w: start price %v", series.ErrNonPositivePrice, s0)
	}
	rng := rand.New(rand.NewSource(seed))
	prices := append([]float64{s0}, compound(rng, s0, drift, sigma, days-1)...)
	return series.Daily(start, prices)
}
