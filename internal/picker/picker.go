// Package picker ranks tickers by company metadata.
package picker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/your-org/rule-search/internal/datastore"
)

var (
	// ErrUnknownPicker is returned by New for unregistered names.
	ErrUnknownPicker = errors.New("unknown stock picker")
	// ErrMissingInfo is returned when a ticker lacks the metric a picker needs.
	ErrMissingInfo = errors.New("ticker has no usable value for metric")
)

// StockPicker scores a ticker from its price data. Lower scores rank first.
type StockPicker interface {
	Name() string
	Score(data *datastore.PriceData) (float64, error)
}

// PriceToBook scores tickers by their price to book ratio. Tickers with a
// non-positive ratio have a negative book value and are not scored.
type PriceToBook struct{}

// Name implements StockPicker.
func (PriceToBook) Name() string { return datastore.InfoPriceToBook }

// Score implements StockPicker.
func (PriceToBook) Score(data *datastore.PriceData) (float64, error) {
	v, ok := data.Info[datastore.InfoPriceToBook]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%w: %s %s", ErrMissingInfo, data.Ticker, datastore.InfoPriceToBook)
	}
	return v, nil
}

var registry = map[string]StockPicker{
	datastore.InfoPriceToBook: PriceToBook{},
}

// New returns the picker registered under name.
func New(name string) (StockPicker, error) {
	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPicker, name)
	}
	return p, nil
}

// Pick is a scored ticker.
type Pick struct {
	Ticker string
	Score  float64
}

// Rank fetches every ticker from provider and returns the scored tickers in
// ascending score order, ties broken by ticker. Tickers that are unknown,
// have no prices in dr, or lack the metric are skipped with a warning. Any
// other error stops the ranking. workers <= 0 uses GOMAXPROCS.
func Rank(ctx context.Context, provider datastore.PriceProvider, p StockPicker, tickers []string, dr datastore.DateRange, workers int, logger *zap.Logger) ([]Pick, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	scores := make([]float64, len(tickers))
	scored := make([]bool, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ticker := range tickers {
		g.Go(func() error {
			data, err := provider.FetchPrices(gctx, ticker, dr)
			if err == nil {
				scores[i], err = p.Score(data)
			}
			switch {
			case err == nil:
				scored[i] = true
			case errors.Is(err, datastore.ErrTickerNotFound), errors.Is(err, datastore.ErrNoPrices), errors.Is(err, ErrMissingInfo):
				logger.Warn("Skipping ticker", zap.String("ticker", ticker), zap.String("picker", p.Name()), zap.Error(err))
			default:
				return fmt.Errorf("score %s: %w", ticker, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	picks := make([]Pick, 0, len(tickers))
	for i, ticker := range tickers {
		if scored[i] {
			picks = append(picks, Pick{Ticker: ticker, Score: scores[i]})
		}
	}
	sort.Slice(picks, func(i, j int) bool {
		if picks[i].Score != picks[j].Score {
			return picks[i].Score < picks[j].Score
		}
		return picks[i].Ticker < picks[j].Ticker
	})
	logger.Info("Ranked tickers", zap.String("picker", p.Name()), zap.Int("requested", len(tickers)), zap.Int("scored", len(picks)))
	return picks, nil
}
