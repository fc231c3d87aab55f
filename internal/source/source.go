// Package source opens the configured price provider.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/rule-search/internal/config"
	"github.com/your-org/rule-search/internal/datastore"
	"github.com/your-org/rule-search/internal/montecarlo"
)

// syntheticStart is the first day of generated history when data.from is empty.
var syntheticStart = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

// Lister is implemented by providers that can enumerate their tickers.
type Lister interface {
	Tickers(ctx context.Context) ([]string, error)
}

// Open returns the provider selected by cfg.Data.Source and a function that
// releases it. The postgres source is migrated before use. The memory source
// holds a synthetic history for cfg.Ticker.
func Open(ctx context.Context, cfg *config.Config) (datastore.PriceProvider, func(), error) {
	switch cfg.Data.Source {
	case config.SourceCSV:
		return datastore.NewCSVProvider(cfg.Data.CSVDir), func() {}, nil
	case config.SourcePostgres:
		if err := datastore.Migrate(cfg.Database.URL("pgx5")); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.New(ctx, cfg.Database.URL("postgres"))
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		return datastore.NewPostgresRepository(pool), pool.Close, nil
	case config.SourceMemory:
		syn := cfg.Data.Synthetic
		from, _, err := cfg.Data.Range()
		if err != nil {
			return nil, nil, err
		}
		if from.IsZero() {
			from = syntheticStart
		}
		prices, err := montecarlo.Synthetic(from, syn.Price, syn.Drift, syn.Sigma, syn.Days, syn.Seed)
		if err != nil {
			return nil, nil, err
		}
		repo := datastore.NewInMemRepository()
		repo.Seed(&datastore.PriceData{Ticker: cfg.Ticker, Close: prices})
		return repo, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown data source %q", config.ErrInvalidConfig, cfg.Data.Source)
	}
}

// Tickers returns want when it is non-empty and otherwise every ticker the
// provider lists.
func Tickers(ctx context.Context, provider datastore.PriceProvider, want []string) ([]string, error) {
	if len(want) > 0 {
		return want, nil
	}
	l, ok := provider.(Lister)
	if !ok {
		return nil, fmt.Errorf("%w: %T cannot list tickers, name them explicitly", config.ErrInvalidConfig, provider)
	}
	return l.Tickers(ctx)
}
