package datastore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// InMemRepository is an in-memory PriceProvider for tests and simulated data.
type InMemRepository struct {
	mu   sync.RWMutex
	data map[string]*PriceData
}

// NewInMemRepository creates a new InMemRepository.
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{data: make(map[string]*PriceData)}
}

// Seed stores data under its ticker, replacing earlier data.
func (r *InMemRepository) Seed(data ...*PriceData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range data {
		r.data[strings.ToUpper(d.Ticker)] = d
	}
}

// FetchPrices implements PriceProvider.
func (r *InMemRepository) FetchPrices(ctx context.Context, ticker string, dr DateRange) (*PriceData, error) {
	r.mu.RLock()
	d, ok := r.data[strings.ToUpper(ticker)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	var rows []priceRow
	for _, row := range rowsOf(d) {
		if dr.Contains(row.date) {
			rows = append(rows, row)
		}
	}
	out, err := assemble(d.Ticker, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	return out.withInfo(d.Info), nil
}

// Tickers lists the stored ticker symbols.
func (r *InMemRepository) Tickers(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	symbols := make([]string, 0, len(r.data))
	for s := range r.data {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols, nil
}
