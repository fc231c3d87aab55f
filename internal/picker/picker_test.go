package picker

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/your-org/rule-search/internal/datastore"
	"github.com/your-org/rule-search/internal/series"
)

func priced(t *testing.T, ticker string, info map[string]float64) *datastore.PriceData {
	t.Helper()
	prices, err := series.Daily(time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), []float64{10, 11, 12})
	require.NoError(t, err)
	return &datastore.PriceData{Ticker: ticker, Close: prices, Info: info}
}

func TestPriceToBook_Score(t *testing.T) {
	tests := []struct {
		name    string
		info    map[string]float64
		want    float64
		wantErr bool
	}{
		{"value", map[string]float64{datastore.InfoPriceToBook: 1.25}, 1.25, false},
		{"missing", map[string]float64{"beta": 1}, 0, true},
		{"no info", nil, 0, true},
		{"negative book value", map[string]float64{datastore.InfoPriceToBook: -3}, 0, true},
		{"nan", map[string]float64{datastore.InfoPriceToBook: math.NaN()}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PriceToBook{}.Score(priced(t, "X", tt.info))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingInfo)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	p, err := New("price_to_book")
	require.NoError(t, err)
	assert.Equal(t, datastore.InfoPriceToBook, p.Name())

	_, err = New("dividend_yield")
	assert.ErrorIs(t, err, ErrUnknownPicker)
}

func TestRank(t *testing.T) {
	repo := datastore.NewInMemRepository()
	repo.Seed(
		priced(t, "KO", map[string]float64{datastore.InfoPriceToBook: 10.5}),
		priced(t, "BAC", map[string]float64{datastore.InfoPriceToBook: 1.1}),
		priced(t, "JPM", map[string]float64{datastore.InfoPriceToBook: 1.1}),
		priced(t, "TSLA", nil),
	)
	core, logs := observer.New(zapcore.WarnLevel)

	picks, err := Rank(context.Background(), repo, PriceToBook{}, []string{"KO", "JPM", "TSLA", "NOPE", "BAC"}, datastore.DateRange{}, 2, zap.New(core))
	require.NoError(t, err)

	want := []Pick{{"BAC", 1.1}, {"JPM", 1.1}, {"KO", 10.5}}
	if diff := cmp.Diff(want, picks); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, logs.FilterMessage("Skipping ticker").Len())
}

type failingProvider struct{ err error }

func (f failingProvider) FetchPrices(context.Context, string, datastore.DateRange) (*datastore.PriceData, error) {
	return nil, f.err
}

func TestRank_ProviderError(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := Rank(context.Background(), failingProvider{err: boom}, PriceToBook{}, []string{"KO"}, datastore.DateRange{}, 0, nil)
	assert.ErrorIs(t, err, boom)

	picks, err := Rank(context.Background(), failingProvider{err: datastore.ErrNoPrices}, PriceToBook{}, []string{"KO"}, datastore.DateRange{}, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, picks)
}
