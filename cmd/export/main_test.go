package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/rule-search/internal/datastore"
	"github.com/your-org/rule-search/internal/series"
)

type recordingSaver struct {
	saved []*datastore.PriceData
}

func (r *recordingSaver) SavePrices(_ context.Context, data *datastore.PriceData) (int64, error) {
	r.saved = append(r.saved, data)
	return int64(data.Close.Len()), nil
}

func TestImportPrices(t *testing.T) {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	prices, err := series.Daily(start, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	src := datastore.NewInMemRepository()
	src.Seed(&datastore.PriceData{Ticker: "ABC", Close: prices, Info: map[string]float64{datastore.InfoPriceToBook: 2.5}})

	dst := &recordingSaver{}
	n, err := importPrices(context.Background(), src, dst, "ABC", datastore.DateRange{From: start.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.Len(t, dst.saved, 1)
	assert.Equal(t, []float64{2, 3, 4}, dst.saved[0].Close.Prices())
	assert.Equal(t, 2.5, dst.saved[0].Info[datastore.InfoPriceToBook], "company info is imported with the prices")

	_, err = importPrices(context.Background(), src, dst, "XYZ", datastore.DateRange{})
	assert.ErrorIs(t, err, datastore.ErrTickerNotFound)
}

func TestParseRange(t *testing.T) {
	dr, err := parseRange("2020-01-02", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), dr.From)
	assert.True(t, dr.To.IsZero())

	_, err = parseRange("", "02/01/2020")
	assert.Error(t, err)
}
