package datastore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCSVProvider_FetchPrices(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "AAPL.csv"), `date,close,dividend,split
2020-01-06,12,,
2020-01-02,10,0,0
2020-01-03,11,0.25,
not-a-date,13,,
2020-01-07,oops,,
2020-01-08,14,0,2
`)
	p := NewCSVProvider(dir)
	ctx := context.Background()

	t.Run("full history", func(t *testing.T) {
		data, err := p.FetchPrices(ctx, "aapl", DateRange{})
		require.NoError(t, err)
		assert.Equal(t, "AAPL", data.Ticker)
		assert.Equal(t, []float64{10, 11, 12, 14}, data.Close.Prices(), "rows are sorted and bad lines skipped")
		assert.Equal(t, []Action{{Time: day(3), Value: 0.25}}, data.Dividends)
		assert.Equal(t, []Action{{Time: day(8), Value: 2}}, data.Splits)
	})

	t.Run("range", func(t *testing.T) {
		data, err := p.FetchPrices(ctx, "AAPL", DateRange{From: day(3), To: day(6)})
		require.NoError(t, err)
		assert.Equal(t, []float64{11, 12}, data.Close.Prices())
	})

	t.Run("empty range", func(t *testing.T) {
		_, err := p.FetchPrices(ctx, "AAPL", DateRange{From: day(20)})
		assert.ErrorIs(t, err, ErrNoPrices)
	})

	t.Run("unknown ticker", func(t *testing.T) {
		_, err := p.FetchPrices(ctx, "MSFT", DateRange{})
		assert.ErrorIs(t, err, ErrTickerNotFound)
	})

	t.Run("header only", func(t *testing.T) {
		writeFile(t, filepath.Join(dir, "EMPTY.csv"), "date,close\n")
		_, err := p.FetchPrices(ctx, "EMPTY", DateRange{})
		assert.ErrorIs(t, err, ErrNoPrices)
	})
}

func TestCSVProvider_SaveAndReload(t *testing.T) {
	src := NewInMemRepository()
	src.Seed(sample(t))
	data, err := src.FetchPrices(context.Background(), "SPY", DateRange{})
	require.NoError(t, err)

	p := NewCSVProvider(filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, p.SavePrices(data))

	got, err := p.FetchPrices(context.Background(), "SPY", DateRange{})
	require.NoError(t, err)
	assert.True(t, data.Close.Equal(got.Close))
	assert.Equal(t, data.Dividends, got.Dividends)
	assert.Equal(t, data.Splits, got.Splits)
	assert.Equal(t, data.Info, got.Info)
}

func TestCSVProvider_Info(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "IBM.csv"), "date,close\n2020-01-02,10\n")
	writeFile(t, filepath.Join(dir, "IBM.info.csv"), "key,value\nprice_to_book,6.2\nbeta,oops\n,1\n")
	writeFile(t, filepath.Join(dir, "KO.csv"), "date,close\n2020-01-02,50\n")
	p := NewCSVProvider(dir)
	ctx := context.Background()

	data, err := p.FetchPrices(ctx, "ibm", DateRange{})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{InfoPriceToBook: 6.2}, data.Info, "bad info lines are skipped")

	data, err = p.FetchPrices(ctx, "KO", DateRange{})
	require.NoError(t, err)
	assert.Nil(t, data.Info)

	symbols, err := p.Tickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"IBM", "KO"}, symbols)

	_, err = NewCSVProvider(filepath.Join(dir, "missing")).Tickers(ctx)
	assert.Error(t, err)
}

func TestWriteInfoCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInfoCSV(&buf, map[string]float64{InfoPriceToBook: 1.5, "beta": 0.9}))
	assert.Equal(t, "key,value\nbeta,0.9\nprice_to_book,1.5\n", buf.String())
}

func TestWritePricesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePricesCSV(&buf, sample(t)))
	assert.Equal(t, "date,close,dividend,split\n"+
		"2020-01-02,10,0,0\n"+
		"2020-01-03,10.5,0.1,0\n"+
		"2020-01-06,11,0,0\n", buf.String())
}
