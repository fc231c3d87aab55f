package position

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/rule-search/internal/series"
)

func TestParseSide(t *testing.T) {
	s, err := ParseSide("Short")
	require.NoError(t, err)
	assert.Equal(t, Short, s)

	s, err = ParseSide("")
	require.NoError(t, err)
	assert.Equal(t, Long, s)

	_, err = ParseSide("sideways")
	assert.Error(t, err)
	assert.Equal(t, "LONG", Long.String())
}

func TestPair(t *testing.T) {
	start := time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)
	prices, err := series.Daily(start, []float64{10, 15, 14, 16, 18})
	require.NoError(t, err)

	trades, err := Pair(Long, series.Signals{true, false, true, false, false}, series.Signals{false, true, false, false, true}, prices)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, start, trades[0].Open)
	assert.Equal(t, 5.0, trades[0].PnL())
	assert.InDelta(t, 0.5, trades[0].Return(), 1e-12)
	assert.Equal(t, 2.0, trades[1].HoldingDays())

	short := Trade{Side: Short, OpenPrice: 18, ClosePrice: 12}
	assert.Equal(t, 6.0, short.PnL())

	_, err = Pair(Long, series.Signals{false, true, false, false, false}, series.Signals{true, false, false, false, false}, prices)
	assert.Error(t, err)

	_, err = Pair(Long, series.Signals{true}, series.Signals{false}, prices)
	assert.Error(t, err)
}
