package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/rule-search/internal/series"
)

func TestSignalType_String(t *testing.T) {
	assert.Equal(t, "BUY", SignalBuy.String())
	assert.Equal(t, "SELL", SignalSell.String())
	assert.Equal(t, "NONE", SignalNone.String())
	assert.Equal(t, "UNKNOWN", SignalType(9).String())
}

func TestAt(t *testing.T) {
	buy := series.Signals{true, false, true, false}
	sell := series.Signals{false, true, true, false}
	assert.Equal(t, SignalBuy, At(buy, sell, 0))
	assert.Equal(t, SignalSell, At(buy, sell, 1))
	assert.Equal(t, SignalNone, At(buy, sell, 2))
	assert.Equal(t, SignalNone, At(buy, sell, 3))
}

func TestAggregate(t *testing.T) {
	t.Run("ors every rule", func(t *testing.T) {
		buy, sell, err := Aggregate(
			[]series.Signals{{true, false, false}, {false, false, true}},
			[]series.Signals{{false, false, false}, {false, true, false}},
		)
		require.NoError(t, err)
		assert.Equal(t, series.Signals{true, false, true}, buy)
		assert.Equal(t, series.Signals{false, true, false}, sell)
	})

	t.Run("inputs are not modified", func(t *testing.T) {
		first := series.Signals{true, false}
		_, _, err := Aggregate([]series.Signals{first, {false, true}}, []series.Signals{{false, false}, {false, false}})
		require.NoError(t, err)
		assert.Equal(t, series.Signals{true, false}, first)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, _, err := Aggregate([]series.Signals{{true}, {true, false}}, []series.Signals{{false}, {false, false}})
		assert.ErrorIs(t, err, ErrLengthMismatch)

		_, _, err = Aggregate([]series.Signals{{true}}, nil)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := Aggregate([]series.Signals{{}}, []series.Signals{{}})
		assert.ErrorIs(t, err, ErrEmptySignals)
	})
}
