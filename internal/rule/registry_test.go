package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	d, err := Lookup("rsi")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 7, 7}, d.BitWidths)
	assert.False(t, d.AlwaysActive)

	_, err = Lookup("hurst")
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestNamesAndDefaults(t *testing.T) {
	assert.Equal(t, []string{"sma", "ema", "roc", "rsi", "macd", "sto", "chandelier", "bollinger"}, Names())

	prices := fixture(t)
	for _, d := range Defaults() {
		t.Run(d.Name, func(t *testing.T) {
			assert.Len(t, d.Defaults, len(d.BitWidths))
			assert.Equal(t, d.Name == "chandelier" || d.Name == "bollinger", d.AlwaysActive)

			r := d.Build(prices, []int{1, 2, 3, 4, 5})
			assert.Equal(t, d.Name, r.Name())
			assert.Len(t, r.SellSignals(), prices.Len())
		})
	}
}

func TestDefaultsReturnsCopy(t *testing.T) {
	defs := Defaults()
	defs[0].Name = "changed"
	assert.Equal(t, "sma", Names()[0])
}
