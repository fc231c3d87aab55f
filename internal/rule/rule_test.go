package rule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/rule-search/internal/series"
)

func fixture(t *testing.T, prices ...float64) *series.PriceSeries {
	t.Helper()
	if len(prices) == 0 {
		prices = []float64{10, 15, 14, 16, 18, 11, 13, 9, 17, 19}
	}
	s, err := series.Daily(time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC), prices)
	require.NoError(t, err)
	return s
}

func TestRuleSignals(t *testing.T) {
	prices := fixture(t)
	crash := fixture(t, 10, 10, 10, 10, 10, 5)

	tests := []struct {
		name     string
		rule     TradingRule
		wantBuy  []int
		wantSell []int
	}{
		{"sma 3", NewSMA(prices, 3), []int{3, 8}, []int{5, 7}},
		{"roc 3", NewROC(prices, 3), []int{8}, []int{5}},
		{"sto 3", NewStochastic(prices, 3), []int{8}, []int{5}},
		{"sto 6", NewStochastic(prices, 6), []int{8}, []int{}},
		{"macd 3/7/2", NewMACD(prices, 3, 7, 2), []int{8}, []int{5}},
		{"rsi on rising prices", NewRSI(fixture(t, 1, 2, 3, 4, 5, 6), 3, 30, 70), []int{}, []int{2, 3, 4, 5}},
		{"bollinger", NewBollinger(crash, 3, 1), []int{}, []int{5}},
		{"chandelier", NewChandelier(crash, 3, 1), []int{}, []int{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantBuy, tt.rule.BuySignals().Indices())
			assert.Equal(t, tt.wantSell, tt.rule.SellSignals().Indices())
			assert.Len(t, tt.rule.BuySignals(), tt.rule.Prices().Len())
		})
	}
}

func TestSignalsAreCopies(t *testing.T) {
	r := NewSMA(fixture(t), 3)
	buy := r.BuySignals()
	buy.Clear()
	assert.Equal(t, []int{3, 8}, r.BuySignals().Indices())
}

func TestClampMACD(t *testing.T) {
	tests := []struct {
		in, want [3]int
	}{
		{[3]int{12, 26, 9}, [3]int{12, 26, 9}},
		{[3]int{0, 0, 0}, [3]int{2, 3, 1}},
		{[3]int{5, 2, 0}, [3]int{5, 6, 4}},
		{[3]int{1, 1, 4}, [3]int{5, 6, 4}},
		{[3]int{30, 20, 40}, [3]int{19, 20, 18}},
	}
	for _, tt := range tests {
		f, s, g := clampMACD(tt.in[0], tt.in[1], tt.in[2])
		assert.Equal(t, tt.want, [3]int{f, s, g}, "clampMACD%v", tt.in)
	}
}

func TestParameterClamping(t *testing.T) {
	prices := fixture(t)

	sma0 := NewSMA(prices, 0).(*movingAverage)
	assert.Equal(t, 1, sma0.days)

	roc0 := NewROC(prices, 0).(*rocRule)
	assert.Equal(t, 1, roc0.days)

	rsi := NewRSI(prices, 14, 120, -5).(*rsiRule)
	assert.Equal(t, defaultRSIBuyLevel, rsi.buyLevel)
	assert.Equal(t, defaultRSISellLevel, rsi.sellLevel)
}
