package rule

import (
	"github.com/your-org/rule-search/internal/indicator"
	"github.com/your-org/rule-search/internal/series"
)

const (
	defaultRSIBuyLevel  = 30
	defaultRSISellLevel = 70
)

type rocRule struct {
	base
	days int
}

// NewROC buys when the rate of change turns positive and sells when it
// turns negative. Non-positive windows become 1.
func NewROC(prices *series.PriceSeries, days int) TradingRule {
	days = atLeast(days, 1, 1)
	r := &rocRule{base: newBase("roc", prices), days: days}
	roc := indicator.ROC(prices.Prices(), days)
	for i := 1; i < len(roc); i++ {
		r.buy[i] = roc[i-1] < 0 && roc[i] > 0
		r.sell[i] = roc[i-1] > 0 && roc[i] < 0
	}
	return r
}

type rsiRule struct {
	base
	days                int
	buyLevel, sellLevel int
}

// NewRSI buys while the RSI is at or below buyLevel and sells while it is at
// or above sellLevel. Levels outside 0..100 fall back to 30 and 70.
func NewRSI(prices *series.PriceSeries, days, buyLevel, sellLevel int) TradingRule {
	days = atLeast(days, 2, 1)
	if buyLevel < 0 || buyLevel > 100 {
		buyLevel = defaultRSIBuyLevel
	}
	if sellLevel < 0 || sellLevel > 100 {
		sellLevel = defaultRSISellLevel
	}
	r := &rsiRule{base: newBase("rsi", prices), days: days, buyLevel: buyLevel, sellLevel: sellLevel}
	rsi := indicator.RSI(prices.Prices(), days)
	r.buy = threshold(rsi, func(v float64) bool { return v <= float64(buyLevel) })
	r.sell = threshold(rsi, func(v float64) bool { return v >= float64(sellLevel) })
	return r
}

type stochasticRule struct {
	base
	days int
}

// NewStochastic buys when %K crosses its days-long average %D from below and
// sells on the opposite cross. Non-positive windows become 1.
func NewStochastic(prices *series.PriceSeries, days int) TradingRule {
	days = atLeast(days, 1, 1)
	r := &stochasticRule{base: newBase("sto", prices), days: days}
	k := indicator.StochasticK(prices.Prices())
	d := indicator.RollingMean(k, days)
	r.buy = crossAbove(k, d)
	r.sell = crossBelow(k, d)
	return r
}
