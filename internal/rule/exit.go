package rule

import (
	"github.com/your-org/rule-search/internal/indicator"
	"github.com/your-org/rule-search/internal/series"
)

// exitRule only ever sells: it closes positions when the close falls
// through a volatility band.
type exitRule struct {
	base
	days       int
	multiplier int
}

func newExit(name string, prices *series.PriceSeries, days, multiplier int, band func(x []float64, days, multiplier int) []float64) TradingRule {
	days = atLeast(days, 2, 1)
	r := &exitRule{base: newBase(name, prices), days: days, multiplier: multiplier}
	x := prices.Prices()
	r.sell = priceCrossBelow(x, band(x, days, multiplier))
	return r
}

// NewChandelier sells when the close crosses below the highest close of the
// window minus multiplier times the ATR.
func NewChandelier(prices *series.PriceSeries, days, multiplier int) TradingRule {
	return newExit("chandelier", prices, days, multiplier, chandelierBand)
}

// NewBollinger sells when the close crosses below the lower Bollinger band.
func NewBollinger(prices *series.PriceSeries, days, multiplier int) TradingRule {
	return newExit("bollinger", prices, days, multiplier, bollingerBand)
}

func chandelierBand(x []float64, days, multiplier int) []float64 {
	hi := indicator.RollingMax(x, days)
	atr := indicator.ATR(x, days)
	out := make([]float64, len(x))
	for i := range x {
		out[i] = hi[i] - atr[i]*float64(multiplier)
	}
	return out
}

func bollingerBand(x []float64, days, multiplier int) []float64 {
	sma := indicator.SMA(x, days)
	sd := indicator.RollingStd(x, days)
	out := make([]float64, len(x))
	for i := range x {
		out[i] = sma[i] - sd[i]*float64(multiplier)
	}
	return out
}
