// Package rule implements the trading rules searched by the optimizer.
package rule

import (
	"math"

	"github.com/your-org/rule-search/internal/series"
)

// TradingRule produces buy and sell signals aligned with its price series.
type TradingRule interface {
	Name() string
	Prices() *series.PriceSeries
	// BuySignals returns a fresh copy the caller may modify.
	BuySignals() series.Signals
	// SellSignals returns a fresh copy the caller may modify.
	SellSignals() series.Signals
}

// base holds the state shared by every rule variant.
type base struct {
	name   string
	prices *series.PriceSeries
	buy    series.Signals
	sell   series.Signals
}

func newBase(name string, prices *series.PriceSeries) base {
	return base{
		name:   name,
		prices: prices,
		buy:    series.NewSignals(prices.Len()),
		sell:   series.NewSignals(prices.Len()),
	}
}

func (b *base) Name() string                { return b.name }
func (b *base) Prices() *series.PriceSeries { return b.prices }
func (b *base) BuySignals() series.Signals  { return b.buy.Clone() }
func (b *base) SellSignals() series.Signals { return b.sell.Clone() }

// crossAbove marks days where a was below b on the previous day and is at
// or above it today.
func crossAbove(a, b []float64) series.Signals {
	out := series.NewSignals(len(a))
	for i := 1; i < len(a); i++ {
		out[i] = a[i-1] < b[i-1] && a[i] >= b[i]
	}
	return out
}

// crossBelow is the mirror of crossAbove.
func crossBelow(a, b []float64) series.Signals {
	out := series.NewSignals(len(a))
	for i := 1; i < len(a); i++ {
		out[i] = a[i-1] > b[i-1] && a[i] <= b[i]
	}
	return out
}

// priceCrossAbove marks days where the previous close was below the current
// level and the current close is at or above it.
func priceCrossAbove(x, level []float64) series.Signals {
	out := series.NewSignals(len(x))
	for i := 1; i < len(x); i++ {
		out[i] = x[i-1] < level[i] && x[i] >= level[i]
	}
	return out
}

// priceCrossBelow is the mirror of priceCrossAbove.
func priceCrossBelow(x, level []float64) series.Signals {
	out := series.NewSignals(len(x))
	for i := 1; i < len(x); i++ {
		out[i] = x[i-1] > level[i] && x[i] <= level[i]
	}
	return out
}

// threshold marks days where pred holds for a defined value.
func threshold(x []float64, pred func(float64) bool) series.Signals {
	out := series.NewSignals(len(x))
	for i, v := range x {
		out[i] = !math.IsNaN(v) && pred(v)
	}
	return out
}

// atLeast returns v, or def when v < minimum.
func atLeast(v, minimum, def int) int {
	if v < minimum {
		return def
	}
	return v
}
