package rule

import (
	"github.com/your-org/rule-search/internal/indicator"
	"github.com/your-org/rule-search/internal/series"
)

// movingAverage buys when the close crosses its moving average from below
// and sells when it crosses from above.
type movingAverage struct {
	base
	days int
}

// NewSMA builds the simple moving average rule. Windows below 2 become 1.
func NewSMA(prices *series.PriceSeries, days int) TradingRule {
	days = atLeast(days, 2, 1)
	r := &movingAverage{base: newBase("sma", prices), days: days}
	x := prices.Prices()
	m := indicator.SMA(x, days)
	r.buy = priceCrossAbove(x, m)
	r.sell = priceCrossBelow(x, m)
	return r
}

// NewEMA builds the exponential moving average rule. Spans below 2 become 1.
func NewEMA(prices *series.PriceSeries, days int) TradingRule {
	days = atLeast(days, 2, 1)
	r := &movingAverage{base: newBase("ema", prices), days: days}
	x := prices.Prices()
	m := indicator.EMA(x, days)
	r.buy = priceCrossAbove(x, m)
	r.sell = priceCrossBelow(x, m)
	return r
}

type macdRule struct {
	base
	fast, slow, signal int
}

// NewMACD builds the MACD crossover rule. The spans are repaired so that
// signal < fast < slow always holds.
func NewMACD(prices *series.PriceSeries, fast, slow, signal int) TradingRule {
	fast, slow, signal = clampMACD(fast, slow, signal)
	r := &macdRule{base: newBase("macd", prices), fast: fast, slow: slow, signal: signal}
	macd, sig := indicator.MACD(prices.Prices(), fast, slow, signal)
	r.buy = crossAbove(macd, sig)
	r.sell = crossBelow(macd, sig)
	return r
}

func clampMACD(fast, slow, signal int) (int, int, int) {
	switch {
	case slow >= 3:
	case fast >= 2:
		slow = fast + 1
	case signal >= 1:
		slow = signal + 2
	default:
		slow = 3
	}
	if fast < 2 || fast >= slow {
		fast = slow - 1
	}
	if signal < 1 || signal >= fast {
		signal = fast - 1
	}
	return fast, slow, signal
}
