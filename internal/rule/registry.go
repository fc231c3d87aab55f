package rule

import (
	"errors"
	"fmt"

	"github.com/your-org/rule-search/internal/series"
)

// ErrUnknownRule is returned by Lookup for unregistered names.
var ErrUnknownRule = errors.New("unknown trading rule")

// Definition describes a rule variant to the search: how many bits each
// parameter takes and how to build the rule from decoded parameters.
type Definition struct {
	Name      string
	BitWidths []int
	// AlwaysActive rules ignore their control bit. Stop-loss style exits
	// are registered this way.
	AlwaysActive bool
	// Defaults are used when New receives the wrong number of parameters.
	Defaults []int
	New      func(prices *series.PriceSeries, params []int) TradingRule
}

// Build instantiates the rule on prices.
func (d Definition) Build(prices *series.PriceSeries, params []int) TradingRule {
	if len(params) != len(d.BitWidths) {
		params = d.Defaults
	}
	return d.New(prices, params)
}

var registry = []Definition{
	{
		Name:      "sma",
		BitWidths: []int{8},
		Defaults:  []int{200},
		New:       func(p *series.PriceSeries, v []int) TradingRule { return NewSMA(p, v[0]) },
	},
	{
		Name:      "ema",
		BitWidths: []int{8},
		Defaults:  []int{200},
		New:       func(p *series.PriceSeries, v []int) TradingRule { return NewEMA(p, v[0]) },
	},
	{
		Name:      "roc",
		BitWidths: []int{8},
		Defaults:  []int{12},
		New:       func(p *series.PriceSeries, v []int) TradingRule { return NewROC(p, v[0]) },
	},
	{
		Name:      "rsi",
		BitWidths: []int{8, 7, 7},
		Defaults:  []int{200, defaultRSIBuyLevel, defaultRSISellLevel},
		New:       func(p *series.PriceSeries, v []int) TradingRule { return NewRSI(p, v[0], v[1], v[2]) },
	},
	{
		Name:      "macd",
		BitWidths: []int{6, 6, 6},
		Defaults:  []int{12, 26, 9},
		New:       func(p *series.PriceSeries, v []int) TradingRule { return NewMACD(p, v[0], v[1], v[2]) },
	},
	{
		Name:      "sto",
		BitWidths: []int{6},
		Defaults:  []int{14},
		New:       func(p *series.PriceSeries, v []int) TradingRule { return NewStochastic(p, v[0]) },
	},
	{
		Name:         "chandelier",
		BitWidths:    []int{6, 3},
		AlwaysActive: true,
		Defaults:     []int{22, 3},
		New:          func(p *series.PriceSeries, v []int) TradingRule { return NewChandelier(p, v[0], v[1]) },
	},
	{
		Name:         "bollinger",
		BitWidths:    []int{6, 3},
		AlwaysActive: true,
		Defaults:     []int{20, 2},
		New:          func(p *series.PriceSeries, v []int) TradingRule { return NewBollinger(p, v[0], v[1]) },
	},
}

// Lookup returns the definition registered under name.
func Lookup(name string) (Definition, error) {
	for _, d := range registry {
		if d.Name == name {
			return d, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownRule, name)
}

// Names lists the registered rules in registration order.
func Names() []string {
	out := make([]string, len(registry))
	for i, d := range registry {
		out[i] = d.Name
	}
	return out
}

// Defaults returns every registered definition.
func Defaults() []Definition {
	out := make([]Definition, len(registry))
	copy(out, registry)
	return out
}
