package position

import (
	"fmt"
	"strings"
	"time"

	"github.com/your-org/rule-search/internal/series"
)

// Side is the direction of a position.
type Side int

const (
	// Long positions open with a buy and close with a sell.
	Long Side = iota
	// Short positions open with a sell and close with a buy.
	Short
)

// String returns the string representation of Side.
func (s Side) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "UNKNOWN"
	}
}

// ParseSide converts "long" or "short" (any case) to a Side.
func ParseSide(v string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "long":
		return Long, nil
	case "short":
		return Short, nil
	default:
		return Long, fmt.Errorf("unknown position side %q", v)
	}
}

// Trade is one closed round trip.
type Trade struct {
	Side       Side
	Open       time.Time
	Close      time.Time
	OpenPrice  float64
	ClosePrice float64
}

// PnL returns the gross profit of the trade before costs.
func (t Trade) PnL() float64 {
	if t.Side == Short {
		return t.OpenPrice - t.ClosePrice
	}
	return t.ClosePrice - t.OpenPrice
}

// Return returns the gross relative return of the trade.
func (t Trade) Return() float64 {
	if t.OpenPrice == 0 {
		return 0
	}
	return t.PnL() / t.OpenPrice
}

// HoldingDays returns the holding period in (possibly fractional) days.
func (t Trade) HoldingDays() float64 {
	return t.Close.Sub(t.Open).Hours() / 24
}

// Pair zips reconciled open and close signals into trades. The k-th open is
// matched with the k-th close; both series must already be paired one to one.
func Pair(side Side, opens, closes series.Signals, prices *series.PriceSeries) ([]Trade, error) {
	if len(opens) != prices.Len() || len(closes) != prices.Len() {
		return nil, fmt.Errorf("signals of length %d/%d do not match %d prices", len(opens), len(closes), prices.Len())
	}
	oi, ci := opens.Indices(), closes.Indices()
	if len(oi) != len(ci) {
		return nil, fmt.Errorf("%d opens cannot be paired with %d closes", len(oi), len(ci))
	}

	trades := make([]Trade, 0, len(oi))
	for k := range oi {
		if oi[k] >= ci[k] || (k > 0 && ci[k-1] >= oi[k]) {
			return nil, fmt.Errorf("trade %d is not chronological: open at %d, close at %d", k, oi[k], ci[k])
		}
		trades = append(trades, Trade{
			Side:       side,
			Open:       prices.Time(oi[k]),
			Close:      prices.Time(ci[k]),
			OpenPrice:  prices.Price(oi[k]),
			ClosePrice: prices.Price(ci[k]),
		})
	}
	return trades, nil
}
