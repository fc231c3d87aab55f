// Package signal merges rule signals and reconciles them into paired trades.
package signal

import (
	"errors"
	"fmt"

	"github.com/your-org/rule-search/internal/series"
)

var (
	// ErrEmptySignals is returned when a signal series has no observations.
	ErrEmptySignals = errors.New("signal series is empty")
	// ErrLengthMismatch is returned when signal series are not aligned.
	ErrLengthMismatch = errors.New("signal series differ in length")
)

// SignalType represents the type of trading signal.
type SignalType int

const (
	// SignalNone indicates no signal.
	SignalNone SignalType = iota
	// SignalBuy indicates a buy signal.
	SignalBuy
	// SignalSell indicates a sell signal.
	SignalSell
)

// String returns the string representation of SignalType.
func (s SignalType) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	case SignalNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// At returns the signal type at index i of a buy/sell pair.
// A day carrying both signals reports SignalNone.
func At(buy, sell series.Signals, i int) SignalType {
	switch {
	case buy[i] && sell[i]:
		return SignalNone
	case buy[i]:
		return SignalBuy
	case sell[i]:
		return SignalSell
	default:
		return SignalNone
	}
}

// Aggregate ORs the buy and sell series of all active rules into one pair.
// Every series must share the same length.
func Aggregate(buys, sells []series.Signals) (series.Signals, series.Signals, error) {
	if len(buys) == 0 || len(buys) != len(sells) {
		return nil, nil, fmt.Errorf("%w: %d buy series, %d sell series", ErrLengthMismatch, len(buys), len(sells))
	}
	n := len(buys[0])
	if n == 0 {
		return nil, nil, ErrEmptySignals
	}

	buy := series.NewSignals(n)
	sell := series.NewSignals(n)
	for i := range buys {
		if len(buys[i]) != n || len(sells[i]) != n {
			return nil, nil, fmt.Errorf("%w: rule %d has %d/%d values, want %d", ErrLengthMismatch, i, len(buys[i]), len(sells[i]), n)
		}
		buy.Or(buys[i])
		sell.Or(sells[i])
	}
	return buy, sell, nil
}
