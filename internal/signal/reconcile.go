package signal

import (
	"fmt"

	"github.com/your-org/rule-search/internal/series"
)

// NoForcedClose marks a reconciliation that kept every opening signal.
const NoForcedClose = -1

// Reconciled is a conflict-free, strictly alternating pair of open and close
// series in which every open has exactly one later close.
type Reconciled struct {
	Open  series.Signals
	Close series.Signals
	// ForcedClose is the index of the last close when trailing opens were
	// discarded, or NoForcedClose.
	ForcedClose int
}

// Trades returns the number of paired trades.
func (r Reconciled) Trades() int { return r.Open.Count() }

// Reconcile turns raw open/close signals into paired trades. The inputs are
// copied and never modified. For long trading pass (buy, sell); for short
// trading pass (sell, buy).
//
// Reconcile panics if the result is not paired one to one, which can only
// happen through a defect in this function.
func Reconcile(opens, closes series.Signals) (Reconciled, error) {
	n := len(opens)
	if n == 0 {
		return Reconciled{}, ErrEmptySignals
	}
	if len(closes) != n {
		return Reconciled{}, fmt.Errorf("%w: %d open values, %d close values", ErrLengthMismatch, n, len(closes))
	}

	res := Reconciled{
		Open:        opens.Clone(),
		Close:       closes.Clone(),
		ForcedClose: NoForcedClose,
	}
	o, c := res.Open, res.Close

	// Ambiguous days carry no decision.
	for i := range o {
		if o[i] && c[i] {
			o[i], c[i] = false, false
		}
	}

	// An open on the final day can never be closed.
	o[n-1] = false

	if !o.Any() {
		c.Clear()
		return res, nil
	}

	collapse(o, c)

	for first := c.First(); first >= 0 && first < o.First(); first = c.First() {
		c[first] = false
	}

	if !c.Any() {
		o.Clear()
		return res, nil
	}

	lastClose := c.LastIndex()
	if lastClose < o.LastIndex() {
		for i := lastClose; i < n; i++ {
			o[i] = false
		}
		res.ForcedClose = lastClose
	}

	if o.Count() != c.Count() {
		panic(fmt.Sprintf("signal: reconciled %d opens against %d closes", o.Count(), c.Count()))
	}
	return res, nil
}

// collapse keeps only the first signal of every run of same-type signals so
// that opens and closes strictly alternate.
func collapse(opens, closes series.Signals) {
	last := SignalNone
	for i := range opens {
		switch At(opens, closes, i) {
		case SignalBuy:
			if last == SignalBuy {
				opens[i] = false
				continue
			}
			last = SignalBuy
		case SignalSell:
			if last == SignalSell {
				closes[i] = false
				continue
			}
			last = SignalSell
		}
	}
}
