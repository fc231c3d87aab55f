// Package pnl prices reconciled trades.
package pnl

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/rule-search/internal/position"
	"github.com/your-org/rule-search/internal/series"
	"github.com/your-org/rule-search/internal/signal"
)

// DefaultTransactionRate is charged on the price of every executed order.
const DefaultTransactionRate = 0.0025

// holdingDayCount is the money-market day count used for borrowing fees.
const holdingDayCount = 360

// ErrInvalidRate is returned for negative cost rates.
var ErrInvalidRate = errors.New("cost rates must not be negative")

// Costs are the proportional trading costs.
type Costs struct {
	TransactionRate float64
	// HoldingFeeRate is the annual borrowing fee applied to short positions.
	HoldingFeeRate float64
}

// DefaultCosts returns the standard cost model.
func DefaultCosts() Costs {
	return Costs{TransactionRate: DefaultTransactionRate}
}

// Validate checks that both rates are non-negative.
func (c Costs) Validate() error {
	if c.TransactionRate < 0 || c.HoldingFeeRate < 0 {
		return fmt.Errorf("%w: transaction %v, holding %v", ErrInvalidRate, c.TransactionRate, c.HoldingFeeRate)
	}
	return nil
}

// TradeCosts returns the transaction and holding costs of a single trade.
// Holding costs only apply to short trades.
func (c Costs) TradeCosts(t position.Trade) (transaction, holding float64) {
	transaction = c.TransactionRate * (t.OpenPrice + t.ClosePrice)
	if t.Side == position.Short {
		holding = t.HoldingDays() * t.OpenPrice * c.HoldingFeeRate / holdingDayCount
	}
	return transaction, holding
}

// Result is the outcome of pricing one signal pair.
type Result struct {
	NetProfit        float64
	TransactionCosts float64
	HoldingCosts     float64
	Trades           []position.Trade
	// ForcedClose is the time of the last close when trailing opens were
	// discarded. The zero time means nothing was discarded.
	ForcedClose time.Time
}

// HasForcedClose reports whether trailing opens were discarded.
func (r Result) HasForcedClose() bool { return !r.ForcedClose.IsZero() }

// Calculator handles PnL calculations.
type Calculator struct {
	costs Costs
	side  position.Side
}

// NewCalculator creates a new PnL Calculator.
func NewCalculator(costs Costs, side position.Side) *Calculator {
	return &Calculator{costs: costs, side: side}
}

// Costs returns the cost model of the calculator.
func (c *Calculator) Costs() Costs { return c.costs }

// Side returns the trading direction of the calculator.
func (c *Calculator) Side() position.Side { return c.side }

// NetProfit reconciles the aggregated buy and sell signals and prices the
// resulting trades against prices.
func (c *Calculator) NetProfit(buy, sell series.Signals, prices *series.PriceSeries) (Result, error) {
	if len(buy) != prices.Len() || len(sell) != prices.Len() {
		return Result{}, fmt.Errorf("%w: %d/%d signals for %d prices", signal.ErrLengthMismatch, len(buy), len(sell), prices.Len())
	}

	opens, closes := buy, sell
	if c.side == position.Short {
		opens, closes = sell, buy
	}
	rec, err := signal.Reconcile(opens, closes)
	if err != nil {
		return Result{}, err
	}

	trades, err := position.Pair(c.side, rec.Open, rec.Close, prices)
	if err != nil {
		return Result{}, err
	}

	res := Result{Trades: trades}
	if rec.ForcedClose != signal.NoForcedClose {
		res.ForcedClose = prices.Time(rec.ForcedClose)
	}

	var openSum, closeSum float64
	for _, t := range trades {
		openSum += t.OpenPrice
		closeSum += t.ClosePrice
		_, holding := c.costs.TradeCosts(t)
		res.HoldingCosts += holding
	}
	res.TransactionCosts = c.costs.TransactionRate * (openSum + closeSum)

	if c.side == position.Short {
		res.NetProfit = openSum - closeSum - res.TransactionCosts - res.HoldingCosts
	} else {
		res.NetProfit = closeSum - openSum - res.TransactionCosts
	}
	return res, nil
}

// BuyAndHold returns the profit of buying on the first day and selling on
// earlyOut, or on the last day when earlyOut is zero or not in the series.
func BuyAndHold(prices *series.PriceSeries, rate float64, earlyOut time.Time) float64 {
	_, first := prices.First()
	_, last := prices.Last()
	if !earlyOut.IsZero() {
		if i := prices.IndexOf(earlyOut); i >= 0 {
			last = prices.Price(i)
		}
	}
	return last - first - rate*(first+last)
}
