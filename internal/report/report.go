// Package report summarises the trades of a trading strategy.
package report

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/your-org/rule-search/internal/pnl"
	"github.com/your-org/rule-search/internal/position"
	"github.com/your-org/rule-search/internal/series"
)

// ErrNoTrades is returned when there is nothing to analyse.
var ErrNoTrades = errors.New("no trades to analyze")

// Report holds the result of a trade analysis.
type Report struct {
	StartDate                 time.Time       `json:"start_date"`
	EndDate                   time.Time       `json:"end_date"`
	TotalTrades               int             `json:"total_trades"`
	WinningTrades             int             `json:"winning_trades"`
	LosingTrades              int             `json:"losing_trades"`
	WinRate                   float64         `json:"win_rate"`
	TotalPnL                  decimal.Decimal `json:"total_pnl"`
	TotalCosts                decimal.Decimal `json:"total_costs"`
	AverageProfit             decimal.Decimal `json:"average_profit"`
	AverageLoss               decimal.Decimal `json:"average_loss"`
	RiskRewardRatio           float64         `json:"risk_reward_ratio"`
	ProfitFactor              float64         `json:"profit_factor"`
	MaxDrawdown               decimal.Decimal `json:"max_drawdown"`
	RecoveryFactor            float64         `json:"recovery_factor"`
	SharpeRatio               float64         `json:"sharpe_ratio"`
	SortinoRatio              float64         `json:"sortino_ratio"`
	MaxConsecutiveWins        int             `json:"max_consecutive_wins"`
	MaxConsecutiveLosses      int             `json:"max_consecutive_losses"`
	AverageHoldingDays        float64         `json:"average_holding_days"`
	AverageWinningHoldingDays float64         `json:"average_winning_holding_days"`
	AverageLosingHoldingDays  float64         `json:"average_losing_holding_days"`
	BuyAndHoldReturn          decimal.Decimal `json:"buy_and_hold_return"`
	ReturnVsBuyAndHold        decimal.Decimal `json:"return_vs_buy_and_hold"`
}

// AnalyzeTrades builds a report from closed trades. Each trade is charged
// costs; the buy-and-hold benchmark is taken over the whole of prices.
func AnalyzeTrades(trades []position.Trade, prices *series.PriceSeries, costs pnl.Costs) (Report, error) {
	if len(trades) == 0 {
		return Report{}, ErrNoTrades
	}

	var totalPnL, totalCosts, totalProfit, totalLoss decimal.Decimal
	var winningTrades, losingTrades int
	var pnlHistory []decimal.Decimal
	var holdingPeriods, winningHoldingPeriods, losingHoldingPeriods []float64
	var consecutiveWins, consecutiveLosses, maxConsecutiveWins, maxConsecutiveLosses int

	for _, trade := range trades {
		tx, holding := costs.TradeCosts(trade)
		cost := decimal.NewFromFloat(tx).Add(decimal.NewFromFloat(holding))
		net := decimal.NewFromFloat(trade.PnL()).Sub(cost)

		totalCosts = totalCosts.Add(cost)
		totalPnL = totalPnL.Add(net)
		pnlHistory = append(pnlHistory, net)
		days := trade.HoldingDays()
		holdingPeriods = append(holdingPeriods, days)

		if net.IsPositive() {
			winningTrades++
			totalProfit = totalProfit.Add(net)
			winningHoldingPeriods = append(winningHoldingPeriods, days)
			consecutiveWins++
			consecutiveLosses = 0
			maxConsecutiveWins = max(maxConsecutiveWins, consecutiveWins)
		} else if net.IsNegative() {
			losingTrades++
			totalLoss = totalLoss.Add(net)
			losingHoldingPeriods = append(losingHoldingPeriods, days)
			consecutiveLosses++
			consecutiveWins = 0
			maxConsecutiveLosses = max(maxConsecutiveLosses, consecutiveLosses)
		}
	}

	decided := winningTrades + losingTrades
	winRate := 0.0
	if decided > 0 {
		winRate = float64(winningTrades) / float64(decided) * 100
	}

	avgProfit := decimal.Zero
	if winningTrades > 0 {
		avgProfit = totalProfit.Div(decimal.NewFromInt(int64(winningTrades)))
	}
	avgLoss := decimal.Zero
	if losingTrades > 0 {
		avgLoss = totalLoss.Div(decimal.NewFromInt(int64(losingTrades)))
	}

	riskRewardRatio := 0.0
	if !avgLoss.IsZero() {
		riskRewardRatio = avgProfit.Div(avgLoss.Abs()).InexactFloat64()
	}
	profitFactor := 0.0
	if totalLoss.IsNegative() {
		profitFactor = totalProfit.Div(totalLoss.Abs()).InexactFloat64()
	}

	maxDrawdown := drawdown(pnlHistory)
	recoveryFactor := 0.0
	if maxDrawdown.IsPositive() {
		recoveryFactor = totalPnL.Div(maxDrawdown).InexactFloat64()
	}

	pnlFloats := make([]float64, len(pnlHistory))
	for i, p := range pnlHistory {
		pnlFloats[i] = p.InexactFloat64()
	}

	buyAndHold := decimal.NewFromFloat(pnl.BuyAndHold(prices, costs.TransactionRate, time.Time{}))

	return Report{
		StartDate:                 trades[0].Open,
		EndDate:                   trades[len(trades)-1].Close,
		TotalTrades:               len(trades),
		WinningTrades:             winningTrades,
		LosingTrades:              losingTrades,
		WinRate:                   winRate,
		TotalPnL:                  totalPnL,
		TotalCosts:                totalCosts,
		AverageProfit:             avgProfit,
		AverageLoss:               avgLoss,
		RiskRewardRatio:           riskRewardRatio,
		ProfitFactor:              profitFactor,
		MaxDrawdown:               maxDrawdown,
		RecoveryFactor:            recoveryFactor,
		SharpeRatio:               calculateSharpeRatio(pnlFloats, 0.0),
		SortinoRatio:              calculateSortinoRatio(pnlFloats, 0.0),
		MaxConsecutiveWins:        maxConsecutiveWins,
		MaxConsecutiveLosses:      maxConsecutiveLosses,
		AverageHoldingDays:        average(holdingPeriods),
		AverageWinningHoldingDays: average(winningHoldingPeriods),
		AverageLosingHoldingDays:  average(losingHoldingPeriods),
		BuyAndHoldReturn:          buyAndHold,
		ReturnVsBuyAndHold:        totalPnL.Sub(buyAndHold),
	}, nil
}

// drawdown returns the largest peak-to-trough fall of the cumulative PnL,
// starting from a flat equity of zero.
func drawdown(pnlHistory []decimal.Decimal) decimal.Decimal {
	maxDrawdown := decimal.Zero
	peak := decimal.Zero
	equity := decimal.Zero
	for _, p := range pnlHistory {
		equity = equity.Add(p)
		if equity.GreaterThan(peak) {
			peak = equity
		}
		if dd := peak.Sub(equity); dd.GreaterThan(maxDrawdown) {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func calculateStandardDeviation(returns []float64, mean float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	variance := 0.0
	for _, r := range returns {
		variance += math.Pow(r-mean, 2)
	}
	return math.Sqrt(variance / float64(len(returns)))
}

// calculateDownsideDeviation only considers returns below target.
func calculateDownsideDeviation(returns []float64, target float64) float64 {
	downsideVariance := 0.0
	downsideCount := 0
	for _, r := range returns {
		if r < target {
			downsideVariance += math.Pow(r-target, 2)
			downsideCount++
		}
	}
	if downsideCount == 0 {
		return 0.0
	}
	return math.Sqrt(downsideVariance / float64(downsideCount))
}

func calculateSharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	mean := average(returns)
	stdDev := calculateStandardDeviation(returns, mean)
	if stdDev == 0 {
		return 0.0
	}
	return (mean - riskFreeRate) / stdDev
}

func calculateSortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	mean := average(returns)
	downsideDev := calculateDownsideDeviation(returns, 0)
	if downsideDev == 0 {
		return 0.0
	}
	return (mean - riskFreeRate) / downsideDev
}
