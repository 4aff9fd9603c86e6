// Package stats computes aggregate performance metrics and per-trade
// categories for a trade sequence.
package stats

import (
	"math"

	"trading-coach/internal/models"
	"trading-coach/pkg/utils"
)

// NoLossProfitFactor is reported when there are winning trades but nothing was lost.
const NoLossProfitFactor = 99.0

// annualization factor for the Sharpe ratio (trading days per year)
var sqrtTradingDays = math.Sqrt(252)

// Compute returns the aggregate metrics of trades in the given order.
// Drawdown and Sharpe ratio depend on that order. An empty sequence yields a
// zero result with no best or worst trade.
func Compute(trades []models.Trade) models.StatsResult {
	n := len(trades)
	if n == 0 {
		return models.StatsResult{}
	}

	var (
		wins, losses        int
		grossWin, grossLoss float64
		total               float64
	)
	best, worst := trades[0].Profit, trades[0].Profit
	for _, t := range trades {
		total += t.Profit
		if t.IsWin() {
			wins++
			grossWin += t.Profit
		} else {
			losses++
			grossLoss += t.Profit
		}
		best = math.Max(best, t.Profit)
		worst = math.Min(worst, t.Profit)
	}
	grossLoss = math.Abs(grossLoss)

	winRate := float64(wins) / float64(n) * 100

	var avgWin, avgLoss float64
	if wins > 0 {
		avgWin = grossWin / float64(wins)
	}
	if losses > 0 {
		avgLoss = grossLoss / float64(losses)
	}

	profitFactor := NoLossProfitFactor
	if grossLoss > 0 {
		profitFactor = grossWin / grossLoss
	}

	wr := winRate / 100
	expectancy := wr*avgWin - (1-wr)*avgLoss

	best2, worst2 := utils.Round2(best), utils.Round2(worst)
	return models.StatsResult{
		TotalTrades:  n,
		WinRate:      utils.Round(winRate, 1),
		TotalProfit:  utils.Round2(total),
		AvgProfit:    utils.Round2(avgWin),
		AvgLoss:      utils.Round2(avgLoss),
		ProfitFactor: utils.Round2(profitFactor),
		MaxDrawdown:  utils.Round2(MaxDrawdown(trades)),
		SharpeRatio:  utils.Round2(SharpeRatio(trades)),
		Expectancy:   utils.Round2(expectancy),
		BestTrade:    &best2,
		WorstTrade:   &worst2,
	}
}

// MaxDrawdown scans the running cumulative profit and returns the largest
// peak-to-current decline. The peak starts at zero, so an opening loss counts.
func MaxDrawdown(trades []models.Trade) float64 {
	var balance, peak, maxDD float64
	for _, t := range trades {
		balance += t.Profit
		if balance > peak {
			peak = balance
		}
		if dd := peak - balance; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// SharpeRatio annualizes the mean step-to-step change of the cumulative
// balance over the root mean square of those changes. The change into the
// first trade is excluded and the divisor is max(1, n-1). Zero deviation
// yields 0.
func SharpeRatio(trades []models.Trade) float64 {
	if len(trades) < 2 {
		return 0
	}

	// deltas of the cumulative balance are the profits of trades 1..n-1
	var sum, sq float64
	for _, t := range trades[1:] {
		sum += t.Profit
		sq += t.Profit * t.Profit
	}
	steps := float64(max(1, len(trades)-1))
	mean := sum / steps

	std := math.Sqrt(sq / steps)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return mean / std * sqrtTradingDays
}
