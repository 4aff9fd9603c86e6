package bias

import (
	"fmt"

	"trading-coach/internal/models"
)

const (
	overconfidenceMinTrades = 5
	stopUsageWindow         = 5
	stopUsageDropRatio      = 0.5
)

func overconfidenceRule() Rule {
	return Rule{
		Type:        models.BiasOverconfidence,
		Name:        "Overconfidence",
		Description: "Overestimation of one's own trading abilities and underestimation of risk",
		Symptoms: []string{
			"Increasing position sizes after wins",
			"Reduced use of stop losses",
			"Trading too frequently",
		},
		Applies: func(in Input) bool { return len(in.Trades) >= overconfidenceMinTrades },
		Checks: []Check{
			winStreak,
			sizeUpAfterWin,
			fewerStops,
		},
	}
}

// currentWinStreak counts wins from the newest trade back to the first non-win.
func currentWinStreak(trades []models.Trade) int {
	n := 0
	for _, t := range trades {
		if !t.IsWin() {
			break
		}
		n++
	}
	return n
}

func winStreak(in Input) Hit {
	streak := currentWinStreak(in.Trades)
	if streak < in.Config.WinStreak {
		return Hit{}
	}
	severity := models.SeverityMedium
	if streak >= in.Config.WinStreakHigh {
		severity = models.SeverityHigh
	}
	return Hit{
		Fired:      true,
		Confidence: 30,
		Severity:   severity,
		Evidence:   fmt.Sprintf("%d consecutive winning trades", streak),
	}
}

func sizeUpAfterWin(in Input) Hit {
	var hit Hit
	pairs(in.Trades, in.Config.PairWindow, func(prior, next models.Trade) bool {
		if prior.IsWin() && next.PositionSize > prior.PositionSize*in.Config.PostWinSizeRatio {
			hit = Hit{
				Fired:      true,
				Confidence: 40,
				Severity:   models.SeverityHigh,
				Evidence:   fmt.Sprintf("Position size increased by %.0f%% after win", (next.PositionSize/prior.PositionSize-1)*100),
			}
			return false
		}
		return true
	})
	return hit
}

func countStops(trades []models.Trade) int {
	n := 0
	for _, t := range trades {
		if t.HasStopLoss() {
			n++
		}
	}
	return n
}

// fewerStops compares stop-loss usage in the newest block of trades with the
// block before it. It only runs when the earlier block used stops at all.
func fewerStops(in Input) Hit {
	n := len(in.Trades)
	recent := countStops(in.Trades[:min(stopUsageWindow, n)])
	prior := 0
	if n > stopUsageWindow {
		prior = countStops(in.Trades[stopUsageWindow:min(2*stopUsageWindow, n)])
	}
	if prior == 0 || float64(recent) >= float64(prior)*stopUsageDropRatio {
		return Hit{}
	}
	return Hit{
		Fired:      true,
		Confidence: 30,
		Severity:   models.SeverityMedium,
		Evidence:   fmt.Sprintf("Stop loss usage reduced by %.0f%%", (1-float64(recent)/float64(prior))*100),
	}
}
