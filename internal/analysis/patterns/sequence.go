// Package patterns detects mechanical patterns in a newest-first trade sequence:
// outcome streaks, position sizing that reacts to the previous outcome, and
// time-of-day specialization.
package patterns

import (
	"fmt"
	"time"

	"trading-coach/internal/models"
)

const (
	// MinTrades is the smallest sequence any pattern is evaluated on.
	MinTrades = 3

	streakWindow  = 5
	sizingWindow  = 5
	morningWindow = 10

	martingaleFactor     = 1.5
	riskAversionFactor   = 0.7
	minSizingOccurrences = 2

	morningStartHour   = 9
	morningEndHour     = 11
	morningMinFraction = 0.7
)

// Detect returns every pattern found in trades, which must be ordered newest
// first. Hours are read in loc; a nil loc means UTC. Fewer than MinTrades
// trades yields an empty list.
func Detect(trades []models.Trade, loc *time.Location) []models.PatternFinding {
	findings := []models.PatternFinding{}
	if len(trades) < MinTrades {
		return findings
	}
	if loc == nil {
		loc = time.UTC
	}

	findings = append(findings, streaks(trades)...)
	findings = append(findings, sizing(trades)...)
	if f, ok := morningSpecialist(trades, loc); ok {
		findings = append(findings, f)
	}
	return findings
}

func streaks(trades []models.Trade) []models.PatternFinding {
	recent := trades[:min(streakWindow, len(trades))]
	allWins, allLosses := true, true
	for _, t := range recent {
		if t.IsWin() {
			allLosses = false
		} else {
			allWins = false
		}
	}

	var out []models.PatternFinding
	if allWins {
		out = append(out, models.PatternFinding{
			Type:        models.PatternWinningStreak,
			Confidence:  85,
			Description: fmt.Sprintf("%d consecutive winning trades", len(recent)),
			Implication: "Risk of overconfidence bias",
		})
	}
	if allLosses {
		out = append(out, models.PatternFinding{
			Type:        models.PatternLosingStreak,
			Confidence:  90,
			Description: fmt.Sprintf("%d consecutive losing trades", len(recent)),
			Implication: "Possible tilt/revenge trading",
		})
	}
	return out
}

// sizing compares each of the most recent trades with the one that came
// chronologically before it (the next element of the slice).
func sizing(trades []models.Trade) []models.PatternFinding {
	var upAfterLoss, downAfterWin int
	for i := 1; i < min(sizingWindow, len(trades)); i++ {
		prior, next := trades[i], trades[i-1]
		if prior.Profit < 0 && next.PositionSize > prior.PositionSize*martingaleFactor {
			upAfterLoss++
		}
		if prior.Profit > 0 && next.PositionSize < prior.PositionSize*riskAversionFactor {
			downAfterWin++
		}
	}

	var out []models.PatternFinding
	if upAfterLoss >= minSizingOccurrences {
		out = append(out, models.PatternFinding{
			Type:        models.PatternMartingale,
			Confidence:  75,
			Description: "Increasing position size after losses",
			Implication: "Potential revenge trading behavior",
		})
	}
	if downAfterWin >= minSizingOccurrences {
		out = append(out, models.PatternFinding{
			Type:        models.PatternRiskAversionAfterWin,
			Confidence:  70,
			Description: "Reducing position size after wins",
			Implication: "Missing profit opportunities due to fear",
		})
	}
	return out
}

// morningSpecialist counts morning trades across the whole sequence but
// scores them against at most morningWindow trades.
func morningSpecialist(trades []models.Trade, loc *time.Location) (models.PatternFinding, bool) {
	if len(trades) <= morningWindow {
		return models.PatternFinding{}, false
	}
	morning := 0
	for _, t := range trades {
		h := t.Timestamp.In(loc).Hour()
		if h >= morningStartHour && h <= morningEndHour {
			morning++
		}
	}
	if float64(morning)/float64(min(morningWindow, len(trades))) <= morningMinFraction {
		return models.PatternFinding{}, false
	}
	return models.PatternFinding{
		Type:        models.PatternMorningSpecialist,
		Confidence:  80,
		Description: "Higher performance in morning hours (9-11 AM)",
		Implication: "Consider focusing on morning sessions",
	}, true
}
