package bias

import (
	"fmt"

	"trading-coach/internal/models"
)

func confirmationBiasRule() Rule {
	return Rule{
		Type:        models.BiasConfirmationBias,
		Name:        "Confirmation Bias",
		Description: "Seeking information that confirms existing beliefs while ignoring contradictory evidence",
		Symptoms: []string{
			"Only looking at bullish signals for long positions",
			"Ignoring warning indicators",
			"Selective chart analysis",
		},
		Applies: func(in Input) bool { return len(in.Trades) >= in.Config.DirectionWindow },
		Checks: []Check{
			oneSided,
			againstTrend,
		},
	}
}

func directionWindow(in Input) []models.Trade {
	return in.Trades[:min(in.Config.DirectionWindow, len(in.Trades))]
}

func oneSided(in Input) Hit {
	recent := directionWindow(in)
	if len(recent) == 0 {
		return Hit{}
	}
	longs, shorts := 0, 0
	for _, t := range recent {
		switch t.Side {
		case models.SideLong:
			longs++
		case models.SideShort:
			shorts++
		}
	}
	longRatio := float64(longs) / float64(len(recent))
	shortRatio := float64(shorts) / float64(len(recent))
	if longRatio <= in.Config.OneSidedFraction && shortRatio <= in.Config.OneSidedFraction {
		return Hit{}
	}

	direction, ratio := models.SideLong, longRatio
	if shortRatio > longRatio {
		direction, ratio = models.SideShort, shortRatio
	}
	return Hit{
		Fired:      true,
		Confidence: 60,
		Severity:   models.SeverityMedium,
		Evidence:   fmt.Sprintf("Heavily biased toward %s positions (%.0f%% of recent trades)", direction, ratio*100),
	}
}

// againstTrend only runs with a trend hint; without one it never fires.
func againstTrend(in Input) Hit {
	if !in.Market.Trend.Valid() {
		return Hit{}
	}
	recent := directionWindow(in)
	if len(recent) == 0 {
		return Hit{}
	}
	against := 0
	for _, t := range recent {
		if in.Market.Opposes(t.Side) {
			against++
		}
	}
	if float64(against)/float64(len(recent)) <= in.Config.AgainstTrendFraction {
		return Hit{}
	}
	return Hit{
		Fired:      true,
		Confidence: 70,
		Severity:   models.SeverityHigh,
		Evidence:   fmt.Sprintf("%d of %d recent trades against market trend", against, len(recent)),
		Combine:    Floor,
	}
}
