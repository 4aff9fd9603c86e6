package bias

import (
	"fmt"
	"math"

	"trading-coach/internal/models"
)

const (
	lossAversionMinEach = 3

	breakevenMinLossPct   = 5.0
	breakevenMaxProfitPct = 0.001
	breakevenMinShare     = 0.5
)

func lossAversionRule() Rule {
	return Rule{
		Type:        models.BiasLossAversion,
		Name:        "Loss Aversion",
		Description: "Tendency to prefer avoiding losses rather than acquiring equivalent gains",
		Symptoms: []string{
			"Holding losing positions too long",
			"Taking profits too early",
			"Reluctance to enter trades after a loss",
		},
		Applies: func(in Input) bool {
			wins, losses := splitOutcomes(in.Trades)
			return len(wins) >= lossAversionMinEach && len(losses) >= lossAversionMinEach
		},
		Checks: []Check{
			lossDurationDisparity,
			lossMagnitudeDisparity,
			breakevenSyndrome,
		},
	}
}

func duration(t models.Trade) float64 { return float64(t.DurationMinutes) }

// lossDurationDisparity fires when losers are held much longer than winners.
func lossDurationDisparity(in Input) Hit {
	wins, losses := splitOutcomes(in.Trades)
	avgWin, avgLoss := mean(wins, duration), mean(losses, duration)
	if !(avgLoss > avgWin*in.Config.LossDurationRatio) {
		return Hit{}
	}

	severity := models.SeverityMedium
	if avgLoss > avgWin*in.Config.LossDurationHighRatio {
		severity = models.SeverityHigh
	}

	evidence := fmt.Sprintf("Holding losses %.0f minutes on average while wins close immediately", avgLoss)
	if avgWin > 0 {
		evidence = fmt.Sprintf("Holding losses %.1fx longer than wins", avgLoss/avgWin)
	}
	return Hit{Fired: true, Confidence: 30, Severity: severity, Evidence: evidence}
}

// lossMagnitudeDisparity compares average percentage loss with average percentage win.
func lossMagnitudeDisparity(in Input) Hit {
	wins, losses := splitOutcomes(in.Trades)
	avgWinPct := mean(wins, models.Trade.ProfitPercent)
	avgLossPct := math.Abs(mean(losses, models.Trade.ProfitPercent))
	if !(avgLossPct > avgWinPct*in.Config.LossMagnitudeRatio) {
		return Hit{}
	}
	return Hit{
		Fired:      true,
		Confidence: 40,
		Severity:   models.SeverityHigh,
		Evidence:   fmt.Sprintf("Average loss (%.1f%%) more than double average win (%.1f%%)", avgLossPct, avgWinPct),
	}
}

// breakevenSyndrome counts losers that drew down hard but were closed near
// breakeven.
func breakevenSyndrome(in Input) Hit {
	_, losses := splitOutcomes(in.Trades)
	held := 0
	for _, t := range losses {
		if math.Abs(t.ProfitPercent()) > breakevenMinLossPct && math.Abs(t.Profit) < t.PositionSize*breakevenMaxProfitPct {
			held++
		}
	}
	if len(losses) == 0 || float64(held) <= float64(len(losses))*breakevenMinShare {
		return Hit{}
	}
	return Hit{
		Fired:      true,
		Confidence: 20,
		Severity:   models.SeverityMedium,
		Evidence:   fmt.Sprintf("%d losing trades held until nearly breakeven", held),
	}
}
