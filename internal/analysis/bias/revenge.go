package bias

import (
	"fmt"
	"time"

	"trading-coach/internal/models"
)

const revengeMinTrades = 3

func revengeTradingRule() Rule {
	return Rule{
		Type:        models.BiasRevengeTrading,
		Name:        "Revenge Trading",
		Description: "Making impulsive trades to recover losses quickly",
		Symptoms: []string{
			"Trading immediately after a loss",
			"Increasing position size after losses",
			"Ignoring trading plan",
		},
		Applies: func(in Input) bool { return len(in.Trades) >= revengeMinTrades },
		Checks: []Check{
			quickReentry,
			sizeUpAfterLoss,
			lossPeriodFrequency,
		},
	}
}

// quickReentry fires on the newest trade opened within QuickReentry of a
// preceding loss. Out-of-order timestamps never count.
func quickReentry(in Input) Hit {
	var hit Hit
	pairs(in.Trades, in.Config.PairWindow, func(prior, next models.Trade) bool {
		if !prior.IsLoss() {
			return true
		}
		gap := next.Timestamp.Sub(prior.Timestamp)
		if gap < 0 || gap >= in.Config.QuickReentry {
			return true
		}
		hit = Hit{
			Fired:      true,
			Confidence: 50,
			Severity:   models.SeverityHigh,
			Evidence:   fmt.Sprintf("New trade entered %.0f minutes after loss", gap.Minutes()),
		}
		return false
	})
	return hit
}

func sizeUpAfterLoss(in Input) Hit {
	var hit Hit
	pairs(in.Trades, in.Config.PairWindow, func(prior, next models.Trade) bool {
		if prior.IsLoss() && next.PositionSize > prior.PositionSize*in.Config.PostLossSizeRatio {
			hit = Hit{
				Fired:      true,
				Confidence: 40,
				Severity:   models.SeverityHigh,
				Evidence:   fmt.Sprintf("Position size increased by %.0f%% after loss", (next.PositionSize/prior.PositionSize-1)*100),
			}
			return false
		}
		return true
	})
	return hit
}

// lossPeriod is a run of trades that begins at a loss.
type lossPeriod struct {
	start     time.Time
	end       time.Time
	trades    int
	losses    int
	frequency float64 // trades per hour
}

// minPeriodSpan keeps a burst of same-instant trades from dividing by zero.
const minPeriodSpan = time.Minute

// lossPeriods walks trades newest first. A period opens at a loss and closes
// at the first non-loss once it has collected minTrades trades; a period
// still open when the trades run out is discarded. Frequency is measured
// over the span between the opening and closing trades.
func lossPeriods(trades []models.Trade, minTrades int) []lossPeriod {
	var (
		periods []lossPeriod
		cur     *lossPeriod
	)
	for _, t := range trades {
		if t.IsLoss() {
			if cur == nil {
				cur = &lossPeriod{start: t.Timestamp}
			}
			cur.losses++
			cur.trades++
			continue
		}
		if cur == nil {
			continue
		}
		cur.trades++
		if cur.trades >= minTrades {
			cur.end = t.Timestamp
			span := cur.start.Sub(cur.end)
			if span < 0 {
				span = -span
			}
			if span < minPeriodSpan {
				span = minPeriodSpan
			}
			cur.frequency = float64(cur.trades) / span.Hours()
			periods = append(periods, *cur)
			cur = nil
		}
	}
	return periods
}

// averageFrequency is trades per hour across the whole window, or 0 when the
// window has no measurable span.
func averageFrequency(trades []models.Trade) float64 {
	if len(trades) < 2 {
		return 0
	}
	hours := trades[0].Timestamp.Sub(trades[len(trades)-1].Timestamp).Hours()
	if hours <= 0 {
		return 0
	}
	return float64(len(trades)) / hours
}

// lossPeriodFrequency compares the most recent loss period's pace with the
// window average.
func lossPeriodFrequency(in Input) Hit {
	periods := lossPeriods(in.Trades, in.Config.LossPeriodTrades)
	if len(periods) == 0 {
		return Hit{}
	}
	avg := averageFrequency(in.Trades)
	if avg == 0 || periods[0].frequency <= avg*in.Config.FrequencySpike {
		return Hit{}
	}
	return Hit{
		Fired:      true,
		Confidence: 30,
		Severity:   models.SeverityMedium,
		Evidence:   fmt.Sprintf("Trade frequency increased by %.0f%% after losses", (periods[0].frequency/avg-1)*100),
	}
}
