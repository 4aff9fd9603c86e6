package stats

import "trading-coach/internal/models"

// Category thresholds.
const (
	BigWinFraction  = 0.02
	BigLossFraction = 0.015

	ScalpMaxMinutes = 60
	SwingMaxMinutes = 1440
)

// Flags classifies a single trade. The duration flags partition every
// non-negative duration; the outcome flags are independent of them.
func Flags(t models.Trade) models.CategoryFlags {
	d := t.DurationMinutes
	return models.CategoryFlags{
		IsWin:      t.Profit > 0,
		IsBigWin:   t.Profit > t.PositionSize*BigWinFraction,
		IsBigLoss:  t.Profit < -t.PositionSize*BigLossFraction,
		IsScalp:    d < ScalpMaxMinutes,
		IsSwing:    d >= ScalpMaxMinutes && d < SwingMaxMinutes,
		IsLongTerm: d >= SwingMaxMinutes,
	}
}

// Categorize returns one decorated copy per trade, in input order.
func Categorize(trades []models.Trade) []models.CategorizedTrade {
	out := make([]models.CategorizedTrade, len(trades))
	for i, t := range trades {
		out[i] = models.CategorizedTrade{Trade: t, Category: Flags(t)}
	}
	return out
}

// Summarize counts categorized trades. Losses and breakeven are tracked
// separately here, unlike the aggregate metrics.
func Summarize(trades []models.CategorizedTrade) models.CategorySummary {
	var s models.CategorySummary
	for _, t := range trades {
		switch t.Outcome() {
		case models.OutcomeWin:
			s.Wins++
		case models.OutcomeLoss:
			s.Losses++
		default:
			s.Breakeven++
		}
		if t.Category.IsBigWin {
			s.BigWins++
		}
		if t.Category.IsBigLoss {
			s.BigLosses++
		}
		switch {
		case t.Category.IsScalp:
			s.Scalps++
		case t.Category.IsSwing:
			s.Swings++
		case t.Category.IsLongTerm:
			s.LongTerm++
		}
	}
	return s
}
