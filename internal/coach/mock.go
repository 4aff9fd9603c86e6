package coach

import (
	"fmt"
	"hash/fnv"
	"strings"

	"trading-coach/internal/models"
)

var advicePool = []string{
	"Market showing consolidation. Wait for clear breakout above $95,500 before entering long. Set stop at $94,800.",
	"RSI divergence detected on 1H chart. Consider reducing position size or taking partial profits.",
	"Strong bullish momentum. If already long, trail your stop. If not, wait for pullback to $94,200.",
	"Increased volatility expected. Consider tightening stops and reducing position sizes by 30%.",
	"Support holding at $93,800. Good risk/reward for long entries with stop below $93,500.",
}

func mockTradeAnalysis(t models.Trade) TradeAnalysis {
	if t.IsWin() {
		return TradeAnalysis{
			SuccessFactors: []string{
				"Good entry timing near support",
				"Proper risk management",
				"Adequate position sizing",
			},
			Mistakes: []string{
				"Could have taken partial profits earlier",
				"Stop loss was too tight",
			},
			ConfidenceScore:        88,
			BehavioralInsights:     "Showed patience during volatility. Good emotional control.",
			ImprovementSuggestions: improvementSuggestions(),
			RiskAssessment:         mockRisk(t),
			TechnicalAnalysis:      "Breakout above resistance with volume confirmation",
		}
	}
	return TradeAnalysis{
		SuccessFactors: []string{
			"Managed to cut losses early",
			"Followed trading plan",
		},
		Mistakes: []string{
			"Entered during high volatility",
			"Ignored RSI divergence",
		},
		ConfidenceScore:        65,
		BehavioralInsights:     "Possible revenge trading after previous loss. Consider taking a break.",
		ImprovementSuggestions: improvementSuggestions(),
		RiskAssessment:         mockRisk(t),
		TechnicalAnalysis:      "Failed breakout attempt, lacking volume support",
	}
}

func improvementSuggestions() []string {
	return []string{
		"Use trailing stop losses",
		"Wait for confirmation candles",
		"Review trade journal daily",
	}
}

// mockRisk grades a trade by its protective orders: no stop on a losing
// trade is high risk, no stop at all is medium.
func mockRisk(t models.Trade) string {
	switch {
	case !t.HasStopLoss() && t.IsLoss():
		return "high"
	case !t.HasStopLoss():
		return "medium"
	default:
		return "low"
	}
}

// mockAdvice picks a canned line keyed on the request so the same request
// always gets the same answer.
func mockAdvice(marketContext string, recent int) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%d", marketContext, recent)
	return advicePool[h.Sum32()%uint32(len(advicePool))]
}

func mockBiasNarrative(report models.BiasReport) BiasNarrative {
	if len(report.Biases) == 0 {
		return BiasNarrative{
			Narrative:         "No significant biases detected. Continue current disciplined approach.",
			BehavioralPattern: "Disciplined systematic trading",
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Overall behavioral risk is %d/100.", report.OverallRiskScore)
	for _, f := range report.Biases {
		fmt.Fprintf(&b, " %s (%s): %s. %s", f.Name, f.Severity, f.Evidence, f.Recommendation)
	}
	return BiasNarrative{
		Narrative:         b.String(),
		BehavioralPattern: "Emotional trading detected",
	}
}

// reviewAssessment grades a period from its stats.
func reviewAssessment(s models.StatsResult) string {
	switch {
	case s.TotalTrades == 0:
		return "No Data"
	case s.WinRate >= 60 && s.ProfitFactor >= 2:
		return "Excellent"
	case s.ProfitFactor >= 1.5:
		return "Good"
	case s.ProfitFactor >= 1:
		return "Fair"
	default:
		return "Poor"
	}
}

func mockReview(s models.StatsResult, period string) string {
	if s.TotalTrades == 0 {
		return fmt.Sprintf("PERFORMANCE REVIEW - %s\nNo trades recorded for this period.", period)
	}

	var strengths, improvements []string
	if s.WinRate >= 50 {
		strengths = append(strengths, fmt.Sprintf("Win rate of %.1f%% shows consistent trade selection", s.WinRate))
	} else {
		improvements = append(improvements, fmt.Sprintf("Win rate of %.1f%% is below 50%%; tighten entry criteria", s.WinRate))
	}
	if s.ProfitFactor >= 1.5 {
		strengths = append(strengths, fmt.Sprintf("Profit factor of %.2f means winners comfortably outweigh losers", s.ProfitFactor))
	} else {
		improvements = append(improvements, fmt.Sprintf("Profit factor of %.2f leaves little edge; cut losers sooner", s.ProfitFactor))
	}
	if s.AvgLoss > 0 && s.AvgProfit < s.AvgLoss {
		improvements = append(improvements, fmt.Sprintf("Average loss ($%.2f) exceeds average win ($%.2f)", s.AvgLoss, s.AvgProfit))
	}
	if s.MaxDrawdown > 0 {
		improvements = append(improvements, fmt.Sprintf("Keep max drawdown ($%.2f) within your risk budget", s.MaxDrawdown))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "PERFORMANCE REVIEW - %s\n", period)
	fmt.Fprintf(&b, "Overall assessment: %s\n", reviewAssessment(s))
	fmt.Fprintf(&b, "Trades: %d | Net P&L: $%.2f | Expectancy: $%.2f\n", s.TotalTrades, s.TotalProfit, s.Expectancy)
	writeList(&b, "Key strengths", strengths)
	writeList(&b, "Areas for improvement", improvements)
	b.WriteString("Action plan:\n")
	b.WriteString("• Review every losing trade in your journal\n")
	b.WriteString("• Keep position size fixed for the next period\n")
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "• %s\n", it)
	}
}
