package bias

import "trading-coach/internal/models"

// FallbackRecommendation is returned for any bias/severity pair not in the table.
const FallbackRecommendation = "Review trading psychology principles."

// InsufficientDataRecommendation is the only recommendation of a report
// built from too few trades.
const InsufficientDataRecommendation = "Need more trade data for analysis"

var recommendations = map[models.BiasType]map[models.Severity]string{
	models.BiasLossAversion: {
		models.SeverityLow:    "Consider setting stricter stop losses based on technical levels, not emotions.",
		models.SeverityMedium: "Implement a trailing stop strategy. Review losing trades to identify exit patterns.",
		models.SeverityHigh:   "Use automated stop losses. Practice letting go of losing positions. Consider reducing position sizes.",
	},
	models.BiasOverconfidence: {
		models.SeverityLow:    "Stick to your trading plan. Avoid changing strategies during winning streaks.",
		models.SeverityMedium: "Reduce position sizes by 25% after 3 consecutive wins. Document your reasoning for each trade.",
		models.SeverityHigh:   "Take a 24-hour break from trading. Reset with 50% smaller positions. Review risk management rules.",
	},
	models.BiasRevengeTrading: {
		models.SeverityLow:    "Wait at least 1 hour after a loss before taking another trade.",
		models.SeverityMedium: "Implement a daily loss limit. Stop trading for the day if reached.",
		models.SeverityHigh:   "Take a minimum 4-hour break after any loss. Reduce position size by 50% for next 5 trades.",
	},
	models.BiasConfirmationBias: {
		models.SeverityLow:    "Always look for counter-evidence before entering a trade.",
		models.SeverityMedium: "Write down 3 reasons why your trade might fail before entering.",
		models.SeverityHigh:   "Implement a \"devil's advocate\" checklist. Consider taking the opposite position with a small size.",
	},
	models.BiasAnchoring: {
		models.SeverityLow:    "Use dynamic price targets based on market structure, not entry price.",
		models.SeverityMedium: "Implement time-based exits. If trade doesn't move in your favor within X time, exit.",
		models.SeverityHigh:   "Use bracket orders with both stop loss and take profit set immediately after entry.",
	},
}

// Recommendation looks up the advice for a bias at a severity.
func Recommendation(t models.BiasType, s models.Severity) string {
	if rec, ok := recommendations[t][s]; ok {
		return rec
	}
	return FallbackRecommendation
}

// Risk tier boundaries for the report banner.
const (
	highRiskAbove     = 70
	moderateRiskAbove = 40
	lowRiskAbove      = 20
)

// OverallRecommendations builds the report's free-text list: a risk banner,
// one action per detected bias, then general practices.
func OverallRecommendations(findings []models.BiasFinding, riskScore int) []string {
	var out []string

	switch {
	case riskScore > highRiskAbove:
		out = append(out,
			"⚠️ HIGH RISK DETECTED: Consider taking a break from trading for 24-48 hours.",
			"Review and adjust your risk management rules immediately.",
			"Consider paper trading until emotional control improves.",
		)
	case riskScore > moderateRiskAbove:
		out = append(out,
			"Moderate risk detected. Focus on disciplined execution of your trading plan.",
			"Reduce position sizes by 25% until biases are under control.",
		)
	case riskScore > lowRiskAbove:
		out = append(out, "Low risk level. Maintain current discipline and continue journaling.")
	}

	if len(findings) > 0 {
		out = append(out, "Specific actions:")
		for _, f := range findings {
			out = append(out, "• "+f.Name+": "+f.Recommendation)
		}
	}

	return append(out,
		"General best practices:",
		"• Journal every trade with emotions noted",
		"• Stick to predefined position sizing",
		"• Take regular breaks during trading sessions",
		"• Review trading performance weekly",
	)
}
