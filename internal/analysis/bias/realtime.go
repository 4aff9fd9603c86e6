package bias

import (
	"fmt"

	"trading-coach/internal/models"
)

const realTimeRecentTrades = 3

// DetectRealTime screens a trade that has not been committed yet against the
// trades preceding it (newest first). Only the post-loss timing rule and the
// post-win sizing rule apply. The result may be empty but is never nil.
func (e *Engine) DetectRealTime(candidate models.Trade, preceding []models.Trade, market models.MarketContext) []models.BiasFinding {
	findings := []models.BiasFinding{}
	preceding = validOnly(preceding)

	if len(preceding) > 0 && preceding[0].IsLoss() {
		gap := candidate.Timestamp.Sub(preceding[0].Timestamp)
		if gap >= 0 && gap < e.cfg.RealTimeReentry {
			findings = append(findings, models.BiasFinding{
				Type:           models.BiasRevengeTrading,
				Name:           "Revenge Trading",
				Confidence:     70,
				Severity:       models.SeverityHigh,
				RiskScore:      models.SeverityHigh.RiskScore(),
				Evidence:       fmt.Sprintf("Trade entered %.0f minutes after loss", gap.Minutes()),
				Recommendation: "Wait at least 1 hour after a loss before next trade",
			})
		}
	}

	recent := preceding[:min(realTimeRecentTrades, len(preceding))]
	wins, _ := splitOutcomes(recent)
	if len(wins) >= 2 {
		avg := mean(recent, func(t models.Trade) float64 { return t.PositionSize })
		if avg > 0 && candidate.PositionSize > avg*e.cfg.RealTimeSizeRatio {
			findings = append(findings, models.BiasFinding{
				Type:           models.BiasOverconfidence,
				Name:           "Overconfidence",
				Confidence:     60,
				Severity:       models.SeverityMedium,
				RiskScore:      models.SeverityMedium.RiskScore(),
				Evidence:       fmt.Sprintf("Position size increased by %.0f%% after %d wins", (candidate.PositionSize/avg-1)*100, len(wins)),
				Recommendation: "Maintain consistent position sizing regardless of recent performance",
			})
		}
	}

	return findings
}
