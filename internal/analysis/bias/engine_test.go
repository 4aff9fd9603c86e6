package bias

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-coach/internal/models"
)

var t0 = time.Date(2024, 5, 6, 15, 0, 0, 0, time.UTC)

// mk builds a valid long trade whose exit price is consistent with profit.
func mk(profit, size float64, ts time.Time) models.Trade {
	return models.Trade{
		Symbol:          "NVDA",
		Side:            models.SideLong,
		EntryPrice:      100,
		ExitPrice:       100 + profit/size,
		PositionSize:    size,
		Profit:          profit,
		DurationMinutes: 30,
		Timestamp:       ts,
	}
}

// alternating builds n newest-first trades one day apart, starting with a
// loss, with equal sizes and sides alternating long/short.
func alternating(n int) []models.Trade {
	out := make([]models.Trade, n)
	for i := range out {
		p := -1.0
		if i%2 == 1 {
			p = 1
		}
		out[i] = mk(p, 1, t0.AddDate(0, 0, -i))
		if i%2 == 1 {
			out[i].Side = models.SideShort
		}
	}
	return out
}

func findingOf(r models.BiasReport, bt models.BiasType) (models.BiasFinding, bool) {
	for _, f := range r.Biases {
		if f.Type == bt {
			return f, true
		}
	}
	return models.BiasFinding{}, false
}

func TestAnalyze_InsufficientData(t *testing.T) {
	e := NewEngine(DefaultConfig())

	for _, trades := range [][]models.Trade{nil, alternating(4)} {
		r := e.Analyze(trades, models.MarketContext{})
		assert.NotNil(t, r.Biases)
		assert.Empty(t, r.Biases)
		assert.Equal(t, 0, r.OverallRiskScore)
		assert.Equal(t, 0, r.Confidence)
		assert.Equal(t, []string{InsufficientDataRecommendation}, r.Recommendations)
	}
}

func TestAnalyze_NoBiasOnBalancedHistory(t *testing.T) {
	r := NewEngine(DefaultConfig()).Analyze(alternating(10), models.MarketContext{})

	assert.Empty(t, r.Biases)
	assert.Equal(t, 0, r.OverallRiskScore)
	assert.Equal(t, 85, r.Confidence)
	assert.Equal(t, 10, r.AnalyzedTrades)
	assert.Equal(t, "General best practices:", r.Recommendations[0])
	assert.Len(t, r.Recommendations, 5)
}

func TestAnalyze_RevengeTradingScenario(t *testing.T) {
	trades := []models.Trade{
		mk(10, 2.0, t0.Add(time.Minute)),
		mk(-10, 1.0, t0),
		mk(10, 1, t0.Add(-2*time.Hour)),
		mk(10, 1, t0.Add(-4*time.Hour)),
		mk(10, 1, t0.Add(-6*time.Hour)),
	}

	r := NewEngine(DefaultConfig()).Analyze(trades, models.MarketContext{})

	require.Len(t, r.Biases, 1)
	f := r.Biases[0]
	assert.Equal(t, models.BiasRevengeTrading, f.Type)
	assert.Equal(t, "Revenge Trading", f.Name)
	assert.Equal(t, 90, f.Confidence)
	assert.Equal(t, models.SeverityHigh, f.Severity)
	assert.Equal(t, 50, f.RiskScore)
	assert.Equal(t, "New trade entered 1 minutes after loss; Position size increased by 100% after loss", f.Evidence)
	assert.Equal(t, Recommendation(models.BiasRevengeTrading, models.SeverityHigh), f.Recommendation)

	assert.Equal(t, 100, r.OverallRiskScore)
	assert.Equal(t, 70, r.Confidence)
	assert.Equal(t, 5, r.AnalyzedTrades)
	assert.Contains(t, r.Recommendations, "Specific actions:")
	assert.Contains(t, r.Recommendations, "• Revenge Trading: "+f.Recommendation)
	assert.Equal(t, "⚠️ HIGH RISK DETECTED: Consider taking a break from trading for 24-48 hours.", r.Recommendations[0])
}

func TestAnalyze_ReentryBeforeLossIsIgnored(t *testing.T) {
	// timestamps out of order: the "next" trade predates the loss
	trades := []models.Trade{
		mk(10, 1, t0.Add(-time.Minute)),
		mk(-10, 1, t0),
		mk(10, 1, t0.Add(-2*time.Hour)),
		mk(-10, 1, t0.Add(-4*time.Hour)),
		mk(10, 1, t0.Add(-6*time.Hour)),
	}

	_, ok := findingOf(NewEngine(DefaultConfig()).Analyze(trades, models.MarketContext{}), models.BiasRevengeTrading)
	assert.False(t, ok)
}

func TestAnalyze_LossAversion(t *testing.T) {
	var trades []models.Trade
	for i := 0; i < 6; i++ {
		tr := mk(1, 1, t0.AddDate(0, 0, -i))
		tr.DurationMinutes = 10
		if i%2 == 0 {
			tr = mk(-5, 1, t0.AddDate(0, 0, -i))
			tr.DurationMinutes = 40
		}
		trades = append(trades, tr)
	}

	r := NewEngine(DefaultConfig()).Analyze(trades, models.MarketContext{})

	f, ok := findingOf(r, models.BiasLossAversion)
	require.True(t, ok)
	assert.Equal(t, 70, f.Confidence)
	assert.Equal(t, models.SeverityHigh, f.Severity)
	assert.Equal(t, "Holding losses 4.0x longer than wins; Average loss (5.0%) more than double average win (1.0%)", f.Evidence)
	assert.Len(t, r.Biases, 1)
}

func TestAnalyze_LossAversionNeedsThreeOfEach(t *testing.T) {
	trades := []models.Trade{
		mk(-5, 1, t0),
		mk(1, 1, t0.AddDate(0, 0, -1)),
		mk(-5, 1, t0.AddDate(0, 0, -2)),
		mk(1, 1, t0.AddDate(0, 0, -3)),
		mk(1, 1, t0.AddDate(0, 0, -4)),
	}
	for i := range trades {
		if trades[i].IsLoss() {
			trades[i].DurationMinutes = 500
		}
	}

	_, ok := findingOf(NewEngine(DefaultConfig()).Analyze(trades, models.MarketContext{}), models.BiasLossAversion)
	assert.False(t, ok)
}

func TestAnalyze_OverconfidenceWinStreak(t *testing.T) {
	var trades []models.Trade
	for i := 0; i < 5; i++ {
		trades = append(trades, mk(5, 1, t0.AddDate(0, 0, -i)))
	}

	r := NewEngine(DefaultConfig()).Analyze(trades, models.MarketContext{})

	require.Len(t, r.Biases, 1)
	f := r.Biases[0]
	assert.Equal(t, models.BiasOverconfidence, f.Type)
	assert.Equal(t, 30, f.Confidence)
	assert.Equal(t, models.SeverityHigh, f.Severity)
	assert.Equal(t, "5 consecutive winning trades", f.Evidence)
	assert.Equal(t, "Take a 24-hour break from trading. Reset with 50% smaller positions. Review risk management rules.", f.Recommendation)
}

func TestAnalyze_OverconfidenceSizeAfterWin(t *testing.T) {
	trades := alternating(6)
	trades[0].PositionSize = 2
	trades[0].ExitPrice = 100 - 1.0/2

	f, ok := findingOf(NewEngine(DefaultConfig()).Analyze(trades, models.MarketContext{}), models.BiasOverconfidence)

	require.True(t, ok)
	assert.Equal(t, 40, f.Confidence)
	assert.Equal(t, models.SeverityHigh, f.Severity)
	assert.Equal(t, "Position size increased by 100% after win", f.Evidence)
}

func TestAnalyze_OverconfidenceFewerStops(t *testing.T) {
	trades := alternating(10)
	stop := 90.0
	for i := 5; i < 10; i++ {
		trades[i].StopLoss = &stop
	}

	f, ok := findingOf(NewEngine(DefaultConfig()).Analyze(trades, models.MarketContext{}), models.BiasOverconfidence)

	require.True(t, ok)
	assert.Equal(t, 30, f.Confidence)
	assert.Equal(t, models.SeverityMedium, f.Severity)
	assert.Equal(t, "Stop loss usage reduced by 100%", f.Evidence)

	// no stops in the older block: check does not run
	for i := 5; i < 10; i++ {
		trades[i].StopLoss = nil
	}
	_, ok = findingOf(NewEngine(DefaultConfig()).Analyze(trades, models.MarketContext{}), models.BiasOverconfidence)
	assert.False(t, ok)
}

func TestAnalyze_RevengeLossPeriodFrequency(t *testing.T) {
	trades := []models.Trade{
		mk(-1, 1, t0),
		mk(-1, 1, t0.Add(-10*time.Minute)),
		mk(1, 1, t0.Add(-20*time.Minute)),
		mk(-1, 1, t0.Add(-30*time.Minute)),
		mk(1, 1, t0.Add(-40*time.Minute)),
	}
	for i := 1; i <= 5; i++ {
		trades = append(trades, mk(1, 1, t0.Add(-40*time.Minute).AddDate(0, 0, -i)))
	}
	for i := range trades {
		if i%2 == 1 {
			trades[i].Side = models.SideShort
		}
	}

	periods := lossPeriods(trades, 5)
	require.Len(t, periods, 1)
	assert.Equal(t, 5, periods[0].trades)
	assert.Equal(t, 3, periods[0].losses)
	assert.InDelta(t, 7.5, periods[0].frequency, 1e-9)

	r := NewEngine(DefaultConfig()).Analyze(trades, models.MarketContext{})
	require.Len(t, r.Biases, 1)
	f := r.Biases[0]
	assert.Equal(t, models.BiasRevengeTrading, f.Type)
	assert.Equal(t, 30, f.Confidence)
	assert.Equal(t, models.SeverityMedium, f.Severity)
	assert.Contains(t, f.Evidence, "Trade frequency increased by")
}

func TestLossPeriods_UnclosedPeriodDropped(t *testing.T) {
	trades := []models.Trade{
		mk(-1, 1, t0),
		mk(1, 1, t0.Add(-time.Hour)),
		mk(-1, 1, t0.Add(-2*time.Hour)),
	}
	assert.Empty(t, lossPeriods(trades, 5))
}

func confirmationTrades(shorts int) []models.Trade {
	trades := alternating(10)
	for i := range trades {
		trades[i].Side = models.SideLong
		if i < shorts {
			trades[i].Side = models.SideShort
		}
	}
	return trades
}

func TestAnalyze_ConfirmationWithoutTrendIsNoop(t *testing.T) {
	e := NewEngine(DefaultConfig())

	_, ok := findingOf(e.Analyze(confirmationTrades(8), models.MarketContext{}), models.BiasConfirmationBias)
	assert.False(t, ok, "80% one-sided is not more than 80% and no trend was given")

	_, ok = findingOf(e.Analyze(confirmationTrades(8), models.MarketContext{Trend: "sideways"}), models.BiasConfirmationBias)
	assert.False(t, ok, "unknown trend is ignored")
}

func TestAnalyze_ConfirmationAgainstTrend(t *testing.T) {
	e := NewEngine(DefaultConfig())

	f, ok := findingOf(e.Analyze(confirmationTrades(8), models.MarketContext{Trend: models.TrendBullish}), models.BiasConfirmationBias)
	require.True(t, ok)
	assert.Equal(t, 70, f.Confidence)
	assert.Equal(t, models.SeverityHigh, f.Severity)
	assert.Equal(t, "8 of 10 recent trades against market trend", f.Evidence)
}

func TestAnalyze_ConfirmationOneSided(t *testing.T) {
	e := NewEngine(DefaultConfig())

	f, ok := findingOf(e.Analyze(confirmationTrades(10), models.MarketContext{}), models.BiasConfirmationBias)
	require.True(t, ok)
	assert.Equal(t, 60, f.Confidence)
	assert.Equal(t, models.SeverityMedium, f.Severity)
	assert.Equal(t, "Heavily biased toward short positions (100% of recent trades)", f.Evidence)

	f, ok = findingOf(e.Analyze(confirmationTrades(10), models.MarketContext{Trend: models.TrendBullish}), models.BiasConfirmationBias)
	require.True(t, ok)
	assert.Equal(t, 70, f.Confidence, "floor, not additive")
	assert.Equal(t, models.SeverityHigh, f.Severity)
	assert.Equal(t, "Heavily biased toward short positions (100% of recent trades); 10 of 10 recent trades against market trend", f.Evidence)
}

func TestAnalyze_Anchoring(t *testing.T) {
	trades := alternating(5)
	for i := range trades {
		trades[i].ExitPrice = 100.5
		trades[i].DurationMinutes = 180
	}

	f, ok := findingOf(NewEngine(DefaultConfig()).Analyze(trades, models.MarketContext{}), models.BiasAnchoring)
	require.True(t, ok)
	assert.Equal(t, 50, f.Confidence)
	assert.Equal(t, models.SeverityMedium, f.Severity)
	assert.Equal(t, "5 trades held with minimal price movement", f.Evidence)

	cfg := DefaultConfig()
	cfg.RequireBracketOrders = true
	_, ok = findingOf(NewEngine(cfg).Analyze(trades, models.MarketContext{}), models.BiasAnchoring)
	assert.False(t, ok)
}

func TestAnalyze_SkipsInvalidTrades(t *testing.T) {
	trades := alternating(6)
	trades[2].PositionSize = 0

	r := NewEngine(DefaultConfig()).Analyze(trades, models.MarketContext{})
	assert.Equal(t, 5, r.AnalyzedTrades)
}

func TestAnalyze_WindowIsMostRecentTwenty(t *testing.T) {
	r := NewEngine(DefaultConfig()).Analyze(alternating(30), models.MarketContext{})
	assert.Equal(t, 20, r.AnalyzedTrades)
	assert.Equal(t, 95, r.Confidence)
}

func TestRuleEvaluate_Combination(t *testing.T) {
	fire := func(conf int, sev models.Severity, ev string, c Combine) Check {
		return func(Input) Hit { return Hit{Fired: true, Confidence: conf, Severity: sev, Evidence: ev, Combine: c} }
	}

	r := Rule{
		Type: models.BiasOverconfidence,
		Name: "Test",
		Checks: []Check{
			fire(50, models.SeverityHigh, "a", Additive),
			fire(40, models.SeverityMedium, "b", Additive),
			fire(30, models.SeverityLow, "c", Additive),
		},
	}
	f, ok := r.evaluate(Input{})
	require.True(t, ok)
	assert.Equal(t, 100, f.Confidence)
	assert.Equal(t, models.SeverityHigh, f.Severity, "severity never decreases")
	assert.Equal(t, "a; b; c", f.Evidence)
	assert.Equal(t, 50, f.RiskScore)

	r.Checks = []Check{fire(20, models.SeverityMedium, "x", Additive), fire(15, models.SeverityLow, "y", Floor)}
	f, _ = r.evaluate(Input{})
	assert.Equal(t, 20, f.Confidence)
	assert.Equal(t, models.SeverityMedium, f.Severity)

	r.Applies = func(Input) bool { return false }
	_, ok = r.evaluate(Input{})
	assert.False(t, ok)
}

func TestEngine_CustomRule(t *testing.T) {
	custom := Rule{
		Type:   "fomo",
		Name:   "Fear Of Missing Out",
		Checks: []Check{func(Input) Hit { return Hit{Fired: true, Confidence: 10, Severity: models.SeverityLow} }},
	}
	e := NewEngineWithRules(DefaultConfig(), []Rule{custom})

	r := e.Analyze(alternating(5), models.MarketContext{})
	require.Len(t, r.Biases, 1)
	assert.Equal(t, FallbackRecommendation, r.Biases[0].Recommendation)
	assert.Equal(t, 15, r.Biases[0].RiskScore)
	assert.Equal(t, 60, r.OverallRiskScore)

	defs := e.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, "Fear Of Missing Out", defs[0].Name)
}

func TestOverallRiskScore(t *testing.T) {
	f := func(scores ...int) []models.BiasFinding {
		var out []models.BiasFinding
		for _, s := range scores {
			out = append(out, models.BiasFinding{RiskScore: s})
		}
		return out
	}
	assert.Equal(t, 0, OverallRiskScore(nil))
	assert.Equal(t, 60, OverallRiskScore(f(15)))
	assert.Equal(t, 100, OverallRiskScore(f(30)))
	assert.Equal(t, 100, OverallRiskScore(f(15, 50)))
}

func TestSampleConfidence(t *testing.T) {
	assert.Equal(t, 50, SampleConfidence(4))
	assert.Equal(t, 70, SampleConfidence(5))
	assert.Equal(t, 85, SampleConfidence(10))
	assert.Equal(t, 95, SampleConfidence(20))
}

func TestOverallRecommendations_Tiers(t *testing.T) {
	assert.Len(t, OverallRecommendations(nil, 0), 5)
	assert.Equal(t, "Low risk level. Maintain current discipline and continue journaling.", OverallRecommendations(nil, 30)[0])
	assert.Equal(t, "Moderate risk detected. Focus on disciplined execution of your trading plan.", OverallRecommendations(nil, 60)[0])
	assert.Len(t, OverallRecommendations(nil, 71), 8)
}

func TestRecommendation_Fallback(t *testing.T) {
	assert.Equal(t, FallbackRecommendation, Recommendation(models.BiasAnchoring, models.SeverityNone))
	assert.Equal(t, "Write down 3 reasons why your trade might fail before entering.",
		Recommendation(models.BiasConfirmationBias, models.SeverityMedium))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Window = 2
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.OneSidedFraction = 1.5
	assert.Error(t, cfg.Validate())
}
