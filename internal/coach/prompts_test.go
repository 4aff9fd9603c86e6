package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trading-coach/internal/models"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
		ok    bool
	}{
		{"bare", `{"a":1}`, `{"a":1}`, true},
		{"prose", "Sure! {\"a\":{\"b\":2}} hope it helps", `{"a":{"b":2}}`, true},
		{"none", "no json here", "", false},
		{"reversed", "} {", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.reply)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTradeContext(t *testing.T) {
	history := []models.Trade{sampleTrade(10), sampleTrade(-30), sampleTrade(5), sampleTrade(5)}
	tc := NewTradeContext(history, "choppy")

	assert.Equal(t, 4, tc.TotalTrades)
	assert.Equal(t, 75.0, tc.RecentWinRate)
	assert.Equal(t, "Negative", tc.RecentPerformance)
	assert.Equal(t, "choppy", tc.MarketCondition)

	empty := NewTradeContext(nil, "")
	assert.Zero(t, empty.RecentWinRate)
	assert.Equal(t, "Neutral", empty.RecentPerformance)
}

func TestTradeAnalysisPrompt(t *testing.T) {
	tr := sampleTrade(950)
	sl := 94000.0
	tr.StopLoss = &sl

	p := TradeAnalysisPrompt(tr, TradeContext{TotalTrades: 12, RecentWinRate: 60, RecentPerformance: "Positive"})
	assert.Contains(t, p.System, "expert trading coach")
	assert.Contains(t, p.User, "Symbol: BTCUSD")
	assert.Contains(t, p.User, "Type: buy")
	assert.Contains(t, p.User, "Profit: $950.00 (1.00%)")
	assert.Contains(t, p.User, "Stop Loss: 94000")
	assert.Contains(t, p.User, "Take Profit: Not set")
	assert.Contains(t, p.User, "No context provided")
	assert.Contains(t, p.User, `"confidenceScore"`)
}

func TestCoachingPrompt_Defaults(t *testing.T) {
	p := CoachingPrompt("BTC testing resistance", TraderProfile{Experience: "2 years"}, nil, now)
	assert.Contains(t, p.System, "[Market Analysis] | [Risk Level: Low/Med/High]")
	assert.Contains(t, p.User, "Experience: 2 years")
	assert.Contains(t, p.User, "Risk Tolerance: Medium")
	assert.Contains(t, p.User, "No trades recorded")
}

func TestBiasNarrativePrompt(t *testing.T) {
	trades := []models.Trade{sampleTrade(-20), sampleTrade(-10), sampleTrade(40)}
	p := BiasNarrativePrompt(trades, models.BiasReport{OverallRiskScore: 30})

	assert.Contains(t, p.User, "1. BTCUSD buy: $-20.00 (42min)")
	assert.Contains(t, p.User, "Consecutive Losses: 2")
	assert.Contains(t, p.User, "Consecutive Wins: 0")
	assert.Contains(t, p.User, "DETECTED BIASES:\nNone")
	assert.Contains(t, p.User, "Overall Risk Score: 30/100")
}

func TestPerformanceReviewPrompt(t *testing.T) {
	p := PerformanceReviewPrompt(models.StatsResult{TotalTrades: 3, WinRate: 66.7}, "Monthly")
	assert.Contains(t, p.User, "PERFORMANCE REVIEW - Monthly")
	assert.Contains(t, p.User, `"winRate": 66.7`)
}
