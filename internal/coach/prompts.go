package coach

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"trading-coach/internal/analysis/stats"
	"trading-coach/internal/models"
)

// Prompt is a system/user message pair.
type Prompt struct {
	System string
	User   string
}

// TradeContext summarizes the trader's recent history for a trade review.
type TradeContext struct {
	MarketCondition   string
	TotalTrades       int
	RecentWinRate     float64
	RecentPerformance string
}

// NewTradeContext derives a TradeContext from newest-first history.
func NewTradeContext(history []models.Trade, marketCondition string) TradeContext {
	tc := TradeContext{
		MarketCondition:   marketCondition,
		TotalTrades:       len(history),
		RecentPerformance: "Neutral",
	}

	recent := history[:min(10, len(history))]
	if len(recent) > 0 {
		wins := 0
		for _, t := range recent {
			if t.IsWin() {
				wins++
			}
		}
		tc.RecentWinRate = float64(wins) / float64(len(recent)) * 100
	}

	var sum float64
	for _, t := range history[:min(5, len(history))] {
		sum += t.Profit
	}
	switch {
	case sum > 0:
		tc.RecentPerformance = "Positive"
	case sum < 0:
		tc.RecentPerformance = "Negative"
	}
	return tc
}

// TraderProfile is optional self-reported context for advice.
type TraderProfile struct {
	Experience        string `json:"experience"`
	RiskTolerance     string `json:"riskTolerance"`
	Positions         string `json:"positions"`
	RecentPerformance string `json:"recentPerformance"`
	Biases            string `json:"biases"`
}

const analysisFormat = `Respond with JSON only, in this format:
{
  "successFactors": ["array", "of", "factors"],
  "mistakes": ["array", "of", "mistakes"],
  "confidenceScore": 0-100,
  "behavioralInsights": "text about trader behavior",
  "improvementSuggestions": ["array", "of", "suggestions"],
  "riskAssessment": "low/medium/high",
  "technicalAnalysis": "text about technicals"
}`

// TradeAnalysisPrompt asks for a structured review of one trade.
func TradeAnalysisPrompt(t models.Trade, tc TradeContext) Prompt {
	market := tc.MarketCondition
	if market == "" {
		market = "No context provided"
	}

	var b strings.Builder
	b.WriteString("Trade Analysis Request:\n\nTRADE DATA:\n")
	fmt.Fprintf(&b, "Symbol: %s\n", t.Symbol)
	fmt.Fprintf(&b, "Type: %s\n", t.Side.Type())
	fmt.Fprintf(&b, "Entry: %g\n", t.EntryPrice)
	fmt.Fprintf(&b, "Exit: %g\n", t.ExitPrice)
	fmt.Fprintf(&b, "Time: %s\n", t.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Profit: $%.2f (%.2f%%)\n", t.Profit, t.ProfitPercent())
	fmt.Fprintf(&b, "Position Size: %g\n", t.PositionSize)
	fmt.Fprintf(&b, "Duration: %d minutes\n", t.DurationMinutes)
	fmt.Fprintf(&b, "Stop Loss: %s\n", optional(t.StopLoss))
	fmt.Fprintf(&b, "Take Profit: %s\n", optional(t.TakeProfit))
	if t.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", t.Notes)
	}
	fmt.Fprintf(&b, "\nMARKET CONTEXT:\n%s\n", market)
	b.WriteString("\nTRADER HISTORY:\n")
	fmt.Fprintf(&b, "Total Trades: %d\n", tc.TotalTrades)
	fmt.Fprintf(&b, "Recent Win Rate: %.1f%%\n", tc.RecentWinRate)
	fmt.Fprintf(&b, "Recent Performance: %s\n\n", tc.RecentPerformance)
	b.WriteString(analysisFormat)

	return Prompt{
		System: `You are an expert trading coach with 20+ years experience. Analyze trades focusing on:
1. Risk management effectiveness
2. Entry/exit timing
3. Emotional discipline
4. Technical analysis alignment
5. Improvement suggestions

Be specific, actionable, and supportive.`,
		User: b.String(),
	}
}

// CoachingPrompt asks for short real-time advice.
func CoachingPrompt(marketContext string, profile TraderProfile, recent []models.Trade, now time.Time) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "COACHING REQUEST - %s\n\n", now.UTC().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "CURRENT MARKET:\n%s\n\n", marketContext)
	b.WriteString("RECENT TRADES:\n")
	b.WriteString(tradeSummaries(recent, 5))
	b.WriteString("\nTRADER PROFILE:\n")
	fmt.Fprintf(&b, "Experience: %s\n", orDefault(profile.Experience, "Unknown"))
	fmt.Fprintf(&b, "Risk Tolerance: %s\n", orDefault(profile.RiskTolerance, "Medium"))
	fmt.Fprintf(&b, "Current Positions: %s\n", orDefault(profile.Positions, "None"))
	fmt.Fprintf(&b, "Recent Performance: %s\n", orDefault(profile.RecentPerformance, "Neutral"))
	fmt.Fprintf(&b, "Detected Biases: %s\n\n", orDefault(profile.Biases, "None detected"))
	b.WriteString("Provide immediate coaching advice based on above.")

	return Prompt{
		System: `You are a supportive but honest AI Trading Coach. Provide real-time coaching that:
1. Analyzes current market conditions
2. Assesses risk levels
3. Gives specific, actionable advice
4. Addresses psychological aspects
5. Keeps responses under 3 sentences

Format: [Market Analysis] | [Risk Level: Low/Med/High] | [Action: Specific advice] | [Psychology: Note]`,
		User: b.String(),
	}
}

// BiasNarrativePrompt asks the model to explain an engine bias report in
// plain language. The model interprets findings; it does not detect them.
func BiasNarrativePrompt(trades []models.Trade, report models.BiasReport) Prompt {
	s := stats.Compute(trades)
	wins, losses := streaks(trades)
	var maxWin, maxLoss float64
	if s.BestTrade != nil {
		maxWin = *s.BestTrade
	}
	if s.WorstTrade != nil {
		maxLoss = *s.WorstTrade
	}

	var b strings.Builder
	b.WriteString("BIAS ANALYSIS:\n\nRecent Trades (last 10):\n")
	b.WriteString(tradeSummaries(trades, 10))
	b.WriteString("\nTrader Metadata:\n")
	fmt.Fprintf(&b, "Total Trades: %d\n", s.TotalTrades)
	fmt.Fprintf(&b, "Win Rate: %.1f%%\n", s.WinRate)
	fmt.Fprintf(&b, "Average Win: $%.2f\n", s.AvgProfit)
	fmt.Fprintf(&b, "Average Loss: $%.2f\n", s.AvgLoss)
	fmt.Fprintf(&b, "Largest Win: $%.2f\n", maxWin)
	fmt.Fprintf(&b, "Largest Loss: $%.2f\n", maxLoss)
	fmt.Fprintf(&b, "Consecutive Wins: %d\n", wins)
	fmt.Fprintf(&b, "Consecutive Losses: %d\n", losses)

	b.WriteString("\nDETECTED BIASES:\n")
	if len(report.Biases) == 0 {
		b.WriteString("None\n")
	}
	for _, f := range report.Biases {
		fmt.Fprintf(&b, "- %s (%s, %d%% confidence): %s\n", f.Name, f.Severity, f.Confidence, f.Evidence)
	}
	fmt.Fprintf(&b, "Overall Risk Score: %d/100\n\n", report.OverallRiskScore)
	b.WriteString(`Explain what these findings mean for this trader and give specific recommendations.
Respond with JSON only: {"narrative": "text", "behavioralPattern": "short pattern description"}`)

	return Prompt{
		System: `You are a trading psychologist specializing in behavioral finance. You explain detected patterns for:
1. Loss Aversion (holding losers too long)
2. Overconfidence (taking excessive risk after wins)
3. Revenge Trading (trading emotionally after losses)
4. Confirmation Bias (seeking confirming information)
5. Anchoring (fixating on specific price levels)`,
		User: b.String(),
	}
}

// PerformanceReviewPrompt asks for a period review from computed stats.
func PerformanceReviewPrompt(s models.StatsResult, period string) Prompt {
	data, _ := json.MarshalIndent(s, "", "  ")
	return Prompt{
		System: `Generate a comprehensive trading performance review. Include:
1. Overall assessment (Excellent/Good/Fair/Poor)
2. Key strengths
3. Areas for improvement
4. Specific goals for next period
5. Action plan

Be encouraging but honest. Use specific metrics from the data.`,
		User: fmt.Sprintf("PERFORMANCE REVIEW - %s\n\nSTATISTICS:\n%s\n\nGenerate a detailed performance review with actionable insights.", period, data),
	}
}

func tradeSummaries(trades []models.Trade, n int) string {
	if len(trades) == 0 {
		return "No trades recorded\n"
	}
	var b strings.Builder
	for i, t := range trades[:min(n, len(trades))] {
		fmt.Fprintf(&b, "%d. %s %s: $%.2f (%dmin)\n", i+1, t.Symbol, t.Side.Type(), t.Profit, t.DurationMinutes)
	}
	return b.String()
}

// streaks returns the current win and loss run lengths from the newest trade.
func streaks(trades []models.Trade) (wins, losses int) {
	for _, t := range trades {
		if !t.IsWin() {
			break
		}
		wins++
	}
	for _, t := range trades {
		if !t.IsLoss() {
			break
		}
		losses++
	}
	return wins, losses
}

func optional(v *float64) string {
	if v == nil || *v == 0 {
		return "Not set"
	}
	return fmt.Sprintf("%g", *v)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
