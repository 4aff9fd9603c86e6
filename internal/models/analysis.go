package models

// StatsResult holds aggregate performance metrics for a trade sequence.
// BestTrade and WorstTrade are nil for an empty sequence.
type StatsResult struct {
	TotalTrades  int      `json:"totalTrades"`
	WinRate      float64  `json:"winRate"`
	TotalProfit  float64  `json:"totalProfit"`
	AvgProfit    float64  `json:"avgProfit"`
	AvgLoss      float64  `json:"avgLoss"`
	ProfitFactor float64  `json:"profitFactor"`
	MaxDrawdown  float64  `json:"maxDrawdown"`
	SharpeRatio  float64  `json:"sharpeRatio"`
	Expectancy   float64  `json:"expectancy"`
	BestTrade    *float64 `json:"bestTrade,omitempty"`
	WorstTrade   *float64 `json:"worstTrade,omitempty"`
}

// CategoryFlags are independent classification flags for one trade.
type CategoryFlags struct {
	IsWin      bool `json:"isWin"`
	IsBigWin   bool `json:"isBigWin"`
	IsBigLoss  bool `json:"isBigLoss"`
	IsScalp    bool `json:"isScalp"`
	IsSwing    bool `json:"isSwing"`
	IsLongTerm bool `json:"isLongTerm"`
}

// CategorizedTrade is a copy of a trade decorated with its flags.
type CategorizedTrade struct {
	Trade
	Category CategoryFlags `json:"category"`
}

// CategorySummary counts categorized trades.
type CategorySummary struct {
	Wins      int `json:"wins"`
	Losses    int `json:"losses"`
	Breakeven int `json:"breakEven"`
	BigWins   int `json:"bigWins"`
	BigLosses int `json:"bigLosses"`
	Scalps    int `json:"scalps"`
	Swings    int `json:"swings"`
	LongTerm  int `json:"longTerm"`
}

// SymbolHeat is the per-symbol aggregate of a heatmap.
type SymbolHeat struct {
	Symbol     string  `json:"symbol"`
	Profit     float64 `json:"profit"`
	TradeCount int     `json:"trades"`
	WinRate    float64 `json:"winRate"`
}

// HeatmapResult aggregates profit by hour of day, weekday and symbol.
// Hourly is indexed 0-23, Daily 0-6 with Sunday at 0.
type HeatmapResult struct {
	Timezone string       `json:"timezone"`
	Hourly   [24]float64  `json:"hourly"`
	Daily    [7]float64   `json:"daily"`
	Symbols  []SymbolHeat `json:"symbols"`
}

// PatternType identifies a mechanical pattern over a trade sequence.
type PatternType string

const (
	PatternWinningStreak        PatternType = "winningStreak"
	PatternLosingStreak         PatternType = "losingStreak"
	PatternMartingale           PatternType = "martingalePattern"
	PatternRiskAversionAfterWin PatternType = "riskAversionAfterWin"
	PatternMorningSpecialist    PatternType = "morningSpecialist"
)

// PatternFinding is one detected pattern.
type PatternFinding struct {
	Type        PatternType `json:"type"`
	Confidence  int         `json:"confidence"`
	Description string      `json:"description"`
	Implication string      `json:"implication"`
}

// BiasType identifies a behavioral bias.
type BiasType string

const (
	BiasLossAversion     BiasType = "lossAversion"
	BiasOverconfidence   BiasType = "overconfidence"
	BiasRevengeTrading   BiasType = "revengeTrading"
	BiasConfirmationBias BiasType = "confirmationBias"
	BiasAnchoring        BiasType = "anchoring"
)

// Severity is the tier of a detected bias.
type Severity string

const (
	SeverityNone   Severity = ""
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities; higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	}
	return 0
}

// Max returns the more severe of s and o.
func (s Severity) Max(o Severity) Severity {
	if o.Rank() > s.Rank() {
		return o
	}
	return s
}

// RiskScore is the fixed risk points of a severity tier.
func (s Severity) RiskScore() int {
	switch s {
	case SeverityLow:
		return 15
	case SeverityMedium:
		return 30
	case SeverityHigh:
		return 50
	}
	return 0
}

// BiasFinding is one detected bias.
type BiasFinding struct {
	Type           BiasType `json:"type"`
	Name           string   `json:"name"`
	Confidence     int      `json:"confidence"`
	Severity       Severity `json:"severity"`
	Evidence       string   `json:"evidence"`
	RiskScore      int      `json:"riskScore"`
	Recommendation string   `json:"recommendation"`
}

// BiasReport is the result of a full bias analysis.
type BiasReport struct {
	Biases           []BiasFinding `json:"biases"`
	OverallRiskScore int           `json:"riskScore"`
	Confidence       int           `json:"confidence"`
	Recommendations  []string      `json:"recommendations"`
	AnalyzedTrades   int           `json:"analyzedTrades"`
}
