// Package bias diagnoses behavioral trading biases from a newest-first trade
// sequence. Each bias is a Rule made of small pure checks; the Engine runs the
// registered rules over the most recent window and folds the results into a
// BiasReport.
package bias

import (
	"math"

	"trading-coach/internal/models"
)

// pointsPerBias is the normalizer for the overall risk score.
const pointsPerBias = 25

// Engine evaluates bias rules. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	cfg   Config
	rules []Rule
}

// NewEngine creates an engine with the default rules.
func NewEngine(cfg Config) *Engine {
	return NewEngineWithRules(cfg, DefaultRules())
}

// NewEngineWithRules creates an engine evaluating exactly the given rules, in order.
func NewEngineWithRules(cfg Config, rules []Rule) *Engine {
	r := make([]Rule, len(rules))
	copy(r, rules)
	return &Engine{cfg: cfg, rules: r}
}

// Config returns the engine's thresholds.
func (e *Engine) Config() Config {
	return e.cfg
}

// Definitions describes every registered bias.
func (e *Engine) Definitions() []Definition {
	defs := make([]Definition, 0, len(e.rules))
	for _, r := range e.rules {
		defs = append(defs, Definition{
			Type:        r.Type,
			Name:        r.Name,
			Description: r.Description,
			Symptoms:    append([]string(nil), r.Symptoms...),
		})
	}
	return defs
}

// Analyze runs every rule over the most recent Window trades. Records that
// fail validation are skipped. With fewer than MinTrades usable trades the
// report is empty and carries a single insufficient-data recommendation.
func (e *Engine) Analyze(trades []models.Trade, market models.MarketContext) models.BiasReport {
	usable := validOnly(trades)
	if len(usable) < e.cfg.MinTrades {
		return models.BiasReport{
			Biases:          []models.BiasFinding{},
			Recommendations: []string{InsufficientDataRecommendation},
		}
	}

	recent := usable[:min(e.cfg.Window, len(usable))]
	in := Input{Trades: recent, Market: market, Config: e.cfg}

	findings := []models.BiasFinding{}
	for _, r := range e.rules {
		if f, ok := r.evaluate(in); ok {
			findings = append(findings, f)
		}
	}

	risk := OverallRiskScore(findings)
	return models.BiasReport{
		Biases:           findings,
		OverallRiskScore: risk,
		Confidence:       SampleConfidence(len(recent)),
		Recommendations:  OverallRecommendations(findings, risk),
		AnalyzedTrades:   len(recent),
	}
}

// OverallRiskScore normalizes the summed risk of detected biases against
// pointsPerBias each, scaled to 0-100. No findings scores 0.
func OverallRiskScore(findings []models.BiasFinding) int {
	if len(findings) == 0 {
		return 0
	}
	total := 0
	for _, f := range findings {
		total += f.RiskScore
	}
	score := math.Round(float64(total) / float64(len(findings)*pointsPerBias) * 100)
	return int(math.Min(100, score))
}

// SampleConfidence is the confidence in an analysis of n trades.
func SampleConfidence(n int) int {
	switch {
	case n >= 20:
		return 95
	case n >= 10:
		return 85
	case n >= 5:
		return 70
	default:
		return 50
	}
}

func validOnly(trades []models.Trade) []models.Trade {
	for i, t := range trades {
		if t.Validate() == nil {
			continue
		}
		// copy only once something has to be dropped
		out := make([]models.Trade, i, len(trades))
		copy(out, trades[:i])
		for _, rest := range trades[i+1:] {
			if rest.Validate() == nil {
				out = append(out, rest)
			}
		}
		return out
	}
	return trades
}
