package bias

import (
	"math"
	"strings"

	"trading-coach/internal/models"
)

// Input is what every check sees: the analysis window (newest first), the
// optional market hint and the engine configuration.
type Input struct {
	Trades []models.Trade
	Market models.MarketContext
	Config Config
}

// Combine says how a hit's confidence merges into the running total.
type Combine int

const (
	// Additive adds the hit's confidence.
	Additive Combine = iota
	// Floor raises the running confidence to at least the hit's confidence.
	Floor
)

// Hit is the outcome of one sub-check.
type Hit struct {
	Fired      bool
	Confidence int
	Severity   models.Severity
	Evidence   string
	Combine    Combine
}

// Check is a single pure predicate over the window.
type Check func(in Input) Hit

// Rule describes one bias: when it applies and which sub-checks feed it.
type Rule struct {
	Type        models.BiasType
	Name        string
	Description string
	Symptoms    []string
	// Applies gates the whole rule; nil means always.
	Applies func(in Input) bool
	Checks  []Check
}

// Definition is the descriptive part of a rule.
type Definition struct {
	Type        models.BiasType `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Symptoms    []string        `json:"symptoms"`
}

// DefaultRules returns the five built-in bias rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		lossAversionRule(),
		overconfidenceRule(),
		revengeTradingRule(),
		confirmationBiasRule(),
		anchoringRule(),
	}
}

// evaluate runs every sub-check of r and folds the hits together. Severity is
// the maximum raised by any hit; confidence is capped at 100.
func (r Rule) evaluate(in Input) (models.BiasFinding, bool) {
	if r.Applies != nil && !r.Applies(in) {
		return models.BiasFinding{}, false
	}

	var (
		fired      bool
		confidence int
		severity   models.Severity
		evidence   []string
	)
	for _, check := range r.Checks {
		h := check(in)
		if !h.Fired {
			continue
		}
		fired = true
		switch h.Combine {
		case Floor:
			if h.Confidence > confidence {
				confidence = h.Confidence
			}
		default:
			confidence += h.Confidence
		}
		severity = severity.Max(h.Severity)
		if h.Evidence != "" {
			evidence = append(evidence, h.Evidence)
		}
	}
	if !fired {
		return models.BiasFinding{}, false
	}
	if severity == models.SeverityNone {
		severity = models.SeverityLow
	}

	return models.BiasFinding{
		Type:           r.Type,
		Name:           r.Name,
		Confidence:     clampConfidence(confidence),
		Severity:       severity,
		Evidence:       strings.Join(evidence, "; "),
		RiskScore:      severity.RiskScore(),
		Recommendation: Recommendation(r.Type, severity),
	}, true
}

func clampConfidence(c int) int {
	return int(math.Max(0, math.Min(100, float64(c))))
}

// pairs calls fn for each of the most recent consecutive pairs, newest pair
// first, until fn returns false. prior is the chronologically earlier trade.
func pairs(trades []models.Trade, window int, fn func(prior, next models.Trade) bool) {
	for i := 1; i < min(window, len(trades)); i++ {
		if !fn(trades[i], trades[i-1]) {
			return
		}
	}
}

func splitOutcomes(trades []models.Trade) (wins, losses []models.Trade) {
	for _, t := range trades {
		switch {
		case t.IsWin():
			wins = append(wins, t)
		case t.IsLoss():
			losses = append(losses, t)
		}
	}
	return wins, losses
}

func mean(trades []models.Trade, f func(models.Trade) float64) float64 {
	if len(trades) == 0 {
		return 0
	}
	var sum float64
	for _, t := range trades {
		sum += f(t)
	}
	return sum / float64(len(trades))
}
