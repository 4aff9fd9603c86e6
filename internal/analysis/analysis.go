// Package analysis runs the trade analytics components over one trade
// snapshot and merges their results into a single report.
package analysis

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"trading-coach/internal/analysis/bias"
	"trading-coach/internal/analysis/heatmap"
	"trading-coach/internal/analysis/patterns"
	"trading-coach/internal/analysis/stats"
	apperrors "trading-coach/internal/errors"
	"trading-coach/internal/logging"
	"trading-coach/internal/models"
)

// DefaultRecentTrades is how many of the newest trades a report echoes back.
const DefaultRecentTrades = 10

// Options configures an Analyzer.
type Options struct {
	// Location is the zone hours and weekdays are read in. Nil means UTC.
	Location     *time.Location
	Bias         bias.Config
	RecentTrades int
}

// DefaultOptions returns UTC bucketing with the stock bias thresholds.
func DefaultOptions() Options {
	return Options{
		Location:     time.UTC,
		Bias:         bias.DefaultConfig(),
		RecentTrades: DefaultRecentTrades,
	}
}

// Analyzer validates trade snapshots and runs every analytics component
// over them. It is safe for concurrent use.
type Analyzer struct {
	engine *bias.Engine
	loc    *time.Location
	recent int
	logger zerolog.Logger
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(opts Options, logger zerolog.Logger) *Analyzer {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	recent := opts.RecentTrades
	if recent <= 0 {
		recent = DefaultRecentTrades
	}
	return &Analyzer{
		engine: bias.NewEngine(opts.Bias),
		loc:    loc,
		recent: recent,
		logger: logging.WithOperation(logger, "analysis"),
	}
}

// Engine returns the bias engine.
func (a *Analyzer) Engine() *bias.Engine {
	return a.engine
}

// Location returns the zone used for time bucketing.
func (a *Analyzer) Location() *time.Location {
	return a.loc
}

// Rejection describes a record excluded from analysis.
type Rejection struct {
	Index   int    `json:"index"`
	TradeID string `json:"tradeId,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Report is the merged output of every component.
type Report struct {
	GeneratedAt  time.Time                 `json:"generatedAt"`
	TradeCount   int                       `json:"tradeCount"`
	Stats        models.StatsResult        `json:"stats"`
	Categories   models.CategorySummary    `json:"categories"`
	Heatmap      models.HeatmapResult      `json:"heatmap"`
	Patterns     []models.PatternFinding   `json:"patterns"`
	Biases       models.BiasReport         `json:"biasReport"`
	RecentTrades []models.CategorizedTrade `json:"recentTrades"`
	Rejected     []Rejection               `json:"rejected,omitempty"`
	Notes        []string                  `json:"notes,omitempty"`
}

// Sanitize drops trades that fail validation, keeping the order of the rest.
// One error is returned per dropped trade.
func Sanitize(trades []models.Trade) ([]models.Trade, []error) {
	valid := make([]models.Trade, 0, len(trades))
	var rejected []error
	for i, t := range trades {
		if err := t.Validate(); err != nil {
			var ve *apperrors.ValidationError
			if errors.As(err, &ve) {
				ve.Index = i
			}
			rejected = append(rejected, err)
			continue
		}
		valid = append(valid, t)
	}
	return valid, rejected
}

// sortNewestFirst orders trades by descending timestamp in place. Ties keep
// their relative order.
func sortNewestFirst(trades []models.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp.After(trades[j].Timestamp)
	})
}

// RunInputs normalizes raw records and analyzes the ones that pass. Records
// may arrive in any order; they are sorted newest first before analysis.
func (a *Analyzer) RunInputs(ctx context.Context, inputs []models.TradeInput, market models.MarketContext) (*Report, error) {
	trades, rejected := models.NormalizeAll(inputs)
	sortNewestFirst(trades)
	report, err := a.Run(ctx, trades, market)
	if err != nil {
		return nil, err
	}
	report.Rejected = append(toRejections(rejected), report.Rejected...)
	return report, nil
}

// Run analyzes a newest-first snapshot. Invalid trades are reported and
// skipped. The components run concurrently; the snapshot is never written.
func (a *Analyzer) Run(ctx context.Context, trades []models.Trade, market models.MarketContext) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	valid, rejected := Sanitize(trades)
	for _, err := range rejected {
		logging.LogRejectedTrade(a.logger, err)
	}

	report := &Report{
		GeneratedAt: start.UTC(),
		TradeCount:  len(valid),
		Rejected:    toRejections(rejected),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.Stats = stats.Compute(valid)
		return nil
	})
	g.Go(func() error {
		cats := stats.Categorize(valid)
		report.Categories = stats.Summarize(cats)
		report.RecentTrades = cats[:min(a.recent, len(cats))]
		return nil
	})
	g.Go(func() error {
		report.Heatmap = heatmap.Build(valid, a.loc)
		return nil
	})
	g.Go(func() error {
		report.Patterns = patterns.Detect(valid, a.loc)
		return nil
	})
	g.Go(func() error {
		report.Biases = a.engine.Analyze(valid, market)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(valid) < patterns.MinTrades {
		report.Notes = append(report.Notes, "Pattern detection needs at least 3 trades")
	}
	if len(valid) < a.engine.Config().MinTrades {
		report.Notes = append(report.Notes, bias.InsufficientDataRecommendation)
	}

	for _, f := range report.Biases.Biases {
		logging.LogBias(a.logger, f)
	}
	logging.LogAnalysis(a.logger, len(valid), len(rejected), report.Biases, time.Since(start))

	return report, nil
}

// CheckTrade screens a candidate trade against recent history.
func (a *Analyzer) CheckTrade(candidate models.Trade, preceding []models.Trade, market models.MarketContext) ([]models.BiasFinding, error) {
	if err := candidate.ValidateCandidate(); err != nil {
		return nil, err
	}
	valid, _ := Sanitize(preceding)
	findings := a.engine.DetectRealTime(candidate, valid, market)
	for _, f := range findings {
		logging.LogBias(a.logger, f)
	}
	return findings, nil
}

func toRejections(errs []error) []Rejection {
	if len(errs) == 0 {
		return nil
	}
	out := make([]Rejection, 0, len(errs))
	for _, err := range errs {
		var ve *apperrors.ValidationError
		if errors.As(err, &ve) {
			out = append(out, Rejection{Index: ve.Index, TradeID: ve.TradeID, Field: ve.Field, Message: ve.Message})
			continue
		}
		out = append(out, Rejection{Index: -1, Message: err.Error()})
	}
	return out
}
