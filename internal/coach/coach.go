package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trading-coach/internal/analysis/stats"
	apperrors "trading-coach/internal/errors"
	"trading-coach/internal/logging"
	"trading-coach/internal/models"
	"trading-coach/internal/resilience"
	"trading-coach/internal/security"
	"trading-coach/pkg/utils"
)

// Source tells whether a response came from the model or from canned text.
type Source string

const (
	SourceAI   Source = "ai"
	SourceMock Source = "mock"
)

// Tuning per operation. Advice is kept short and bias narratives
// conservative.
var (
	adviceOptions = CompletionOptions{Temperature: 0.4, MaxTokens: 300}
	biasOptions   = CompletionOptions{Temperature: 0.2, MaxTokens: 400}
)

// Options configures a Coach.
type Options struct {
	// Completion tunes trade analysis and reviews.
	Completion CompletionOptions
	Retry      utils.RetryConfig
	// Breaker stops calling the model after repeated failures.
	Breaker resilience.Config
	// Mock answers every request with canned text.
	Mock bool
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	retry := utils.DefaultRetryConfig()
	retry.Retryable = retryable
	return Options{
		Completion: CompletionOptions{Temperature: 0.3, MaxTokens: 500},
		Retry:      retry,
		Breaker:    resilience.DefaultConfig(),
	}
}

// TradeAnalysis is a structured review of one trade.
type TradeAnalysis struct {
	SuccessFactors         []string `json:"successFactors"`
	Mistakes               []string `json:"mistakes"`
	ConfidenceScore        int      `json:"confidenceScore"`
	BehavioralInsights     string   `json:"behavioralInsights"`
	ImprovementSuggestions []string `json:"improvementSuggestions"`
	RiskAssessment         string   `json:"riskAssessment"`
	TechnicalAnalysis      string   `json:"technicalAnalysis"`
}

// AnalysisResult is a trade analysis and where it came from.
type AnalysisResult struct {
	Analysis TradeAnalysis `json:"analysis"`
	Source   Source        `json:"source"`
}

// AdviceResult is one piece of coaching advice.
type AdviceResult struct {
	Advice    string    `json:"advice"`
	Source    Source    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// ReviewResult is a period performance review.
type ReviewResult struct {
	Period     string             `json:"period"`
	Stats      models.StatsResult `json:"stats"`
	Assessment string             `json:"assessment"`
	Review     string             `json:"review"`
	Source     Source             `json:"source"`
	Timestamp  time.Time          `json:"timestamp"`
}

// BiasNarrative is a plain-language reading of a bias report.
type BiasNarrative struct {
	Narrative         string `json:"narrative"`
	BehavioralPattern string `json:"behavioralPattern"`
	Source            Source `json:"source"`
}

// Coach produces coaching text from engine output. Remote failures fall back
// to canned responses, so its methods only fail on bad input.
type Coach struct {
	client  LLMClient
	breaker *resilience.Breaker
	opts    Options
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a coach. A nil client forces mock mode.
func New(client LLMClient, opts Options, logger zerolog.Logger) *Coach {
	if client == nil {
		opts.Mock = true
	}
	return &Coach{
		client:  client,
		breaker: resilience.New("coach", opts.Breaker),
		opts:    opts,
		logger:  logging.WithOperation(logger, "coach"),
		now:     time.Now,
	}
}

// MockMode reports whether the coach never calls the model.
func (c *Coach) MockMode() bool {
	return c.opts.Mock
}

// Status reports "mock" in mock mode, otherwise the model circuit state.
func (c *Coach) Status() string {
	if c.opts.Mock {
		return string(SourceMock)
	}
	return string(c.breaker.State())
}

// AnalyzeTrade reviews one trade in the context of newest-first history.
func (c *Coach) AnalyzeTrade(ctx context.Context, t models.Trade, history []models.Trade, marketCondition string) (AnalysisResult, error) {
	if err := t.Validate(); err != nil {
		return AnalysisResult{}, err
	}
	fallback := AnalysisResult{Analysis: mockTradeAnalysis(t), Source: SourceMock}
	if c.opts.Mock {
		return fallback, nil
	}

	p := TradeAnalysisPrompt(t, NewTradeContext(history, marketCondition))
	reply, err := c.complete(ctx, "analyze_trade", p, c.opts.Completion)
	if err != nil {
		return fallback, nil
	}

	var analysis TradeAnalysis
	if err := decodeReply(reply, &analysis); err != nil {
		c.logger.Warn().Err(err).Str("trade_id", t.ID).Msg("Unparseable trade analysis, using canned response")
		return fallback, nil
	}
	return AnalysisResult{Analysis: analysis, Source: SourceAI}, nil
}

// Advice gives short real-time coaching for a market situation.
func (c *Coach) Advice(ctx context.Context, marketContext string, profile TraderProfile, recent []models.Trade) (AdviceResult, error) {
	if strings.TrimSpace(marketContext) == "" {
		return AdviceResult{}, apperrors.NewValidationError("", -1, "marketContext", marketContext, "market context required")
	}
	now := c.now().UTC()
	fallback := AdviceResult{Advice: mockAdvice(marketContext, len(recent)), Source: SourceMock, Timestamp: now}
	if c.opts.Mock {
		return fallback, nil
	}

	reply, err := c.complete(ctx, "advice", CoachingPrompt(marketContext, profile, recent, now), adviceOptions)
	if err != nil || strings.TrimSpace(reply) == "" {
		return fallback, nil
	}
	return AdviceResult{Advice: strings.TrimSpace(reply), Source: SourceAI, Timestamp: now}, nil
}

// Review writes a performance review of trades for a named period.
func (c *Coach) Review(ctx context.Context, trades []models.Trade, period string) (ReviewResult, error) {
	if period == "" {
		period = "All Time"
	}
	s := stats.Compute(trades)
	res := ReviewResult{
		Period:     period,
		Stats:      s,
		Assessment: reviewAssessment(s),
		Review:     mockReview(s, period),
		Source:     SourceMock,
		Timestamp:  c.now().UTC(),
	}
	if c.opts.Mock || s.TotalTrades == 0 {
		return res, nil
	}

	reply, err := c.complete(ctx, "review", PerformanceReviewPrompt(s, period), CompletionOptions{
		Temperature: c.opts.Completion.Temperature,
		MaxTokens:   max(c.opts.Completion.MaxTokens, 800),
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		return res, nil
	}
	res.Review = strings.TrimSpace(reply)
	res.Source = SourceAI
	return res, nil
}

// ExplainBiases narrates an engine bias report. The report is the source of
// truth; the model only words it.
func (c *Coach) ExplainBiases(ctx context.Context, trades []models.Trade, report models.BiasReport) (BiasNarrative, error) {
	fallback := mockBiasNarrative(report)
	fallback.Source = SourceMock
	if c.opts.Mock {
		return fallback, nil
	}

	reply, err := c.complete(ctx, "explain_biases", BiasNarrativePrompt(trades, report), biasOptions)
	if err != nil {
		return fallback, nil
	}
	var n BiasNarrative
	if err := decodeReply(reply, &n); err != nil || n.Narrative == "" {
		c.logger.Warn().Err(err).Msg("Unparseable bias narrative, using canned response")
		return fallback, nil
	}
	n.Source = SourceAI
	return n, nil
}

// complete calls the model with retry. Failures are logged and returned as
// CoachErrors so callers can fall back.
func (c *Coach) complete(ctx context.Context, op string, p Prompt, opts CompletionOptions) (string, error) {
	start := time.Now()
	reply, err := resilience.Call(c.breaker, func() (string, error) {
		return utils.RetryWithResult(ctx, c.opts.Retry, func() (string, error) {
			return c.client.CompleteWithSystem(ctx, p.System, p.User, opts)
		})
	})
	if errors.Is(err, resilience.ErrOpen) {
		c.logger.Debug().Str("op", op).Msg("Coach circuit open, skipping model call")
		return "", apperrors.NewCoachError(op, fmt.Errorf("%w: %v", apperrors.ErrCoachUnavailable, err))
	}
	logging.LogAPICall(c.logger, "POST", c.client.Model()+"/"+op, time.Since(start), err)
	if err != nil {
		c.logger.Warn().Str("error", security.MaskSecrets(err.Error())).Str("op", op).Msg("Coach model unavailable, using canned response")
		return "", apperrors.NewCoachError(op, fmt.Errorf("%w: %v", apperrors.ErrCoachUnavailable, err))
	}
	return reply, nil
}
