package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trading-coach/internal/coach"
	"trading-coach/internal/models"
	"trading-coach/internal/store"
)

const adviceRecentTrades = 10

type analyzeRequest struct {
	MarketCondition string `json:"marketCondition"`
	SessionID       string `json:"sessionId"`
}

func (s *Server) analyzeTrade(c *gin.Context) {
	ctx := c.Request.Context()
	var req analyzeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	t, err := s.deps.Store.GetTrade(ctx, c.Param("tradeId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	history, err := s.deps.Store.GetTrades(ctx, store.TradeFilter{})
	if err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.deps.Coach.AnalyzeTrade(ctx, *t, history, req.MarketCondition)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.record(ctx, req.SessionID, models.MessageAnalysis, "Analyze trade "+t.ID, res.Analysis.BehavioralInsights)
	c.JSON(http.StatusOK, gin.H{"success": true, "analysis": res.Analysis, "source": res.Source, "trade": t})
}

type adviceRequest struct {
	MarketContext string              `json:"marketContext"`
	Profile       coach.TraderProfile `json:"profile"`
	SessionID     string              `json:"sessionId"`
}

func (s *Server) advice(c *gin.Context) {
	ctx := c.Request.Context()
	var req adviceRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.MarketContext) == "" {
		badRequest(c, "Market context required", nil)
		return
	}
	recent, err := s.deps.Store.GetTrades(ctx, store.TradeFilter{Limit: adviceRecentTrades})
	if err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.deps.Coach.Advice(ctx, req.MarketContext, req.Profile, recent)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.record(ctx, req.SessionID, models.MessageCoaching, req.MarketContext, res.Advice)
	c.JSON(http.StatusOK, gin.H{"success": true, "advice": res.Advice, "timestamp": res.Timestamp, "source": res.Source})
}

type reviewRequest struct {
	Period    string `json:"period"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Symbol    string `json:"symbol"`
	SessionID string `json:"sessionId"`
}

func (s *Server) review(c *gin.Context) {
	ctx := c.Request.Context()
	var req reviewRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	filter := store.TradeFilter{Symbol: strings.TrimSpace(req.Symbol)}
	var err error
	if filter.StartDate, err = parseDate(req.StartDate, false); err != nil {
		badRequest(c, "Invalid startDate", err)
		return
	}
	if filter.EndDate, err = parseDate(req.EndDate, true); err != nil {
		badRequest(c, "Invalid endDate", err)
		return
	}
	trades, err := s.deps.Store.GetTrades(ctx, filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.deps.Coach.Review(ctx, trades, req.Period)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.record(ctx, req.SessionID, models.MessageReview, "Review "+res.Period, res.Review)
	c.JSON(http.StatusOK, gin.H{"success": true, "review": res})
}

func (s *Server) explainBiases(c *gin.Context) {
	ctx := c.Request.Context()
	market, err := marketFromQuery(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	trades, err := s.deps.Store.GetTrades(ctx, store.TradeFilter{})
	if err != nil {
		s.fail(c, err)
		return
	}
	report := s.deps.Analyzer.Engine().Analyze(trades, market)
	n, err := s.deps.Coach.ExplainBiases(ctx, trades, report)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"biasReport":        report,
		"narrative":         n.Narrative,
		"behavioralPattern": n.BehavioralPattern,
		"source":            n.Source,
	})
}

// record appends a question and its answer to a session when one is named.
// Failures are logged and never fail the request.
func (s *Server) record(ctx context.Context, sessionID string, typ models.MessageType, question, answer string) {
	if sessionID == "" {
		return
	}
	for _, msg := range []*models.Message{
		{Role: "user", Content: question, Type: typ},
		{Role: "assistant", Content: answer, Type: typ},
	} {
		if err := s.deps.Store.AppendMessage(ctx, sessionID, msg); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to record coaching message")
			return
		}
	}
}
