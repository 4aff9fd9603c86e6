package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "trading-coach/internal/errors"
	"trading-coach/internal/models"
	"trading-coach/internal/store"
)

func parseTrend(raw string) (models.MarketTrend, error) {
	trend := models.MarketTrend(strings.ToLower(strings.TrimSpace(raw)))
	if trend == "" || trend.Valid() {
		return trend, nil
	}
	return "", apperrors.NewValidationError("", -1, "trend", raw, "trend must be bullish or bearish")
}

func marketFromQuery(c *gin.Context) (models.MarketContext, error) {
	trend, err := parseTrend(c.Query("trend"))
	if err != nil {
		return models.MarketContext{}, err
	}
	return models.MarketContext{Trend: trend, Condition: c.Query("condition")}, nil
}

func (s *Server) biases(c *gin.Context) {
	market, err := marketFromQuery(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	trades, err := s.deps.Store.GetTrades(c.Request.Context(), store.TradeFilter{})
	if err != nil {
		s.fail(c, err)
		return
	}
	engine := s.deps.Analyzer.Engine()
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"biasReport":  engine.Analyze(trades, market),
		"definitions": engine.Definitions(),
	})
}

type checkRequest struct {
	models.CandidateInput
	Trend string `json:"trend"`
}

func (s *Server) checkTrade(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing required fields", err)
		return
	}
	trend, err := parseTrend(req.Trend)
	if err != nil {
		s.fail(c, err)
		return
	}
	candidate, err := req.CandidateInput.Trade(s.now().UTC())
	if err != nil {
		s.fail(c, err)
		return
	}

	trades, err := s.deps.Store.GetTrades(c.Request.Context(), store.TradeFilter{EndDate: candidate.Timestamp})
	if err != nil {
		s.fail(c, err)
		return
	}
	preceding := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Timestamp.Before(candidate.Timestamp) {
			preceding = append(preceding, t)
		}
	}

	findings, err := s.deps.Analyzer.CheckTrade(candidate, preceding, models.MarketContext{Trend: trend})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"biases":    findings,
		"warning":   len(findings) > 0,
		"timestamp": candidate.Timestamp,
	})
}
