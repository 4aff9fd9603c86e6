package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trading-coach/internal/analysis"
	"trading-coach/internal/models"
	"trading-coach/internal/store"
)

func (s *Server) tradeFilter(c *gin.Context) (store.TradeFilter, error) {
	var f store.TradeFilter
	var err error
	f.Symbol = strings.TrimSpace(c.Query("symbol"))
	if f.StartDate, err = parseDate(c.Query("startDate"), false); err != nil {
		return f, err
	}
	if f.EndDate, err = parseDate(c.Query("endDate"), true); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(c, "limit", 0); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Server) listTrades(c *gin.Context) {
	filter, err := s.tradeFilter(c)
	if err != nil {
		badRequest(c, "Invalid query", err)
		return
	}
	trades, err := s.deps.Store.GetTrades(c.Request.Context(), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(trades), "trades": trades})
}

func (s *Server) getTrade(c *gin.Context) {
	t, err := s.deps.Store.GetTrade(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trade": t})
}

func (s *Server) addTrade(c *gin.Context) {
	var entry models.TradeEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, "Missing required fields", err)
		return
	}
	t, err := models.NewTradeFromEntry(entry, s.now().UTC())
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.deps.Store.SaveTrade(c.Request.Context(), &t); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "trade": t, "message": "Trade added successfully"})
}

func (s *Server) updateTrade(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := s.deps.Store.GetTrade(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var u models.TradeUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		badRequest(c, "Invalid trade update", err)
		return
	}
	updated, err := current.Apply(u)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.deps.Store.UpdateTrade(ctx, &updated); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trade": updated, "message": "Trade updated successfully"})
}

func (s *Server) deleteTrade(c *gin.Context) {
	if err := s.deps.Store.DeleteTrade(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Trade deleted successfully"})
}

func (s *Server) tradeSummary(c *gin.Context) {
	trades, err := s.deps.Store.GetTrades(c.Request.Context(), store.TradeFilter{})
	if err != nil {
		s.fail(c, err)
		return
	}
	market, err := marketFromQuery(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	report, err := s.deps.Analyzer.Run(c.Request.Context(), trades, market)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"stats":        report.Stats,
		"patterns":     report.Patterns,
		"categories":   report.Categories,
		"heatmap":      report.Heatmap,
		"biasReport":   report.Biases,
		"recentTrades": report.RecentTrades,
		"notes":        report.Notes,
	})
}

func (s *Server) history(c *gin.Context) {
	filter, err := s.tradeFilter(c)
	if err != nil {
		badRequest(c, "Invalid query", err)
		return
	}
	trades, err := s.deps.Store.GetTrades(c.Request.Context(), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	valid, _ := analysis.Sanitize(trades)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"tradeCount": len(valid),
		"history":    analysis.BuildHistory(valid, s.now()),
	})
}
