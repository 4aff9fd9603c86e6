package analysis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trading-coach/internal/errors"
	"trading-coach/internal/models"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func trade(id, symbol string, profit float64, ts time.Time) models.Trade {
	return models.Trade{
		ID:              id,
		Symbol:          symbol,
		Side:            models.SideLong,
		EntryPrice:      50,
		ExitPrice:       50 + profit,
		PositionSize:    1,
		Profit:          profit,
		DurationMinutes: 45,
		Timestamp:       ts,
	}
}

func newestFirst(n int) []models.Trade {
	out := make([]models.Trade, n)
	for i := range out {
		p := 10.0
		if i%3 == 0 {
			p = -5
		}
		out[i] = trade("t"+string(rune('a'+i)), "AAPL", p, now.Add(-time.Duration(i)*6*time.Hour))
	}
	return out
}

func TestRun_MergesComponents(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), zerolog.Nop())
	trades := newestFirst(12)

	report, err := a.Run(context.Background(), trades, models.MarketContext{})
	require.NoError(t, err)

	assert.Equal(t, 12, report.TradeCount)
	assert.Equal(t, 12, report.Stats.TotalTrades)
	assert.Equal(t, 12, report.Categories.Wins+report.Categories.Losses+report.Categories.Breakeven)
	assert.NotNil(t, report.Patterns)
	assert.Equal(t, 12, report.Biases.AnalyzedTrades)
	assert.Len(t, report.RecentTrades, DefaultRecentTrades)
	assert.Equal(t, trades[0].ID, report.RecentTrades[0].ID)
	assert.Empty(t, report.Rejected)
	assert.Empty(t, report.Notes)
}

func TestRun_RejectsInvalidWithoutAborting(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), zerolog.Nop())
	trades := newestFirst(6)
	trades[1].Timestamp = time.Time{}
	trades[4].PositionSize = -1

	report, err := a.Run(context.Background(), trades, models.MarketContext{})
	require.NoError(t, err)

	assert.Equal(t, 4, report.TradeCount)
	require.Len(t, report.Rejected, 2)
	assert.Equal(t, 1, report.Rejected[0].Index)
	assert.Equal(t, "timestamp", report.Rejected[0].Field)
	assert.Equal(t, 4, report.Rejected[1].Index)
	assert.Equal(t, "positionSize", report.Rejected[1].Field)
	assert.Contains(t, report.Notes, "Need more trade data for analysis")
}

func TestRun_CancelledContext(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Run(ctx, newestFirst(5), models.MarketContext{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_EmptySnapshot(t *testing.T) {
	report, err := NewAnalyzer(DefaultOptions(), zerolog.Nop()).Run(context.Background(), nil, models.MarketContext{})
	require.NoError(t, err)

	assert.Nil(t, report.Stats.BestTrade)
	assert.Empty(t, report.Patterns)
	assert.Empty(t, report.Biases.Biases)
	assert.Len(t, report.Notes, 2)
}

func TestRunInputs_ReportsMalformedRecords(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	ts := now
	inputs := []models.TradeInput{
		{ID: "ok", Symbol: "AAPL", Type: "buy", EntryPrice: f(10), ExitPrice: f(11), PositionSize: f(1), Profit: f(1), Timestamp: &ts},
		{ID: "no-profit", Symbol: "AAPL", Type: "buy", EntryPrice: f(10), ExitPrice: f(11), PositionSize: f(1), Timestamp: &ts},
	}

	report, err := NewAnalyzer(DefaultOptions(), zerolog.Nop()).RunInputs(context.Background(), inputs, models.MarketContext{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.TradeCount)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, "no-profit", report.Rejected[0].TradeID)
	assert.Equal(t, "profit", report.Rejected[0].Field)
}

func TestRunInputs_SortsChronologicalFiles(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	var inputs []models.TradeInput
	for i, p := range []float64{-10, 20, 30} {
		at := now.Add(time.Duration(i-2) * time.Hour)
		inputs = append(inputs, models.TradeInput{
			ID: fmt.Sprintf("t%d", i), Symbol: "AAPL", Type: "buy",
			EntryPrice: f(10), ExitPrice: f(11), PositionSize: f(1), Profit: f(p), Timestamp: &at,
		})
	}

	report, err := NewAnalyzer(DefaultOptions(), zerolog.Nop()).RunInputs(context.Background(), inputs, models.MarketContext{})
	require.NoError(t, err)
	require.Len(t, report.RecentTrades, 3)
	assert.Equal(t, "t2", report.RecentTrades[0].ID)
	assert.Equal(t, "t0", report.RecentTrades[2].ID)
}

func TestCheckTrade(t *testing.T) {
	a := NewAnalyzer(DefaultOptions(), zerolog.Nop())
	preceding := []models.Trade{trade("l", "AAPL", -20, now)}
	candidate := trade("c", "AAPL", 0, now.Add(3*time.Minute))

	findings, err := a.CheckTrade(candidate, preceding, models.MarketContext{})
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, models.BiasRevengeTrading, findings[0].Type)

	candidate.PositionSize = 0
	_, err = a.CheckTrade(candidate, preceding, models.MarketContext{})
	assert.ErrorIs(t, err, apperrors.ErrInputValidation)
}

func TestSortNewestFirst(t *testing.T) {
	trades := []models.Trade{
		trade("old", "A", 1, now.Add(-2*time.Hour)),
		trade("new", "A", 1, now),
		trade("mid", "A", 1, now.Add(-time.Hour)),
	}
	sortNewestFirst(trades)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{trades[0].ID, trades[1].ID, trades[2].ID})
}

func TestBuildHistory(t *testing.T) {
	trades := []models.Trade{
		trade("1", "AAPL", 100, now.Add(-time.Hour)),
		trade("2", "TSLA", -40, now.Add(-3*24*time.Hour)),
		trade("3", "AAPL", -20, now.Add(-10*24*time.Hour)),
		trade("4", "MSFT", 5, now.Add(-60*24*time.Hour)),
	}
	trades[3].DurationMinutes = 2000

	h := BuildHistory(trades, now)

	assert.Equal(t, 2, h.Periods.Weekly.TotalTrades)
	assert.Equal(t, 3, h.Periods.Monthly.TotalTrades)
	assert.Equal(t, 4, h.Periods.AllTime.TotalTrades)
	assert.Equal(t, 60.0, h.Periods.Weekly.TotalProfit)

	require.Len(t, h.SymbolPerformance, 3)
	assert.Equal(t, SymbolPerformance{
		Symbol:            "AAPL",
		Trades:            2,
		WinRate:           50,
		TotalProfit:       80,
		AvgProfitPerTrade: 40,
		ProfitPerSize:     40,
	}, h.SymbolPerformance[0])
	assert.Equal(t, "TSLA", h.SymbolPerformance[2].Symbol)

	require.Len(t, h.Daily, 4)
	assert.Equal(t, "2024-04-11", h.Daily[0].Date)
	assert.Equal(t, "2024-06-10", h.Daily[3].Date)
	assert.Equal(t, 45.0, h.Daily[3].Cumulative)

	assert.Equal(t, 3, h.Durations.Scalps)
	assert.Equal(t, 1, h.Durations.LongTerm)
	assert.Equal(t, 2, h.Outcomes.Wins)
}
