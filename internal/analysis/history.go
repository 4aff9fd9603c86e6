package analysis

import (
	"sort"
	"time"

	"trading-coach/internal/analysis/stats"
	"trading-coach/internal/models"
	"trading-coach/pkg/utils"
)

const (
	weekWindow     = 7 * 24 * time.Hour
	monthWindow    = 30 * 24 * time.Hour
	dailySeriesLen = 30
)

// PeriodStats compares the most recent week and month with all time.
type PeriodStats struct {
	Weekly  models.StatsResult `json:"weekly"`
	Monthly models.StatsResult `json:"monthly"`
	AllTime models.StatsResult `json:"allTime"`
}

// SymbolPerformance summarizes all trades in one symbol.
type SymbolPerformance struct {
	Symbol            string  `json:"symbol"`
	Trades            int     `json:"trades"`
	WinRate           float64 `json:"winRate"`
	TotalProfit       float64 `json:"totalProfit"`
	AvgProfitPerTrade float64 `json:"avgProfitPerTrade"`
	ProfitPerSize     float64 `json:"profitPerSize"`
}

// DailyPnL is one point of the daily profit chart.
type DailyPnL struct {
	Date       string  `json:"date"`
	Profit     float64 `json:"profit"`
	Cumulative float64 `json:"cumulative"`
}

// DurationBreakdown counts trades per holding-time category.
type DurationBreakdown struct {
	Scalps   int `json:"scalps"`
	Swings   int `json:"swings"`
	LongTerm int `json:"longTerm"`
}

// History is a period-oriented view of a trade snapshot.
type History struct {
	Periods           PeriodStats            `json:"periodComparison"`
	SymbolPerformance []SymbolPerformance    `json:"symbolPerformance"`
	Daily             []DailyPnL             `json:"daily"`
	Outcomes          models.CategorySummary `json:"categories"`
	Durations         DurationBreakdown      `json:"byDuration"`
}

// BuildHistory groups trades by period, symbol and calendar day. Days are UTC
// dates; only the latest dailySeriesLen days that have trades are charted.
func BuildHistory(trades []models.Trade, now time.Time) History {
	weekAgo, monthAgo := now.Add(-weekWindow), now.Add(-monthWindow)
	var weekly, monthly []models.Trade
	for _, t := range trades {
		if !t.Timestamp.Before(weekAgo) {
			weekly = append(weekly, t)
		}
		if !t.Timestamp.Before(monthAgo) {
			monthly = append(monthly, t)
		}
	}

	summary := stats.Summarize(stats.Categorize(trades))
	return History{
		Periods: PeriodStats{
			Weekly:  stats.Compute(weekly),
			Monthly: stats.Compute(monthly),
			AllTime: stats.Compute(trades),
		},
		SymbolPerformance: symbolPerformance(trades),
		Daily:             dailySeries(trades),
		Outcomes:          summary,
		Durations: DurationBreakdown{
			Scalps:   summary.Scalps,
			Swings:   summary.Swings,
			LongTerm: summary.LongTerm,
		},
	}
}

func symbolPerformance(trades []models.Trade) []SymbolPerformance {
	type acc struct {
		trades int
		wins   int
		profit float64
		size   float64
	}
	bySymbol := make(map[string]*acc)
	for _, t := range trades {
		a, ok := bySymbol[t.Symbol]
		if !ok {
			a = &acc{}
			bySymbol[t.Symbol] = a
		}
		a.trades++
		a.profit += t.Profit
		a.size += t.PositionSize
		if t.IsWin() {
			a.wins++
		}
	}

	out := make([]SymbolPerformance, 0, len(bySymbol))
	for sym, a := range bySymbol {
		sp := SymbolPerformance{
			Symbol:            sym,
			Trades:            a.trades,
			WinRate:           utils.Round(float64(a.wins)/float64(a.trades)*100, 1),
			TotalProfit:       utils.Round2(a.profit),
			AvgProfitPerTrade: utils.Round2(a.profit / float64(a.trades)),
		}
		if a.size > 0 {
			sp.ProfitPerSize = utils.Round2(a.profit / a.size)
		}
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalProfit != out[j].TotalProfit {
			return out[i].TotalProfit > out[j].TotalProfit
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

func dailySeries(trades []models.Trade) []DailyPnL {
	byDay := make(map[string]float64)
	for _, t := range trades {
		byDay[t.Timestamp.UTC().Format(time.DateOnly)] += t.Profit
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	if len(days) > dailySeriesLen {
		days = days[len(days)-dailySeriesLen:]
	}

	out := make([]DailyPnL, 0, len(days))
	var cumulative float64
	for _, d := range days {
		cumulative += byDay[d]
		out = append(out, DailyPnL{
			Date:       d,
			Profit:     utils.Round2(byDay[d]),
			Cumulative: utils.Round2(cumulative),
		})
	}
	return out
}
