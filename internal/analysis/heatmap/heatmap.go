// Package heatmap aggregates realized profit by hour of day, weekday and symbol.
package heatmap

import (
	"sort"
	"time"

	"trading-coach/internal/models"
	"trading-coach/pkg/utils"
)

type symbolAcc struct {
	profit float64
	trades int
	wins   int
}

// Build aggregates trades in a single pass. Hours and weekdays are taken
// from each timestamp converted to loc; a nil loc means UTC.
func Build(trades []models.Trade, loc *time.Location) models.HeatmapResult {
	if loc == nil {
		loc = time.UTC
	}

	res := models.HeatmapResult{Timezone: loc.String()}
	bySymbol := make(map[string]*symbolAcc)

	for _, t := range trades {
		ts := t.Timestamp.In(loc)
		res.Hourly[ts.Hour()] += t.Profit
		res.Daily[int(ts.Weekday())] += t.Profit

		acc, ok := bySymbol[t.Symbol]
		if !ok {
			acc = &symbolAcc{}
			bySymbol[t.Symbol] = acc
		}
		acc.profit += t.Profit
		acc.trades++
		if t.IsWin() {
			acc.wins++
		}
	}

	for i := range res.Hourly {
		res.Hourly[i] = utils.Round2(res.Hourly[i])
	}
	for i := range res.Daily {
		res.Daily[i] = utils.Round2(res.Daily[i])
	}

	res.Symbols = make([]models.SymbolHeat, 0, len(bySymbol))
	for sym, acc := range bySymbol {
		res.Symbols = append(res.Symbols, models.SymbolHeat{
			Symbol:     sym,
			Profit:     utils.Round2(acc.profit),
			TradeCount: acc.trades,
			WinRate:    utils.Round(float64(acc.wins)/float64(acc.trades)*100, 1),
		})
	}
	sort.Slice(res.Symbols, func(i, j int) bool {
		a, b := res.Symbols[i], res.Symbols[j]
		if a.Profit != b.Profit {
			return a.Profit > b.Profit
		}
		return a.Symbol < b.Symbol
	})

	return res
}
