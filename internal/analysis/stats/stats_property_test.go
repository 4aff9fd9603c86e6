package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trading-coach/internal/models"
)

// tradeGen generates closed trades with signed profits and arbitrary durations.
func tradeGen() gopter.Gen {
	return gen.Struct(reflect.TypeOf(models.Trade{}), map[string]gopter.Gen{
		"Symbol":          gen.OneConstOf("AAPL", "MSFT", "TSLA", "BTC"),
		"Side":            gen.OneConstOf(models.SideLong, models.SideShort),
		"EntryPrice":      gen.Float64Range(1, 1000),
		"ExitPrice":       gen.Float64Range(1, 1000),
		"PositionSize":    gen.Float64Range(0.01, 500),
		"Profit":          gen.Float64Range(-5000, 5000),
		"DurationMinutes": gen.IntRange(0, 5000),
		"Timestamp":       gen.TimeRange(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 365*24*time.Hour),
	})
}

func tradesGen() gopter.Gen {
	return gen.SliceOf(tradeGen())
}

func TestProperty_WinRateBoundsAndCount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("winRate in [0,100] and totalTrades equals length", prop.ForAll(
		func(trades []models.Trade) bool {
			res := Compute(trades)
			return res.WinRate >= 0 && res.WinRate <= 100 && res.TotalTrades == len(trades)
		},
		tradesGen(),
	))

	properties.TestingRun(t)
}

func TestProperty_Idempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("Compute and Categorize are deterministic", prop.ForAll(
		func(trades []models.Trade) bool {
			return reflect.DeepEqual(Compute(trades), Compute(trades)) &&
				reflect.DeepEqual(Categorize(trades), Categorize(trades))
		},
		tradesGen(),
	))

	properties.TestingRun(t)
}

func TestProperty_Drawdown(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("maxDrawdown is never negative", prop.ForAll(
		func(trades []models.Trade) bool {
			return Compute(trades).MaxDrawdown >= 0
		},
		tradesGen(),
	))

	properties.Property("non-decreasing equity curve has zero drawdown", prop.ForAll(
		func(profits []float64) bool {
			trades := make([]models.Trade, len(profits))
			for i, p := range profits {
				trades[i] = trade(p, 1, 0)
			}
			return MaxDrawdown(trades) == 0
		},
		gen.SliceOf(gen.Float64Range(0, 1000)),
	))

	properties.TestingRun(t)
}

func TestProperty_ProfitFactorSentinel(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("all-winning sequence reports 99", prop.ForAll(
		func(profits []float64) bool {
			trades := make([]models.Trade, len(profits))
			for i, p := range profits {
				trades[i] = trade(p, 1, 0)
			}
			return Compute(trades).ProfitFactor == NoLossProfitFactor
		},
		gen.SliceOfN(5, gen.Float64Range(0.01, 1000)),
	))

	properties.TestingRun(t)
}

func TestProperty_CategoryFlags(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("exactly one duration flag is set", prop.ForAll(
		func(tr models.Trade) bool {
			f := Flags(tr)
			n := 0
			for _, set := range []bool{f.IsScalp, f.IsSwing, f.IsLongTerm} {
				if set {
					n++
				}
			}
			return n == 1
		},
		tradeGen(),
	))

	properties.Property("isWin follows profit sign", prop.ForAll(
		func(tr models.Trade) bool {
			return Flags(tr).IsWin == (tr.Profit > 0)
		},
		tradeGen(),
	))

	properties.Property("summary counts add up", prop.ForAll(
		func(trades []models.Trade) bool {
			s := Summarize(Categorize(trades))
			return s.Wins+s.Losses+s.Breakeven == len(trades) &&
				s.Scalps+s.Swings+s.LongTerm == len(trades)
		},
		tradesGen(),
	))

	properties.TestingRun(t)
}
