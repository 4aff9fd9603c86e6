package store

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"trading-coach/internal/models"
)

// Property: saving a trade and reading it back yields the same trade, and
// GetTrades always returns timestamps in descending order.
func TestProperty_TradeRoundTripConsistency(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "property.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"AAPL", "TSLA", "MSFT", "NVDA", "EURUSD", "BTCUSD"}
	seq := 0

	properties.Property("Trade round-trip: save then retrieve produces equivalent data", prop.ForAll(
		func(symbolIdx int, short bool, entry, exit, size float64, minutes int, offsetMin int) bool {
			ctx := context.Background()
			seq++

			side := models.SideLong
			if short {
				side = models.SideShort
			}
			orig := models.Trade{
				ID:              fmt.Sprintf("prop-%d", seq),
				Symbol:          symbols[symbolIdx%len(symbols)],
				Side:            side,
				EntryPrice:      entry,
				ExitPrice:       exit,
				PositionSize:    size,
				Profit:          models.ComputeProfit(side, entry, exit, size),
				DurationMinutes: minutes,
				Timestamp:       time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC).Add(time.Duration(offsetMin) * time.Minute),
			}

			if err := store.SaveTrade(ctx, &orig); err != nil {
				t.Logf("Failed to save trade: %v", err)
				return false
			}

			got, err := store.GetTrade(ctx, orig.ID)
			if err != nil {
				t.Logf("Failed to get trade: %v", err)
				return false
			}
			return tradesEqual(orig, *got)
		},
		gen.IntRange(0, len(symbols)-1),
		gen.Bool(),
		gen.Float64Range(1, 5000),
		gen.Float64Range(1, 5000),
		gen.Float64Range(0.01, 1000),
		gen.IntRange(0, 5000),
		gen.IntRange(0, 100000),
	))

	properties.Property("GetTrades returns newest first", prop.ForAll(
		func(limit int) bool {
			trades, err := store.GetTrades(context.Background(), TradeFilter{Limit: limit})
			if err != nil {
				return false
			}
			for i := 1; i < len(trades); i++ {
				if trades[i].Timestamp.After(trades[i-1].Timestamp) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 60),
	))

	properties.TestingRun(t)
}

// tradesEqual compares two trades with floating point tolerance.
func tradesEqual(a, b models.Trade) bool {
	const tolerance = 1e-9

	return a.ID == b.ID &&
		a.Symbol == b.Symbol &&
		a.Side == b.Side &&
		a.Timestamp.Equal(b.Timestamp) &&
		a.DurationMinutes == b.DurationMinutes &&
		math.Abs(a.EntryPrice-b.EntryPrice) <= tolerance &&
		math.Abs(a.ExitPrice-b.ExitPrice) <= tolerance &&
		math.Abs(a.PositionSize-b.PositionSize) <= tolerance &&
		math.Abs(a.Profit-b.Profit) <= tolerance
}
