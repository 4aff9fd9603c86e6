package patterns

import (
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-coach/internal/models"
)

var now = time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)

// seq builds a newest-first sequence from profits and sizes, one hour apart.
func seq(profits, sizes []float64) []models.Trade {
	out := make([]models.Trade, len(profits))
	for i, p := range profits {
		out[i] = models.Trade{
			Symbol:          "ETH",
			Side:            models.SideLong,
			EntryPrice:      100,
			ExitPrice:       101,
			PositionSize:    sizes[i],
			Profit:          p,
			DurationMinutes: 30,
			Timestamp:       now.Add(-time.Duration(i) * time.Hour),
		}
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func types(findings []models.PatternFinding) []models.PatternType {
	out := make([]models.PatternType, len(findings))
	for i, f := range findings {
		out[i] = f.Type
	}
	return out
}

func TestDetect_TooFewTrades(t *testing.T) {
	assert.Empty(t, Detect(nil, nil))
	assert.NotNil(t, Detect(nil, nil))
	assert.Empty(t, Detect(seq([]float64{10, 10}, []float64{1, 1}), nil))
}

func TestDetect_WinningStreak(t *testing.T) {
	findings := Detect(seq(repeat(10, 5), repeat(1, 5)), time.UTC)

	require.Len(t, findings, 1)
	assert.Equal(t, models.PatternWinningStreak, findings[0].Type)
	assert.Equal(t, 85, findings[0].Confidence)
	assert.Equal(t, "5 consecutive winning trades", findings[0].Description)
	assert.NotContains(t, types(findings), models.PatternLosingStreak)
}

func TestDetect_LosingStreakIncludesBreakeven(t *testing.T) {
	findings := Detect(seq([]float64{-5, 0, -3}, repeat(1, 3)), time.UTC)

	require.Len(t, findings, 1)
	assert.Equal(t, models.PatternLosingStreak, findings[0].Type)
	assert.Equal(t, 90, findings[0].Confidence)
	assert.Equal(t, "3 consecutive losing trades", findings[0].Description)
}

func TestDetect_StreakUsesMostRecentFive(t *testing.T) {
	// newest five win, the older ones lose
	profits := []float64{5, 5, 5, 5, 5, -1, -1, -1}
	findings := Detect(seq(profits, repeat(1, len(profits))), time.UTC)

	assert.Contains(t, types(findings), models.PatternWinningStreak)
}

func TestDetect_Martingale(t *testing.T) {
	// chronologically: loss(1) -> 2, loss(2) -> 4
	profits := []float64{5, -5, 5, -5, 5}
	sizes := []float64{4, 2, 2, 1, 1}

	findings := Detect(seq(profits, sizes), time.UTC)

	assert.Contains(t, types(findings), models.PatternMartingale)
	assert.NotContains(t, types(findings), models.PatternRiskAversionAfterWin)
}

func TestDetect_MartingaleNeedsTwoOccurrences(t *testing.T) {
	profits := []float64{5, -5, 5, 5, 5}
	sizes := []float64{4, 1, 1, 1, 1}

	findings := Detect(seq(profits, sizes), time.UTC)

	assert.NotContains(t, types(findings), models.PatternMartingale)
}

func TestDetect_RiskAversionAfterWin(t *testing.T) {
	// chronologically: win(10) -> 5, win(5) -> 2
	profits := []float64{-1, 5, 5, -1}
	sizes := []float64{2, 5, 10, 10}

	findings := Detect(seq(profits, sizes), time.UTC)

	assert.Contains(t, types(findings), models.PatternRiskAversionAfterWin)
}

func TestDetect_MorningSpecialist(t *testing.T) {
	trades := seq(repeat(1, 11), repeat(1, 11))
	morning := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	for i := range trades {
		trades[i].Timestamp = morning.AddDate(0, 0, -i)
	}
	trades[0].Profit = -1 // break the streak so only the time pattern fires

	findings := Detect(trades, time.UTC)
	assert.Contains(t, types(findings), models.PatternMorningSpecialist)

	// exactly 11 trades is required to be strictly more than 10
	assert.NotContains(t, types(Detect(trades[:10], time.UTC)), models.PatternMorningSpecialist)
}

func TestDetect_MorningSpecialistCountsOlderTrades(t *testing.T) {
	trades := seq(repeat(1, 20), repeat(1, 20))
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for i := range trades {
		hour := 15
		if i >= 10 {
			hour = 10
		}
		trades[i].Timestamp = day.Add(time.Duration(hour) * time.Hour).AddDate(0, 0, -i)
	}
	assert.Contains(t, types(Detect(trades, time.UTC)), models.PatternMorningSpecialist)

	// 7 morning trades score exactly 0.7, which is not enough
	for i := 17; i < 20; i++ {
		trades[i].Timestamp = trades[i].Timestamp.Add(5 * time.Hour)
	}
	assert.NotContains(t, types(Detect(trades, time.UTC)), models.PatternMorningSpecialist)
}

func TestDetect_MorningSpecialistRespectsLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	trades := seq(repeat(1, 11), repeat(1, 11))
	morningUTC := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	for i := range trades {
		trades[i].Timestamp = morningUTC.AddDate(0, 0, -i)
	}

	assert.Contains(t, types(Detect(trades, time.UTC)), models.PatternMorningSpecialist)
	assert.NotContains(t, types(Detect(trades, tokyo)), models.PatternMorningSpecialist)
}

func TestProperty_DetectDeterministicAndBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	tradeGen := gen.Struct(reflect.TypeOf(models.Trade{}), map[string]gopter.Gen{
		"PositionSize": gen.Float64Range(0.1, 100),
		"Profit":       gen.Float64Range(-100, 100),
		"Timestamp":    gen.TimeRange(now.Add(-30*24*time.Hour), 30*24*time.Hour),
	})

	properties.Property("confidence in [0,100] and repeated calls agree", prop.ForAll(
		func(trades []models.Trade) bool {
			first := Detect(trades, time.UTC)
			for _, f := range first {
				if f.Confidence < 0 || f.Confidence > 100 {
					return false
				}
			}
			return reflect.DeepEqual(first, Detect(trades, time.UTC))
		},
		gen.SliceOf(tradeGen),
	))

	properties.Property("winning and losing streak never fire together", prop.ForAll(
		func(trades []models.Trade) bool {
			ts := types(Detect(trades, time.UTC))
			hasWin, hasLoss := false, false
			for _, tp := range ts {
				hasWin = hasWin || tp == models.PatternWinningStreak
				hasLoss = hasLoss || tp == models.PatternLosingStreak
			}
			return !(hasWin && hasLoss)
		},
		gen.SliceOf(tradeGen),
	))

	properties.TestingRun(t)
}
