package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trading-coach/internal/errors"
)

func storedTrade() Trade {
	return Trade{
		ID:              "t1",
		Symbol:          "ETHUSD",
		Side:            SideShort,
		EntryPrice:      3000,
		ExitPrice:       2950,
		PositionSize:    2,
		Profit:          100,
		DurationMinutes: 20,
		Timestamp:       ts,
	}
}

func TestApply_RepricingRecomputesProfit(t *testing.T) {
	got, err := storedTrade().Apply(TradeUpdate{ExitPrice: f(3100), Profit: f(999)})
	require.NoError(t, err)
	assert.Equal(t, 3100.0, got.ExitPrice)
	assert.Equal(t, -200.0, got.Profit)

	buy := "buy"
	got, err = storedTrade().Apply(TradeUpdate{Type: &buy})
	require.NoError(t, err)
	assert.Equal(t, SideLong, got.Side)
	assert.Equal(t, -100.0, got.Profit)
}

func TestApply_ExplicitProfit(t *testing.T) {
	notes := "fees included"
	got, err := storedTrade().Apply(TradeUpdate{Profit: f(92.5), Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, 92.5, got.Profit)
	assert.Equal(t, "fees included", got.Notes)
	assert.Equal(t, 2950.0, got.ExitPrice)

	sell := "sell"
	got, err = storedTrade().Apply(TradeUpdate{Type: &sell, Profit: f(90)})
	require.NoError(t, err)
	assert.Equal(t, 90.0, got.Profit, "same side is not a reprice")
}

func TestApply_Rejects(t *testing.T) {
	empty := " "
	_, err := storedTrade().Apply(TradeUpdate{Symbol: &empty})
	assert.ErrorIs(t, err, apperrors.ErrInputValidation)

	hold := "hold"
	_, err = storedTrade().Apply(TradeUpdate{Type: &hold})
	assert.ErrorIs(t, err, apperrors.ErrInputValidation)

	_, err = storedTrade().Apply(TradeUpdate{PositionSize: f(0)})
	assert.ErrorIs(t, err, apperrors.ErrInputValidation)
}

func TestCandidateInput_Trade(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	tr, err := CandidateInput{Symbol: "BTCUSD", Type: " Buy ", PositionSize: 2}.Trade(now)
	require.NoError(t, err)
	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, SideLong, tr.Side)
	assert.Equal(t, now, tr.Timestamp)
	assert.Equal(t, 0.0, tr.Profit)
	assert.NoError(t, tr.ValidateCandidate())

	at := now.Add(-time.Hour)
	tr, err = CandidateInput{Symbol: "BTCUSD", Type: "sell", PositionSize: 1, EntryPrice: 95000, Timestamp: &at}.Trade(now)
	require.NoError(t, err)
	assert.Equal(t, at, tr.Timestamp)
	assert.Equal(t, tr.EntryPrice, tr.ExitPrice)

	_, err = CandidateInput{Symbol: "BTCUSD", Type: "buy"}.Trade(now)
	assert.ErrorIs(t, err, apperrors.ErrInputValidation)
	_, err = CandidateInput{Symbol: "BTCUSD", PositionSize: 1}.Trade(now)
	assert.ErrorIs(t, err, apperrors.ErrInputValidation)
}

func TestValidateCandidate(t *testing.T) {
	assert.Error(t, Trade{Side: SideLong, PositionSize: 1}.ValidateCandidate())
	assert.Error(t, Trade{Timestamp: ts, PositionSize: 1}.ValidateCandidate())
	assert.Error(t, Trade{Timestamp: ts, Side: SideShort}.ValidateCandidate())
	assert.NoError(t, Trade{Timestamp: ts, Side: SideShort, PositionSize: 0.5}.ValidateCandidate())
}
