package models

import (
	"math"
	"time"
)

// Side is the direction of a trade.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// SideFromType maps the journal's buy/sell type onto a trade side.
func SideFromType(t string) (Side, bool) {
	switch t {
	case "buy", "BUY", "long", "LONG":
		return SideLong, true
	case "sell", "SELL", "short", "SHORT":
		return SideShort, true
	}
	return "", false
}

// Type returns the buy/sell form of the side.
func (s Side) Type() string {
	if s == SideShort {
		return "sell"
	}
	return "buy"
}

// Outcome classifies a trade by its realized profit.
type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeLoss      Outcome = "loss"
	OutcomeBreakeven Outcome = "breakeven"
)

// Trade is a completed, validated trade. Profit is caller-supplied and is
// never recomputed by the analytics engine.
type Trade struct {
	ID              string    `json:"id"`
	Symbol          string    `json:"symbol"`
	Side            Side      `json:"side"`
	EntryPrice      float64   `json:"entryPrice"`
	ExitPrice       float64   `json:"exitPrice"`
	PositionSize    float64   `json:"positionSize"`
	Profit          float64   `json:"profit"`
	DurationMinutes int       `json:"duration"`
	Timestamp       time.Time `json:"timestamp"`
	StopLoss        *float64  `json:"stopLoss,omitempty"`
	TakeProfit      *float64  `json:"takeProfit,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// IsWin reports whether the trade made money.
func (t Trade) IsWin() bool {
	return t.Profit > 0
}

// IsLoss reports a realized loss. Breakeven trades are not realized losses.
func (t Trade) IsLoss() bool {
	return t.Profit < 0
}

// Outcome returns the win/loss/breakeven classification.
func (t Trade) Outcome() Outcome {
	switch {
	case t.Profit > 0:
		return OutcomeWin
	case t.Profit < 0:
		return OutcomeLoss
	default:
		return OutcomeBreakeven
	}
}

// Notional is entry price times position size.
func (t Trade) Notional() float64 {
	return t.EntryPrice * t.PositionSize
}

// ProfitPercent is profit relative to notional, in percent. Zero notional yields 0.
func (t Trade) ProfitPercent() float64 {
	n := t.Notional()
	if n == 0 {
		return 0
	}
	return t.Profit / n * 100
}

// PriceMove is the absolute exit-entry move as a fraction of entry price.
func (t Trade) PriceMove() float64 {
	if t.EntryPrice == 0 {
		return 0
	}
	return math.Abs(t.ExitPrice-t.EntryPrice) / t.EntryPrice
}

// HasStopLoss reports whether a stop loss was set.
func (t Trade) HasStopLoss() bool {
	return t.StopLoss != nil && *t.StopLoss != 0
}

// HasBracket reports whether both stop loss and take profit were set.
func (t Trade) HasBracket() bool {
	return t.HasStopLoss() && t.TakeProfit != nil && *t.TakeProfit != 0
}

// MarketTrend is an optional trend hint supplied with an analysis request.
type MarketTrend string

const (
	TrendBullish MarketTrend = "bullish"
	TrendBearish MarketTrend = "bearish"
)

// Valid reports whether the trend is one of the known values.
func (m MarketTrend) Valid() bool {
	return m == TrendBullish || m == TrendBearish
}

// MarketContext carries optional hints for bias analysis.
type MarketContext struct {
	Trend     MarketTrend `json:"trend,omitempty"`
	Condition string      `json:"condition,omitempty"`
}

// Opposes reports whether a trade side goes against the trend.
func (m MarketContext) Opposes(side Side) bool {
	switch m.Trend {
	case TrendBullish:
		return side == SideShort
	case TrendBearish:
		return side == SideLong
	}
	return false
}
