package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "trading-coach/internal/errors"
)

// TradeUpdate is a partial edit of a stored trade. Nil fields are left alone.
type TradeUpdate struct {
	Symbol       *string    `json:"symbol"`
	Type         *string    `json:"type"`
	EntryPrice   *float64   `json:"entryPrice"`
	ExitPrice    *float64   `json:"exitPrice"`
	PositionSize *float64   `json:"positionSize"`
	Profit       *float64   `json:"profit"`
	Duration     *int       `json:"duration"`
	Timestamp    *time.Time `json:"timestamp"`
	StopLoss     *float64   `json:"stopLoss"`
	TakeProfit   *float64   `json:"takeProfit"`
	Notes        *string    `json:"notes"`
}

// Apply merges u into t. A change to price, size or side recomputes profit
// from prices; otherwise an explicit profit is taken as given.
func (t Trade) Apply(u TradeUpdate) (Trade, error) {
	repriced := false
	if u.Symbol != nil {
		t.Symbol = strings.TrimSpace(*u.Symbol)
	}
	if u.Type != nil {
		side, ok := SideFromType(strings.TrimSpace(*u.Type))
		if !ok {
			return Trade{}, apperrors.NewValidationError(t.ID, -1, "type", *u.Type, "type must be buy or sell")
		}
		repriced = repriced || side != t.Side
		t.Side = side
	}
	if u.EntryPrice != nil {
		t.EntryPrice = *u.EntryPrice
		repriced = true
	}
	if u.ExitPrice != nil {
		t.ExitPrice = *u.ExitPrice
		repriced = true
	}
	if u.PositionSize != nil {
		t.PositionSize = *u.PositionSize
		repriced = true
	}
	if u.Duration != nil {
		t.DurationMinutes = *u.Duration
	}
	if u.Timestamp != nil {
		t.Timestamp = *u.Timestamp
	}
	if u.StopLoss != nil {
		t.StopLoss = u.StopLoss
	}
	if u.TakeProfit != nil {
		t.TakeProfit = u.TakeProfit
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}

	switch {
	case repriced:
		t.Profit = ComputeProfit(t.Side, t.EntryPrice, t.ExitPrice, t.PositionSize)
	case u.Profit != nil:
		t.Profit = *u.Profit
	}

	if t.Symbol == "" {
		return Trade{}, apperrors.NewValidationError(t.ID, -1, "symbol", t.Symbol, "field is required")
	}
	if err := t.Validate(); err != nil {
		return Trade{}, err
	}
	return t, nil
}

// CandidateInput describes a trade about to be placed, for real-time bias
// screening. Prices are optional since the trade has not closed.
type CandidateInput struct {
	Symbol       string     `json:"symbol"`
	Type         string     `json:"type" validate:"required,oneof=buy sell"`
	PositionSize float64    `json:"positionSize" validate:"gt=0"`
	EntryPrice   float64    `json:"entryPrice" validate:"gte=0"`
	Timestamp    *time.Time `json:"timestamp"`
}

// Trade converts the candidate into an open trade. A missing timestamp means
// now.
func (c CandidateInput) Trade(now time.Time) (Trade, error) {
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	if err := validate.Struct(c); err != nil {
		return Trade{}, toValidationError("", -1, err)
	}
	side, _ := SideFromType(c.Type)
	ts := now
	if c.Timestamp != nil && !c.Timestamp.IsZero() {
		ts = *c.Timestamp
	}
	return Trade{
		ID:           uuid.New().String(),
		Symbol:       strings.TrimSpace(c.Symbol),
		Side:         side,
		EntryPrice:   c.EntryPrice,
		ExitPrice:    c.EntryPrice,
		PositionSize: c.PositionSize,
		Timestamp:    ts,
	}, nil
}

// ValidateCandidate checks the fields real-time screening needs from a trade
// that has not closed yet.
func (t Trade) ValidateCandidate() error {
	switch {
	case t.Timestamp.IsZero():
		return apperrors.NewValidationError(t.ID, -1, "timestamp", t.Timestamp, "timestamp is required")
	case t.Side != SideLong && t.Side != SideShort:
		return apperrors.NewValidationError(t.ID, -1, "side", t.Side, "side must be long or short")
	case !(t.PositionSize > 0):
		return apperrors.NewValidationError(t.ID, -1, "positionSize", t.PositionSize, "position size must be positive")
	}
	return nil
}
