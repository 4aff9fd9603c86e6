package models

import (
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "trading-coach/internal/errors"
)

// TradeInput is the wire shape of a trade record before normalization.
// Pointer fields distinguish "missing" from zero.
type TradeInput struct {
	ID           string     `json:"id"`
	Symbol       string     `json:"symbol" validate:"required"`
	Type         string     `json:"type" validate:"omitempty,oneof=buy sell"`
	Side         string     `json:"side" validate:"omitempty,oneof=long short"`
	EntryPrice   *float64   `json:"entryPrice" validate:"required,gt=0"`
	ExitPrice    *float64   `json:"exitPrice" validate:"required,gt=0"`
	PositionSize *float64   `json:"positionSize" validate:"required,gt=0"`
	Profit       *float64   `json:"profit" validate:"required"`
	Duration     *int       `json:"duration" validate:"omitempty,gte=0"`
	Timestamp    *time.Time `json:"timestamp" validate:"required"`
	StopLoss     *float64   `json:"stopLoss" validate:"omitempty,gte=0"`
	TakeProfit   *float64   `json:"takeProfit" validate:"omitempty,gte=0"`
	Notes        string     `json:"notes"`
}

// TradeEntry is a manually entered trade whose profit is derived from prices.
type TradeEntry struct {
	Symbol       string   `json:"symbol" validate:"required"`
	Type         string   `json:"type" validate:"required,oneof=buy sell"`
	EntryPrice   float64  `json:"entryPrice" validate:"required,gt=0"`
	ExitPrice    float64  `json:"exitPrice" validate:"required,gt=0"`
	PositionSize float64  `json:"positionSize" validate:"required,gt=0"`
	Duration     int      `json:"duration" validate:"gte=0"`
	StopLoss     *float64 `json:"stopLoss" validate:"omitempty,gte=0"`
	TakeProfit   *float64 `json:"takeProfit" validate:"omitempty,gte=0"`
	Notes        string   `json:"notes"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize validates the input and converts it into a Trade. index is the
// record's position in its collection and is only used for error reporting.
func (in TradeInput) Normalize(index int) (Trade, error) {
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Side = strings.ToLower(strings.TrimSpace(in.Side))
	in.Symbol = strings.TrimSpace(in.Symbol)

	if err := validate.Struct(in); err != nil {
		return Trade{}, toValidationError(in.ID, index, err)
	}

	side, ok := SideFromType(in.Type)
	if !ok {
		side, ok = SideFromType(in.Side)
	}
	if !ok {
		return Trade{}, apperrors.NewValidationError(in.ID, index, "type", in.Type, "type (buy|sell) or side (long|short) is required")
	}

	t := Trade{
		ID:           in.ID,
		Symbol:       in.Symbol,
		Side:         side,
		EntryPrice:   *in.EntryPrice,
		ExitPrice:    *in.ExitPrice,
		PositionSize: *in.PositionSize,
		Profit:       *in.Profit,
		Timestamp:    *in.Timestamp,
		StopLoss:     in.StopLoss,
		TakeProfit:   in.TakeProfit,
		Notes:        in.Notes,
	}
	if in.Duration != nil {
		t.DurationMinutes = *in.Duration
	}
	if err := t.Validate(); err != nil {
		if ve, ok := err.(*apperrors.ValidationError); ok {
			ve.Index = index
		}
		return Trade{}, err
	}
	return t, nil
}

// NormalizeAll converts every valid record and returns one error per rejected
// record. Rejected records never prevent the remaining ones from converting.
func NormalizeAll(inputs []TradeInput) ([]Trade, []error) {
	trades := make([]Trade, 0, len(inputs))
	var rejected []error
	for i, in := range inputs {
		t, err := in.Normalize(i)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		trades = append(trades, t)
	}
	return trades, rejected
}

// NewTradeFromEntry builds a trade from a manual entry, deriving profit from
// the price difference and stamping it with now and a fresh ID.
func NewTradeFromEntry(e TradeEntry, now time.Time) (Trade, error) {
	e.Type = strings.ToLower(strings.TrimSpace(e.Type))
	if err := validate.Struct(e); err != nil {
		return Trade{}, toValidationError("", -1, err)
	}
	side, _ := SideFromType(e.Type)

	t := Trade{
		ID:              uuid.New().String(),
		Symbol:          strings.TrimSpace(e.Symbol),
		Side:            side,
		EntryPrice:      e.EntryPrice,
		ExitPrice:       e.ExitPrice,
		PositionSize:    e.PositionSize,
		DurationMinutes: e.Duration,
		Timestamp:       now,
		StopLoss:        e.StopLoss,
		TakeProfit:      e.TakeProfit,
		Notes:           e.Notes,
	}
	t.Profit = ComputeProfit(side, t.EntryPrice, t.ExitPrice, t.PositionSize)
	return t, nil
}

// ComputeProfit derives profit from prices, rounded to cents.
func ComputeProfit(side Side, entry, exit, size float64) float64 {
	diff := decimal.NewFromFloat(exit).Sub(decimal.NewFromFloat(entry))
	if side == SideShort {
		diff = diff.Neg()
	}
	return diff.Mul(decimal.NewFromFloat(size)).Round(2).InexactFloat64()
}

// Validate checks the fields every analysis depends on.
func (t Trade) Validate() error {
	switch {
	case t.Timestamp.IsZero():
		return apperrors.NewValidationError(t.ID, -1, "timestamp", t.Timestamp, "timestamp is required")
	case t.Side != SideLong && t.Side != SideShort:
		return apperrors.NewValidationError(t.ID, -1, "side", t.Side, "side must be long or short")
	case !(t.PositionSize > 0) || math.IsInf(t.PositionSize, 0):
		return apperrors.NewValidationError(t.ID, -1, "positionSize", t.PositionSize, "position size must be positive")
	case !(t.EntryPrice > 0) || math.IsInf(t.EntryPrice, 0):
		return apperrors.NewValidationError(t.ID, -1, "entryPrice", t.EntryPrice, "entry price must be positive")
	case !(t.ExitPrice > 0) || math.IsInf(t.ExitPrice, 0):
		return apperrors.NewValidationError(t.ID, -1, "exitPrice", t.ExitPrice, "exit price must be positive")
	case math.IsNaN(t.Profit) || math.IsInf(t.Profit, 0):
		return apperrors.NewValidationError(t.ID, -1, "profit", t.Profit, "profit must be a finite number")
	case t.DurationMinutes < 0:
		return apperrors.NewValidationError(t.ID, -1, "duration", t.DurationMinutes, "duration must be non-negative")
	}
	return nil
}

func toValidationError(id string, index int, err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperrors.NewValidationError(id, index, "", nil, err.Error())
	}
	fe := verrs[0]
	msg := "failed " + fe.Tag()
	if fe.Param() != "" {
		msg += "=" + fe.Param()
	}
	if fe.Tag() == "required" {
		msg = "field is required"
	}
	return apperrors.NewValidationError(id, index, fe.Field(), fe.Value(), msg)
}
