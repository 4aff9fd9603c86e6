package bias

import (
	"fmt"
	"time"

	apperrors "trading-coach/internal/errors"
)

// Config holds every threshold the bias rules use. It is immutable once
// handed to an Engine.
type Config struct {
	MinTrades  int `mapstructure:"min_trades"`
	Window     int `mapstructure:"window"`
	PairWindow int `mapstructure:"pair_window"`

	LossDurationRatio     float64 `mapstructure:"loss_duration_ratio"`
	LossDurationHighRatio float64 `mapstructure:"loss_duration_high_ratio"`
	LossMagnitudeRatio    float64 `mapstructure:"loss_magnitude_ratio"`

	WinStreak        int     `mapstructure:"win_streak"`
	WinStreakHigh    int     `mapstructure:"win_streak_high"`
	PostWinSizeRatio float64 `mapstructure:"post_win_size_ratio"`

	QuickReentry      time.Duration `mapstructure:"quick_reentry"`
	PostLossSizeRatio float64       `mapstructure:"post_loss_size_ratio"`
	LossPeriodTrades  int           `mapstructure:"loss_period_trades"`
	FrequencySpike    float64       `mapstructure:"frequency_spike"`

	DirectionWindow      int     `mapstructure:"direction_window"`
	OneSidedFraction     float64 `mapstructure:"one_sided_fraction"`
	AgainstTrendFraction float64 `mapstructure:"against_trend_fraction"`

	AnchorMaxMove        float64 `mapstructure:"anchor_max_move"`
	AnchorMinMinutes     int     `mapstructure:"anchor_min_minutes"`
	AnchorMinTrades      int     `mapstructure:"anchor_min_trades"`
	RequireBracketOrders bool    `mapstructure:"require_bracket_orders"`

	RealTimeReentry   time.Duration `mapstructure:"realtime_reentry"`
	RealTimeSizeRatio float64       `mapstructure:"realtime_size_ratio"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		MinTrades:  5,
		Window:     20,
		PairWindow: 5,

		LossDurationRatio:     1.5,
		LossDurationHighRatio: 2.0,
		LossMagnitudeRatio:    2.0,

		WinStreak:        3,
		WinStreakHigh:    5,
		PostWinSizeRatio: 1.3,

		QuickReentry:      5 * time.Minute,
		PostLossSizeRatio: 1.5,
		LossPeriodTrades:  5,
		FrequencySpike:    1.5,

		DirectionWindow:      10,
		OneSidedFraction:     0.8,
		AgainstTrendFraction: 0.7,

		AnchorMaxMove:    0.01,
		AnchorMinMinutes: 120,
		AnchorMinTrades:  2,

		RealTimeReentry:   15 * time.Minute,
		RealTimeSizeRatio: 1.2,
	}
}

// Validate checks that windows and ratios are usable.
func (c Config) Validate() error {
	switch {
	case c.MinTrades < 1:
		return fmt.Errorf("%w: bias.min_trades must be at least 1", apperrors.ErrConfigInvalid)
	case c.Window < c.MinTrades:
		return fmt.Errorf("%w: bias.window must be >= bias.min_trades", apperrors.ErrConfigInvalid)
	case c.PairWindow < 2:
		return fmt.Errorf("%w: bias.pair_window must be at least 2", apperrors.ErrConfigInvalid)
	case c.DirectionWindow < 1:
		return fmt.Errorf("%w: bias.direction_window must be at least 1", apperrors.ErrConfigInvalid)
	case c.LossPeriodTrades < 1:
		return fmt.Errorf("%w: bias.loss_period_trades must be at least 1", apperrors.ErrConfigInvalid)
	case c.QuickReentry <= 0 || c.RealTimeReentry <= 0:
		return fmt.Errorf("%w: bias re-entry windows must be positive", apperrors.ErrConfigInvalid)
	case c.OneSidedFraction <= 0 || c.OneSidedFraction > 1,
		c.AgainstTrendFraction <= 0 || c.AgainstTrendFraction > 1:
		return fmt.Errorf("%w: bias direction fractions must be in (0,1]", apperrors.ErrConfigInvalid)
	case c.LossDurationHighRatio < c.LossDurationRatio:
		return fmt.Errorf("%w: bias.loss_duration_high_ratio must be >= loss_duration_ratio", apperrors.ErrConfigInvalid)
	case c.WinStreakHigh < c.WinStreak:
		return fmt.Errorf("%w: bias.win_streak_high must be >= win_streak", apperrors.ErrConfigInvalid)
	}
	return nil
}
