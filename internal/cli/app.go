package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trading-coach/internal/analysis"
	"trading-coach/internal/coach"
	"trading-coach/internal/config"
	"trading-coach/internal/logging"
	"trading-coach/internal/models"
	"trading-coach/internal/store"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.DataStore
	Analyzer *analysis.Analyzer
	Coach    *coach.Coach
}

// setup loads configuration and opens services that were not injected.
func (a *App) setup(cmd *cobra.Command) error {
	if a.Config == nil {
		dir, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		a.Config = cfg
		a.Logger = logging.NewLoggerWithConfig(cfg.Logging)
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logging.SetDebugLevel()
		a.Logger = a.Logger.Level(zerolog.DebugLevel)
	}

	if a.Analyzer == nil {
		loc, err := a.Config.Location()
		if err != nil {
			return fmt.Errorf("invalid analysis timezone: %w", err)
		}
		a.Analyzer = analysis.NewAnalyzer(analysis.Options{
			Location:     loc,
			Bias:         a.Config.Analysis.Bias,
			RecentTrades: a.Config.Analysis.RecentTrades,
		}, a.Logger)
	}

	if a.Coach == nil {
		a.Coach = newCoach(a.Config, a.Logger)
	}
	return nil
}

// openStore opens the trade database on first use.
func (a *App) openStore() (store.DataStore, error) {
	if a.Store != nil {
		return a.Store, nil
	}
	st, err := store.NewSQLiteStore(a.Config.Storage.DBPath, a.Logger)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug().Str("path", a.Config.Storage.DBPath).Msg("SQLite store initialized")
	a.Store = st
	return st, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	return err
}

// trades loads stored trades newest first.
func (a *App) trades(ctx context.Context, filter store.TradeFilter) ([]models.Trade, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	return st.GetTrades(ctx, filter)
}

func newCoach(cfg *config.Config, logger zerolog.Logger) *coach.Coach {
	opts := coach.DefaultOptions()
	opts.Completion = coach.CompletionOptions{
		Temperature: cfg.Coach.Temperature,
		MaxTokens:   cfg.Coach.MaxTokens,
	}
	opts.Retry.MaxAttempts = cfg.Coach.MaxRetries + 1

	if cfg.MockCoach() {
		logger.Debug().Msg("Coach running on canned responses")
		return coach.New(nil, opts, logger)
	}
	client := coach.NewOpenAIClient(cfg.Credentials.Coach.APIKey, cfg.Coach.BaseURL, cfg.Coach.Model, cfg.Coach.Timeout)
	logger.Debug().Str("model", cfg.Coach.Model).Msg("Coach LLM client initialized")
	return coach.New(client, opts, logger)
}
