// Package cli provides the command-line interface for the trading coach.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trading-coach/internal/config"
	"trading-coach/internal/security"
	"trading-coach/internal/server"
)

// Version information
const (
	Version   = server.Version
	BuildDate = "2024-06-01"
)

// NewRootCmd creates the root command for the CLI. Configuration is loaded
// from the --config directory before any command runs.
func NewRootCmd(logger zerolog.Logger) *cobra.Command {
	return newRootCmd(&App{Logger: logger})
}

// newRootCmd builds the command tree around app. Services already set on app
// are used as is.
func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trading-coach",
		Short: "Trading Coach - trade analytics and behavioral bias detection",
		Long: `Trading Coach records your trades, measures performance and flags
behavioral biases such as revenge trading, overconfidence and loss aversion.

It can run as a JSON API server ('trading-coach serve') or be used directly
from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trading-coach)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newExamplesCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newServeCmd(app))
	addTradeCommands(rootCmd, app)
	addAnalysisCommands(rootCmd, app)
	addCoachCommands(rootCmd, app)
	rootCmd.AddCommand(newSessionCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Trading Coach v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(redacted(app.Config))
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := config.ConfigPath(app.Config.Dir)
			if output.IsJSON() {
				return output.JSON(map[string]string{"dir": app.Config.Dir, "path": path})
			}
			output.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

// redacted returns a copy of cfg with secrets masked.
func redacted(cfg *config.Config) config.Config {
	c := *cfg
	c.Credentials.Coach.APIKey = security.MaskCredential(c.Credentials.Coach.APIKey)
	return c
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Server")
	output.Printf("  Address:         %s\n", cfg.Server.Addr)
	output.Printf("  Mode:            %s\n", cfg.Server.Mode)
	output.Printf("  Rate Limit:      %d requests / %s\n", cfg.Server.RateLimitMax, cfg.Server.RateLimitWindow)
	output.Println()

	output.Bold("Storage")
	output.Printf("  Database:        %s\n", cfg.Storage.DBPath)
	output.Println()

	output.Bold("Coach")
	mode := "ai"
	if cfg.MockCoach() {
		mode = "mock"
	}
	output.Printf("  Mode:            %s\n", mode)
	output.Printf("  Model:           %s\n", cfg.Coach.Model)
	output.Printf("  Base URL:        %s\n", cfg.Coach.BaseURL)
	output.Printf("  Temperature:     %.2f\n", cfg.Coach.Temperature)
	output.Printf("  Max Tokens:      %d\n", cfg.Coach.MaxTokens)
	output.Println()

	output.Bold("Analysis")
	output.Printf("  Timezone:        %s\n", cfg.Analysis.Timezone)
	output.Printf("  Recent Trades:   %d\n", cfg.Analysis.RecentTrades)
	output.Printf("  Bias Window:     %d trades (min %d)\n", cfg.Analysis.Bias.Window, cfg.Analysis.Bias.MinTrades)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  File:            %s\n", cfg.Logging.FilePath)
}
