package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trading-coach/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Long: `Serve trades, analytics, coaching and sessions over HTTP.

The server stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore()
			if err != nil {
				return err
			}
			cfg := app.Config.Server
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}
			env := os.Getenv("APP_ENV")
			if env == "" {
				env = "development"
			}

			srv, err := server.New(server.Config{
				Addr:            cfg.Addr,
				Mode:            cfg.Mode,
				Environment:     env,
				RateLimitWindow: cfg.RateLimitWindow,
				RateLimitMax:    cfg.RateLimitMax,
				ReadTimeout:     cfg.ReadTimeout,
				WriteTimeout:    cfg.WriteTimeout,
			}, server.Deps{
				Store:    st,
				Analyzer: app.Analyzer,
				Coach:    app.Coach,
			}, app.Logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			output := NewOutput(cmd)
			if !output.IsJSON() {
				output.Info("Trading Coach API listening on %s (coach: %s)", cfg.Addr, coachMode(app))
			}
			return srv.Start(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	return cmd
}

func coachMode(app *App) string {
	if app.Coach.MockMode() {
		return "mock"
	}
	return "ai"
}
