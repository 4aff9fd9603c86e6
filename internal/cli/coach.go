package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"trading-coach/internal/coach"
	"trading-coach/internal/models"
	"trading-coach/internal/store"
)

const adviceRecentTrades = 10

func addCoachCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "AI coaching: advice, reviews and trade analysis",
		Long: `Ask the coach for advice, a performance review or a trade analysis.

Without an API key the coach answers with built-in responses.`,
	}
	cmd.AddCommand(newAdviceCmd(app))
	cmd.AddCommand(newReviewCmd(app))
	cmd.AddCommand(newAnalyzeTradeCmd(app))
	rootCmd.AddCommand(cmd)
}

func sourceTag(output *Output, src coach.Source) string {
	if src == coach.SourceAI {
		return output.Green("[AI]")
	}
	return output.Yellow("[MOCK]")
}

// recordExchange saves a question and answer to a session when one is named.
func recordExchange(ctx context.Context, app *App, sessionID string, typ models.MessageType, question, answer string) error {
	if sessionID == "" {
		return nil
	}
	st, err := app.openStore()
	if err != nil {
		return err
	}
	if _, err := st.GetOrCreateSession(ctx, sessionID); err != nil {
		return err
	}
	for _, msg := range []*models.Message{
		{Role: "user", Content: question, Type: typ},
		{Role: "assistant", Content: answer, Type: typ},
	} {
		if err := st.AppendMessage(ctx, sessionID, msg); err != nil {
			return err
		}
	}
	return nil
}

func newAdviceCmd(app *App) *cobra.Command {
	var (
		profile   coach.TraderProfile
		sessionID string
	)
	cmd := &cobra.Command{
		Use:   "advice <market context>",
		Short: "Get short real-time coaching for a market situation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()
			marketContext := strings.Join(args, " ")
			recent, err := app.trades(ctx, store.TradeFilter{Limit: adviceRecentTrades})
			if err != nil {
				return err
			}
			res, err := app.Coach.Advice(ctx, marketContext, profile, recent)
			if err != nil {
				return err
			}
			if err := recordExchange(ctx, app, sessionID, models.MessageCoaching, marketContext, res.Advice); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(res)
			}
			output.Printf("%s %s\n", sourceTag(output, res.Source), res.Advice)
			return nil
		},
	}
	cmd.Flags().StringVar(&profile.Experience, "experience", "", "your trading experience")
	cmd.Flags().StringVar(&profile.RiskTolerance, "risk", "", "risk tolerance: low, medium or high")
	cmd.Flags().StringVar(&profile.Positions, "positions", "", "current open positions")
	cmd.Flags().StringVar(&sessionID, "session", "", "record the exchange in this session")
	return cmd
}

func newReviewCmd(app *App) *cobra.Command {
	var (
		period    string
		sessionID string
	)
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Write a performance review",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()
			filter, err := readFilter(cmd)
			if err != nil {
				return err
			}
			trades, err := app.trades(ctx, filter)
			if err != nil {
				return err
			}
			res, err := app.Coach.Review(ctx, trades, period)
			if err != nil {
				return err
			}
			if err := recordExchange(ctx, app, sessionID, models.MessageReview, "Review "+res.Period, res.Review); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(res)
			}
			output.Bold("%s Review: %s %s", res.Period, res.Assessment, sourceTag(output, res.Source))
			output.Println()
			output.Println(res.Review)
			return nil
		},
	}
	filterFlags(cmd)
	cmd.Flags().StringVar(&period, "period", "", "label for the review period (default: All Time)")
	cmd.Flags().StringVar(&sessionID, "session", "", "record the review in this session")
	return cmd
}

func newAnalyzeTradeCmd(app *App) *cobra.Command {
	var (
		market    string
		sessionID string
	)
	cmd := &cobra.Command{
		Use:   "analyze <trade-id>",
		Short: "Analyze one trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()
			st, err := app.openStore()
			if err != nil {
				return err
			}
			t, err := st.GetTrade(ctx, args[0])
			if err != nil {
				return err
			}
			history, err := st.GetTrades(ctx, store.TradeFilter{})
			if err != nil {
				return err
			}
			res, err := app.Coach.AnalyzeTrade(ctx, *t, history, market)
			if err != nil {
				return err
			}
			if err := recordExchange(ctx, app, sessionID, models.MessageAnalysis, "Analyze trade "+t.ID, res.Analysis.BehavioralInsights); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"trade": t, "analysis": res.Analysis, "source": res.Source})
			}

			a := res.Analysis
			output.Bold("%s %s %s  %s", sideLabel(t.Side), t.Symbol, output.FormatPnL(t.Profit), sourceTag(output, res.Source))
			output.Printf("  Confidence: %d%%   Risk: %s\n", a.ConfidenceScore, a.RiskAssessment)
			printList(output, "Success factors", a.SuccessFactors)
			printList(output, "Mistakes", a.Mistakes)
			printList(output, "Improvements", a.ImprovementSuggestions)
			if a.BehavioralInsights != "" {
				output.Println()
				output.Println("  " + a.BehavioralInsights)
			}
			if a.TechnicalAnalysis != "" {
				output.Dim("  %s", a.TechnicalAnalysis)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&market, "market", "", "market condition during the trade")
	cmd.Flags().StringVar(&sessionID, "session", "", "record the analysis in this session")
	return cmd
}

func printList(output *Output, title string, items []string) {
	if len(items) == 0 {
		return
	}
	output.Println()
	output.Bold("  %s", title)
	for _, it := range items {
		output.Printf("    • %s\n", it)
	}
}
