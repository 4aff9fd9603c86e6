package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trading-coach/internal/analysis"
	"trading-coach/internal/models"
	"trading-coach/internal/store"
	"trading-coach/pkg/utils"
)

var weekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func addAnalysisCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newPatternsCmd(app))
	rootCmd.AddCommand(newHeatmapCmd(app))
	rootCmd.AddCommand(newBiasesCmd(app))
	rootCmd.AddCommand(newCheckCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
}

// runReport analyzes the stored trades matching the command's filter flags.
func runReport(cmd *cobra.Command, app *App, market models.MarketContext) (*analysis.Report, error) {
	filter, err := readFilter(cmd)
	if err != nil {
		return nil, err
	}
	trades, err := app.trades(cmd.Context(), filter)
	if err != nil {
		return nil, err
	}
	return app.Analyzer.Run(cmd.Context(), trades, market)
}

func trendFlag(cmd *cobra.Command) (models.MarketContext, error) {
	raw, _ := cmd.Flags().GetString("trend")
	trend := models.MarketTrend(strings.ToLower(strings.TrimSpace(raw)))
	if trend != "" && !trend.Valid() {
		return models.MarketContext{}, fmt.Errorf("invalid --trend %q: must be bullish or bearish", raw)
	}
	return models.MarketContext{Trend: trend}, nil
}

func newStatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show performance statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			report, err := runReport(cmd, app, models.MarketContext{})
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"stats":      report.Stats,
					"categories": report.Categories,
					"rejected":   report.Rejected,
				})
			}
			printStats(output, report.Stats)
			output.Println()
			printCategories(output, report.Categories)
			for _, r := range report.Rejected {
				output.Warning("skipped trade %s: %s", r.TradeID, r.Message)
			}
			return nil
		},
	}
	filterFlags(cmd)
	return cmd
}

func printStats(output *Output, s models.StatsResult) {
	output.Bold("Performance")
	output.Printf("  Trades:          %d\n", s.TotalTrades)
	output.Printf("  Win Rate:        %.1f%%\n", s.WinRate)
	output.Printf("  Total P&L:       %s\n", output.FormatPnL(s.TotalProfit))
	output.Printf("  Avg Win:         %s\n", utils.FormatMoney(s.AvgProfit))
	output.Printf("  Avg Loss:        %s\n", utils.FormatMoney(s.AvgLoss))
	output.Printf("  Profit Factor:   %.2f\n", s.ProfitFactor)
	output.Printf("  Expectancy:      %s\n", output.FormatPnL(s.Expectancy))
	output.Printf("  Max Drawdown:    %s\n", utils.FormatMoney(s.MaxDrawdown))
	output.Printf("  Sharpe Ratio:    %.2f\n", s.SharpeRatio)
	if s.BestTrade != nil && s.WorstTrade != nil {
		output.Printf("  Best / Worst:    %s / %s\n", output.FormatPnL(*s.BestTrade), output.FormatPnL(*s.WorstTrade))
	}
}

func printCategories(output *Output, c models.CategorySummary) {
	output.Bold("Categories")
	output.Printf("  Wins / Losses / Flat:     %d / %d / %d\n", c.Wins, c.Losses, c.Breakeven)
	output.Printf("  Big Wins / Big Losses:    %d / %d\n", c.BigWins, c.BigLosses)
	output.Printf("  Scalps / Swings / Long:   %d / %d / %d\n", c.Scalps, c.Swings, c.LongTerm)
}

func newPatternsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Detect streak, sizing and timing patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			report, err := runReport(cmd, app, models.MarketContext{})
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"patterns": report.Patterns, "notes": report.Notes})
			}
			if len(report.Patterns) == 0 {
				output.Dim("No patterns detected across %d trades", report.TradeCount)
				return nil
			}
			output.Bold("Detected Patterns")
			for _, p := range report.Patterns {
				output.Printf("  • %s (%d%% confidence)\n", p.Description, p.Confidence)
				output.Dim("    %s", p.Implication)
			}
			return nil
		},
	}
	filterFlags(cmd)
	return cmd
}

func newHeatmapCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Show profit by hour, weekday and symbol",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			report, err := runReport(cmd, app, models.MarketContext{})
			if err != nil {
				return err
			}
			h := report.Heatmap
			if output.IsJSON() {
				return output.JSON(h)
			}

			output.Bold("By Hour (%s)", h.Timezone)
			scale := maxAbs(h.Hourly[:])
			for hour, p := range h.Hourly {
				if p == 0 {
					continue
				}
				output.Printf("  %02d:00  %12s  %s\n", hour, output.FormatPnL(p), heatBar(p, scale, heatBarWidth))
			}
			output.Println()

			output.Bold("By Weekday")
			scale = maxAbs(h.Daily[:])
			for day, p := range h.Daily {
				output.Printf("  %s  %12s  %s\n", weekdays[day], output.FormatPnL(p), heatBar(p, scale, heatBarWidth))
			}
			output.Println()

			if len(h.Symbols) == 0 {
				return nil
			}
			table := NewTable(output, "Symbol", "Trades", "Win Rate", "P&L")
			for _, s := range h.Symbols {
				table.AddRow(s.Symbol, fmt.Sprint(s.TradeCount), fmt.Sprintf("%.1f%%", s.WinRate), output.FormatPnL(s.Profit))
			}
			return table.Render()
		},
	}
	filterFlags(cmd)
	return cmd
}

func newBiasesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "biases",
		Short: "Diagnose behavioral biases",
		Long: `Run the bias engine over the most recent trades.

Detects loss aversion, overconfidence, revenge trading, confirmation bias and
anchoring. Pass --trend to check trades against the prevailing market trend.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			market, err := trendFlag(cmd)
			if err != nil {
				return err
			}
			report, err := runReport(cmd, app, market)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(report.Biases)
			}
			printBiasReport(output, report.Biases)
			return nil
		},
	}
	filterFlags(cmd)
	cmd.Flags().String("trend", "", "market trend: bullish or bearish")
	return cmd
}

func printBiasReport(output *Output, r models.BiasReport) {
	output.Bold("Behavioral Risk: %s (confidence %d%%, %d trades analyzed)", output.RiskScore(r.OverallRiskScore), r.Confidence, r.AnalyzedTrades)
	output.Println()
	if len(r.Biases) > 0 {
		table := NewTable(output, "Bias", "Severity", "Confidence", "Evidence")
		for _, b := range r.Biases {
			table.AddRow(b.Name, output.Severity(b.Severity), fmt.Sprintf("%d%%", b.Confidence), truncate(b.Evidence, 60))
		}
		table.Render()
		output.Println()
	}
	output.Bold("Recommendations")
	for _, rec := range r.Recommendations {
		output.Printf("  • %s\n", rec)
	}
}

func newCheckCmd(app *App) *cobra.Command {
	var (
		in models.CandidateInput
		at string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Screen a trade before placing it",
		Long: `Check a trade you are about to place for revenge trading and
overconfidence, based on the trades that precede it.

Example:
  trading-coach check --symbol BTCUSD --type buy --size 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if at != "" {
				ts, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				in.Timestamp = &ts
			}
			market, err := trendFlag(cmd)
			if err != nil {
				return err
			}
			candidate, err := in.Trade(time.Now().UTC())
			if err != nil {
				return err
			}
			trades, err := app.trades(cmd.Context(), store.TradeFilter{EndDate: candidate.Timestamp})
			if err != nil {
				return err
			}
			preceding := make([]models.Trade, 0, len(trades))
			for _, t := range trades {
				if t.Timestamp.Before(candidate.Timestamp) {
					preceding = append(preceding, t)
				}
			}

			findings, err := app.Analyzer.CheckTrade(candidate, preceding, market)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"biases": findings, "warning": len(findings) > 0})
			}
			if len(findings) == 0 {
				output.Success("✓ No bias warnings for this trade")
				return nil
			}
			for _, f := range findings {
				output.Warning("⚠ %s [%s]: %s", f.Name, output.Severity(f.Severity), f.Evidence)
				output.Dim("  %s", f.Recommendation)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Symbol, "symbol", "", "instrument symbol")
	cmd.Flags().StringVar(&in.Type, "type", "", "buy or sell")
	cmd.Flags().Float64Var(&in.PositionSize, "size", 0, "position size")
	cmd.Flags().Float64Var(&in.EntryPrice, "price", 0, "intended entry price")
	cmd.Flags().StringVar(&at, "at", "", "entry time, RFC3339 (default: now)")
	cmd.Flags().String("trend", "", "market trend: bullish or bearish")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Compare performance by period and symbol",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			filter, err := readFilter(cmd)
			if err != nil {
				return err
			}
			trades, err := app.trades(cmd.Context(), filter)
			if err != nil {
				return err
			}
			valid, _ := analysis.Sanitize(trades)
			h := analysis.BuildHistory(valid, time.Now())
			if output.IsJSON() {
				return output.JSON(h)
			}

			periods := NewTable(output, "Period", "Trades", "Win Rate", "P&L", "Profit Factor")
			for _, p := range []struct {
				name string
				s    models.StatsResult
			}{
				{"Last 7 days", h.Periods.Weekly},
				{"Last 30 days", h.Periods.Monthly},
				{"All time", h.Periods.AllTime},
			} {
				periods.AddRow(p.name, fmt.Sprint(p.s.TotalTrades), fmt.Sprintf("%.1f%%", p.s.WinRate), output.FormatPnL(p.s.TotalProfit), fmt.Sprintf("%.2f", p.s.ProfitFactor))
			}
			if err := periods.Render(); err != nil {
				return err
			}
			output.Println()

			if len(h.SymbolPerformance) > 0 {
				symbols := NewTable(output, "Symbol", "Trades", "Win Rate", "P&L", "Avg / Trade")
				for _, sp := range h.SymbolPerformance {
					symbols.AddRow(sp.Symbol, fmt.Sprint(sp.Trades), fmt.Sprintf("%.1f%%", sp.WinRate), output.FormatPnL(sp.TotalProfit), output.FormatPnL(sp.AvgProfitPerTrade))
				}
				if err := symbols.Render(); err != nil {
					return err
				}
				output.Println()
			}

			output.Dim("Scalps %d · Swings %d · Long-term %d", h.Durations.Scalps, h.Durations.Swings, h.Durations.LongTerm)
			return nil
		},
	}
	filterFlags(cmd)
	return cmd
}
