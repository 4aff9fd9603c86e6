package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"trading-coach/internal/models"
	"trading-coach/internal/store"
	"trading-coach/pkg/utils"
)

func addTradeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newTradesCmd(app))
	rootCmd.AddCommand(newImportCmd(app))
}

func newTradesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List, add and delete trades",
	}
	cmd.AddCommand(newTradesListCmd(app))
	cmd.AddCommand(newTradesAddCmd(app))
	cmd.AddCommand(newTradesDeleteCmd(app))
	return cmd
}

// filterFlags registers the trade selection flags shared by read commands.
func filterFlags(cmd *cobra.Command) {
	cmd.Flags().String("symbol", "", "only trades in this symbol")
	cmd.Flags().String("since", "", "only trades at or after this date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().String("until", "", "only trades at or before this date (YYYY-MM-DD or RFC3339)")
}

func readFilter(cmd *cobra.Command) (store.TradeFilter, error) {
	var f store.TradeFilter
	f.Symbol, _ = cmd.Flags().GetString("symbol")
	since, _ := cmd.Flags().GetString("since")
	until, _ := cmd.Flags().GetString("until")
	var err error
	if f.StartDate, err = parseDateFlag(since, false); err != nil {
		return f, fmt.Errorf("invalid --since: %w", err)
	}
	if f.EndDate, err = parseDateFlag(until, true); err != nil {
		return f, fmt.Errorf("invalid --until: %w", err)
	}
	if cmd.Flags().Lookup("limit") != nil {
		f.Limit, _ = cmd.Flags().GetInt("limit")
	}
	return f, nil
}

func parseDateFlag(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func newTradesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades, newest first",
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
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"count": len(trades), "trades": trades})
			}
			if len(trades) == 0 {
				output.Dim("No trades recorded")
				return nil
			}

			table := NewTable(output, "Time", "ID", "Symbol", "Side", "Entry", "Exit", "Size", "P&L", "Held", "Stop")
			for _, t := range trades {
				table.AddRow(
					formatTime(t.Timestamp, app.Config.UI.DateFormat),
					truncate(t.ID, 8),
					t.Symbol,
					sideLabel(t.Side),
					utils.FormatMoney(t.EntryPrice),
					utils.FormatMoney(t.ExitPrice),
					fmt.Sprintf("%g", t.PositionSize),
					output.FormatPnL(t.Profit),
					utils.FormatDuration(t.DurationMinutes),
					formatOptional(t.StopLoss),
				)
			}
			if err := table.Render(); err != nil {
				return err
			}
			output.Dim("%d trades", len(trades))
			return nil
		},
	}
	filterFlags(cmd)
	cmd.Flags().Int("limit", 0, "show at most this many trades")
	return cmd
}

func newTradesAddCmd(app *App) *cobra.Command {
	var (
		entry models.TradeEntry
		stop  float64
		take  float64
		at    string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a closed trade",
		Long: `Record a closed trade. Profit is computed from the prices, side and size.

Example:
  trading-coach trades add --symbol BTCUSD --type buy --entry 95000 --exit 95950 --size 0.5 --duration 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if cmd.Flags().Changed("stop") {
				entry.StopLoss = &stop
			}
			if cmd.Flags().Changed("target") {
				entry.TakeProfit = &take
			}
			ts := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				ts = parsed
			}

			t, err := models.NewTradeFromEntry(entry, ts.UTC())
			if err != nil {
				return err
			}
			st, err := app.openStore()
			if err != nil {
				return err
			}
			if err := st.SaveTrade(cmd.Context(), &t); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(t)
			}
			output.Success("✓ Trade %s recorded: %s %s %s", t.ID, sideLabel(t.Side), t.Symbol, output.FormatPnL(t.Profit))
			return nil
		},
	}
	cmd.Flags().StringVar(&entry.Symbol, "symbol", "", "instrument symbol")
	cmd.Flags().StringVar(&entry.Type, "type", "", "buy or sell")
	cmd.Flags().Float64Var(&entry.EntryPrice, "entry", 0, "entry price")
	cmd.Flags().Float64Var(&entry.ExitPrice, "exit", 0, "exit price")
	cmd.Flags().Float64Var(&entry.PositionSize, "size", 0, "position size")
	cmd.Flags().IntVar(&entry.Duration, "duration", 0, "holding time in minutes")
	cmd.Flags().Float64Var(&stop, "stop", 0, "stop loss price")
	cmd.Flags().Float64Var(&take, "target", 0, "take profit price")
	cmd.Flags().StringVar(&entry.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&at, "at", "", "trade time, RFC3339 (default: now)")
	return cmd
}

func newTradesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.openStore()
			if err != nil {
				return err
			}
			if err := st.DeleteTrade(cmd.Context(), args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Trade %s deleted", args[0])
			return nil
		},
	}
}

// importFile is either a bare array of trades or an object wrapping one.
type importFile struct {
	Trades []models.TradeInput `json:"trades"`
}

func decodeImport(data []byte) ([]models.TradeInput, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var inputs []models.TradeInput
		if err := json.Unmarshal(data, &inputs); err != nil {
			return nil, err
		}
		return inputs, nil
	}
	var f importFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Trades, nil
}

func newImportCmd(app *App) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import trades from a JSON file",
		Long: `Import trades from a JSON array (or an object with a "trades" array).

Each record needs symbol, type (buy|sell) or side (long|short), entryPrice,
exitPrice, positionSize, profit and timestamp. Malformed records are reported
and skipped; the rest are imported.

With --dry-run the file is analyzed on its own and nothing is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			inputs, err := decodeImport(data)
			if err != nil {
				return fmt.Errorf("invalid trade file: %w", err)
			}

			if dryRun {
				return previewImport(cmd, app, output, inputs)
			}

			trades, rejected := models.NormalizeAll(inputs)
			st, err := app.openStore()
			if err != nil {
				return err
			}
			for i := range trades {
				if trades[i].ID == "" {
					trades[i].ID = uuid.New().String()
				}
				if err := st.SaveTrade(cmd.Context(), &trades[i]); err != nil {
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"imported": len(trades),
					"rejected": rejectionMessages(rejected),
				})
			}
			output.Success("✓ Imported %d of %d trades", len(trades), len(inputs))
			for _, msg := range rejectionMessages(rejected) {
				output.Warning("  skipped: %s", msg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "analyze the file without importing it")
	return cmd
}

func previewImport(cmd *cobra.Command, app *App, output *Output, inputs []models.TradeInput) error {
	report, err := app.Analyzer.RunInputs(cmd.Context(), inputs, models.MarketContext{})
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(report)
	}
	output.Info("Dry run: %d of %d trades analyzed, nothing imported", report.TradeCount, len(inputs))
	output.Println()
	printStats(output, report.Stats)
	output.Println()
	printBiasReport(output, report.Biases)
	for _, r := range report.Rejected {
		output.Warning("skipped trade %s: %s", r.TradeID, r.Message)
	}
	return nil
}

func rejectionMessages(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}
