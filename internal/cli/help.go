package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

type workflow struct {
	title    string
	commands []string
}

var workflows = []workflow{
	{
		title: "Record Trades",
		commands: []string{
			"trading-coach trades add --symbol BTCUSD --type buy --entry 95000 --exit 95950 --size 0.5 --duration 42",
			"trading-coach import trades.json       # Bulk import a JSON export",
			"trading-coach trades list --limit 20    # Newest first",
		},
	},
	{
		title: "Before You Trade",
		commands: []string{
			"trading-coach check --symbol BTCUSD --type buy --size 2  # Revenge and sizing warnings",
			"trading-coach coach advice BTC testing 96k resistance     # Quick coaching",
		},
	},
	{
		title: "End of Day Review",
		commands: []string{
			"trading-coach stats --since 2024-06-01  # Win rate, profit factor, drawdown",
			"trading-coach biases --trend bullish    # Behavioral bias report",
			"trading-coach heatmap                   # Best hours and weekdays",
			"trading-coach coach review --period Weekly --session journal",
		},
	},
	{
		title: "Run the API",
		commands: []string{
			"trading-coach serve --addr :3000        # JSON API with rate limiting",
			"trading-coach config show               # Effective configuration",
		},
	},
}

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflow examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				out := make(map[string][]string, len(workflows))
				for _, w := range workflows {
					out[w.title] = w.commands
				}
				return output.JSON(out)
			}

			output.Bold("Common Workflow Examples")
			output.Println()
			for _, w := range workflows {
				output.Bold(w.title)
				for _, c := range w.commands {
					parts := strings.SplitN(c, "#", 2)
					if len(parts) == 2 {
						output.Printf("  %s %s\n", output.Cyan(strings.TrimSpace(parts[0])), output.DimText(strings.TrimSpace(parts[1])))
					} else {
						output.Printf("  %s\n", output.Cyan(c))
					}
				}
				output.Println()
			}
			return nil
		},
	}
}
