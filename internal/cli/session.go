package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"trading-coach/internal/models"
	"trading-coach/internal/store"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect coaching sessions",
	}
	cmd.AddCommand(newSessionShowCmd(app))
	cmd.AddCommand(newSessionClearCmd(app))
	cmd.AddCommand(newSessionListCmd(app))
	return cmd
}

func newSessionShowCmd(app *App) *cobra.Command {
	var (
		limit int
		typ   string
	)
	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.openStore()
			if err != nil {
				return err
			}
			msgs, total, err := st.GetMessages(cmd.Context(), args[0], store.MessageFilter{
				Type:  models.MessageType(typ),
				Limit: limit,
			})
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"sessionId": args[0], "messages": msgs, "total": total})
			}
			if len(msgs) == 0 {
				output.Dim("No messages in session %s", args[0])
				return nil
			}
			for _, m := range msgs {
				who := output.Green(m.Role)
				if m.Role == "user" {
					who = output.Yellow(m.Role)
				}
				output.Printf("%s  %s [%s]\n", formatTime(m.Timestamp, app.Config.UI.DateFormat), who, m.Type)
				output.Printf("  %s\n\n", m.Content)
			}
			output.Dim("Showing %d of %d messages", len(msgs), total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "show the newest N messages")
	cmd.Flags().StringVar(&typ, "type", "all", "message type: all, coaching, analysis or review")
	return cmd
}

func newSessionClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <session-id>",
		Short: "Delete every message in a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.openStore()
			if err != nil {
				return err
			}
			if err := st.ClearMessages(cmd.Context(), args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"cleared": args[0]})
			}
			output.Success("✓ Session %s cleared", args[0])
			return nil
		},
	}
}

func newSessionListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions, most recently active first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.openStore()
			if err != nil {
				return err
			}
			sessions, err := st.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"sessions": sessions, "total": len(sessions)})
			}
			if len(sessions) == 0 {
				output.Dim("No sessions")
				return nil
			}
			table := NewTable(output, "Session", "Created", "Last Active", "Messages")
			for _, s := range sessions {
				table.AddRow(s.ID, formatTime(s.CreatedAt, app.Config.UI.DateFormat), formatTime(s.LastActive, app.Config.UI.DateFormat), fmt.Sprint(s.MessageCount))
			}
			return table.Render()
		},
	}
}
