package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"trading-coach/pkg/utils"
)

// Output handles formatted output for the CLI.
type Output struct {
	writer       io.Writer
	jsonMode     bool
	colorEnabled bool
}

// NewOutput creates a new Output instance.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	return &Output{
		writer:       cmd.OutOrStdout(),
		jsonMode:     jsonMode,
		colorEnabled: !jsonMode && !noColor && !color.NoColor && isTerminal(cmd.OutOrStdout()),
	}
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// JSON outputs data as JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

func (o *Output) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if o.colorEnabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (o *Output) line(c *color.Color, format string, args ...interface{}) {
	fmt.Fprintln(o.writer, c.Sprintf(format, args...))
}

// Success prints a success message in green.
func (o *Output) Success(format string, args ...interface{}) {
	o.line(o.paint(color.FgGreen), format, args...)
}

// Error prints an error message in red.
func (o *Output) Error(format string, args ...interface{}) {
	o.line(o.paint(color.FgRed), format, args...)
}

// Warning prints a warning message in yellow.
func (o *Output) Warning(format string, args ...interface{}) {
	o.line(o.paint(color.FgYellow), format, args...)
}

// Info prints an info message in cyan.
func (o *Output) Info(format string, args ...interface{}) {
	o.line(o.paint(color.FgCyan), format, args...)
}

// Bold prints a bold message.
func (o *Output) Bold(format string, args ...interface{}) {
	o.line(o.paint(color.Bold), format, args...)
}

// Dim prints a dimmed message.
func (o *Output) Dim(format string, args ...interface{}) {
	o.line(o.paint(color.Faint), format, args...)
}

// Green returns green colored text.
func (o *Output) Green(text string) string {
	return o.paint(color.FgGreen).Sprint(text)
}

// Red returns red colored text.
func (o *Output) Red(text string) string {
	return o.paint(color.FgRed).Sprint(text)
}

// Yellow returns yellow colored text.
func (o *Output) Yellow(text string) string {
	return o.paint(color.FgYellow).Sprint(text)
}

// Cyan returns cyan colored text.
func (o *Output) Cyan(text string) string {
	return o.paint(color.FgCyan).Sprint(text)
}

// DimText returns dimmed text.
func (o *Output) DimText(text string) string {
	return o.paint(color.Faint).Sprint(text)
}

// FormatPnL formats P&L with sign and color.
func (o *Output) FormatPnL(pnl float64) string {
	s := utils.FormatPnL(pnl)
	switch {
	case pnl > 0:
		return o.Green(s)
	case pnl < 0:
		return o.Red(s)
	}
	return s
}

// FormatPercent formats a percentage with sign and color.
func (o *Output) FormatPercent(pct float64) string {
	s := utils.FormatPercent(pct)
	switch {
	case pct > 0:
		return o.Green(s)
	case pct < 0:
		return o.Red(s)
	}
	return s
}

// Table renders rows under a header.
type Table struct {
	tw *tablewriter.Table
}

// NewTable creates a table writing to the output.
func NewTable(output *Output, headers ...string) *Table {
	tw := tablewriter.NewWriter(output.writer)
	tw.Header(toAny(headers)...)
	return &Table{tw: tw}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.tw.Append(toAny(cells)...)
}

// Render renders the table.
func (t *Table) Render() error {
	return t.tw.Render()
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
