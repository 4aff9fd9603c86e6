package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"trading-coach/internal/models"
	"trading-coach/pkg/utils"
)

const heatBarWidth = 20

// heatBar draws value as a bar scaled against maxAbs. Gains use '+', losses
// '-'. A non-zero value always gets at least one cell.
func heatBar(value, maxAbs float64, width int) string {
	if value == 0 || maxAbs <= 0 || width <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return ""
	}
	n := int(math.Round(math.Abs(value) / maxAbs * float64(width)))
	n = max(1, min(n, width))
	if value > 0 {
		return strings.Repeat("+", n)
	}
	return strings.Repeat("-", n)
}

func maxAbs(values []float64) float64 {
	var m float64
	for _, v := range values {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

// sideLabel prints a side the way traders enter it.
func sideLabel(s models.Side) string {
	return strings.ToUpper(s.Type())
}

// Severity colors a bias severity.
func (o *Output) Severity(s models.Severity) string {
	label := strings.ToUpper(string(s))
	switch s {
	case models.SeverityHigh:
		return o.Red(label)
	case models.SeverityMedium:
		return o.Yellow(label)
	}
	return label
}

// RiskScore colors an overall risk score.
func (o *Output) RiskScore(score int) string {
	s := fmt.Sprintf("%d/100", score)
	switch {
	case score >= 60:
		return o.Red(s)
	case score >= 30:
		return o.Yellow(s)
	}
	return o.Green(s)
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	if layout == "" {
		layout = "2006-01-02 15:04"
	}
	return t.Local().Format(layout)
}

func formatOptional(v *float64) string {
	if v == nil || *v == 0 {
		return "-"
	}
	return utils.FormatMoney(*v)
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
