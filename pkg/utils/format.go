// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Round rounds half away from zero to the given number of decimal places.
// NaN and infinities collapse to 0 so they never reach a result payload.
func Round(value float64, places int32) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// Round2 rounds to cents.
func Round2(value float64) float64 {
	return Round(value, 2)
}

// FormatMoney formats an amount with a dollar sign and thousands separators.
func FormatMoney(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := decimal.NewFromFloat(amount).StringFixed(2)
	parts := strings.SplitN(str, ".", 2)
	result := "$" + groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats P&L with an explicit sign for gains.
func FormatPnL(pnl float64) string {
	formatted := FormatMoney(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatDuration formats a holding time given in minutes.
func FormatDuration(minutes int) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	default:
		return fmt.Sprintf("%dd %dh", minutes/1440, (minutes%1440)/60)
	}
}
