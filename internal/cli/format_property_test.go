package cli

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestProperty_HeatBar(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("bar length is within 1..width and sign matches", prop.ForAll(
		func(value, scale float64, width int) bool {
			ref := math.Abs(value) * scale
			bar := heatBar(value, ref, width)
			if value == 0 || ref == 0 {
				return bar == ""
			}
			if len(bar) < 1 || len(bar) > width {
				t.Logf("value=%f ref=%f width=%d bar=%q", value, ref, width, bar)
				return false
			}
			want := "+"
			if value < 0 {
				want = "-"
			}
			return strings.Trim(bar, want) == ""
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(1, 10),
		gen.IntRange(1, 40),
	))

	properties.Property("the largest value fills the bar", prop.ForAll(
		func(value float64, width int) bool {
			if value == 0 {
				return true
			}
			return len(heatBar(value, math.Abs(value), width)) == width
		},
		gen.Float64Range(-1e6, 1e6),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}

func TestProperty_Truncate(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("truncate never exceeds n runes", prop.ForAll(
		func(s string, n int) bool {
			got := truncate(s, n)
			if utf8.RuneCountInString(s) <= n {
				return got == s
			}
			return utf8.RuneCountInString(got) == n
		},
		gen.AnyString(),
		gen.IntRange(0, 30),
	))

	properties.TestingRun(t)
}

func TestHeatBar_Degenerate(t *testing.T) {
	assert.Equal(t, "", heatBar(math.NaN(), 10, 5))
	assert.Equal(t, "", heatBar(5, 0, 5))
	assert.Equal(t, "+", heatBar(0.001, 1000, 5))
	assert.Equal(t, 40.0, maxAbs([]float64{-40, 12, 0}))
}
