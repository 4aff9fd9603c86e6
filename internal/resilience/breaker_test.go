package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("down")

func testBreaker(cfg Config) (*Breaker, *time.Time) {
	clock := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	b := New("coach", cfg)
	b.now = func() time.Time { return clock }
	return b, &clock
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := testBreaker(Config{FailureThreshold: 2, Cooldown: time.Minute})

	calls := 0
	fail := func() error { calls++; return errDown }

	assert.ErrorIs(t, b.Do(fail), errDown)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Do(fail), errDown)
	assert.Equal(t, StateOpen, b.State())

	assert.ErrorIs(t, b.Do(fail), ErrOpen)
	assert.Equal(t, 2, calls, "open circuit skips the call")

	s := b.Stats()
	assert.Equal(t, "coach", s.Name)
	assert.EqualValues(t, 2, s.Calls)
	assert.EqualValues(t, 2, s.Failures)
	assert.EqualValues(t, 1, s.Rejected)
	assert.Equal(t, "down", s.LastError)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _ := testBreaker(Config{FailureThreshold: 2})

	assert.Error(t, b.Do(func() error { return errDown }))
	assert.NoError(t, b.Do(func() error { return nil }))
	assert.Error(t, b.Do(func() error { return errDown }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenTrialCall(t *testing.T) {
	b, clock := testBreaker(Config{FailureThreshold: 1, SuccessThreshold: 1, Cooldown: time.Minute})

	require.Error(t, b.Do(func() error { return errDown }))
	require.Equal(t, StateOpen, b.State())

	*clock = clock.Add(time.Minute)
	assert.Equal(t, StateHalfOpen, b.State())

	// a failed trial call reopens for another cooldown
	assert.ErrorIs(t, b.Do(func() error { return errDown }), errDown)
	assert.Equal(t, StateOpen, b.State())

	*clock = clock.Add(time.Minute)
	v, err := Call(b, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_Reset(t *testing.T) {
	b, _ := testBreaker(Config{FailureThreshold: 1})
	require.Error(t, b.Do(func() error { return errDown }))
	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.NoError(t, b.Do(func() error { return nil }))
}

func TestNew_Defaults(t *testing.T) {
	b := New("x", Config{})
	assert.Equal(t, DefaultConfig(), b.cfg)
}

func TestProperty_OpensExactlyAtThreshold(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("circuit opens on the threshold-th consecutive failure", prop.ForAll(
		func(threshold int) bool {
			b, _ := testBreaker(Config{FailureThreshold: threshold, Cooldown: time.Hour})
			for i := 1; i <= threshold; i++ {
				_ = b.Do(func() error { return errDown })
				open := b.State() == StateOpen
				if open != (i == threshold) {
					return false
				}
			}
			return errors.Is(b.Do(func() error { return nil }), ErrOpen)
		},
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}
