// Package resilience provides a circuit breaker for calls to remote services.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// State is the state of a circuit breaker.
type State string

const (
	StateClosed   State = "closed"    // Normal operation
	StateOpen     State = "open"      // Failing, calls are skipped
	StateHalfOpen State = "half_open" // Probing whether the service recovered
)

// ErrOpen is returned without calling through while the circuit is open.
var ErrOpen = errors.New("circuit breaker is open")

// Config holds circuit breaker configuration.
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold int
	// SuccessThreshold is the number of half-open successes that close it again
	SuccessThreshold int
	// Cooldown is how long the circuit stays open before a trial call is allowed
	Cooldown time.Duration
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		Cooldown:         time.Minute,
	}
}

// Breaker implements the circuit breaker pattern. Calls run on the caller's
// goroutine; context handling is left to the wrapped function.
type Breaker struct {
	name string
	cfg  Config
	now  func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
	stats     Stats
}

// Stats counts calls seen by a breaker.
type Stats struct {
	Name      string `json:"name"`
	State     State  `json:"state"`
	Calls     int64  `json:"calls"`
	Failures  int64  `json:"failures"`
	Rejected  int64  `json:"rejected"`
	LastError string `json:"lastError,omitempty"`
}

// New creates a closed breaker. Non-positive thresholds fall back to the
// defaults.
func New(name string, cfg Config) *Breaker {
	def := DefaultConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	return &Breaker{name: name, cfg: cfg, now: time.Now, state: StateClosed}
}

// Do runs fn unless the circuit is open.
func (b *Breaker) Do(fn func() error) error {
	_, err := Call(b, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Call runs fn through b and returns its result.
func Call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	if err := b.allow(); err != nil {
		return zero, err
	}
	v, err := fn()
	b.record(err)
	if err != nil {
		return zero, err
	}
	return v, nil
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			b.stats.Rejected++
			return ErrOpen
		}
		b.transition(StateHalfOpen)
	}
	b.stats.Calls++
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		switch b.state {
		case StateHalfOpen:
			b.successes++
			if b.successes >= b.cfg.SuccessThreshold {
				b.transition(StateClosed)
			}
		case StateClosed:
			b.failures = 0
		}
		return
	}

	b.stats.Failures++
	b.stats.LastError = err.Error()
	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		b.transition(StateOpen)
	}
}

func (b *Breaker) transition(to State) {
	b.state = to
	b.failures = 0
	b.successes = 0
	if to == StateOpen {
		b.openedAt = b.now()
	}
}

// State returns the current state. An open circuit whose cooldown elapsed
// reports half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		return StateHalfOpen
	}
	return b.state
}

// Stats returns a snapshot of the counters.
func (b *Breaker) Stats() Stats {
	st := b.State()
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stats
	s.Name = b.name
	s.State = st
	return s
}

// Reset closes the circuit.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transition(StateClosed)
}
