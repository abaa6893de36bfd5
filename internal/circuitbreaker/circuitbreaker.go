// Package circuitbreaker wraps sony/gobreaker with project defaults.
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// Config carries the tunable subset of gobreaker settings.
type Config struct {
	Name                string
	MaxRequests         uint32        // half-open probe budget
	Interval            time.Duration // closed-state count reset period
	Timeout             time.Duration // open to half-open delay
	ConsecutiveFailures uint32        // trip threshold
	OnStateChange       func(name string, from, to gobreaker.State)
}

// DefaultConfig returns conservative defaults for the named breaker.
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             5 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// CircuitBreaker guards calls that return T.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New builds a breaker from cfg.
func New[T any](cfg Config) *CircuitBreaker[T] {
	threshold := cfg.ConsecutiveFailures
	return &CircuitBreaker[T]{
		cb: gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: cfg.OnStateChange,
		}),
	}
}

// Execute runs fn under the breaker, returning gobreaker.ErrOpenState while
// the breaker is open.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	return c.cb.Execute(fn)
}

// State returns the current breaker state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.cb.State()
}
