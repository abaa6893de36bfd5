package app

import (
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/arbitrage/domain"
)

// Sink receives published opportunities. Delivery happens on the detector
// goroutine, so implementations must hand off quickly rather than block. A
// panicking or persistently failing sink is isolated by a per-sink circuit
// breaker and never affects other sinks.
type Sink interface {
	Name() string
	Publish(opp domain.Opportunity)
}

type sinkFunc struct {
	name string
	fn   func(domain.Opportunity)
}

func (s sinkFunc) Name() string { return s.name }

func (s sinkFunc) Publish(opp domain.Opportunity) { s.fn(opp) }

// SinkFunc adapts a function to the Sink interface.
func SinkFunc(name string, fn func(domain.Opportunity)) Sink {
	return sinkFunc{name: name, fn: fn}
}
