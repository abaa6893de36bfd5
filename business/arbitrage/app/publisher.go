package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/sony/gobreaker/v2"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/arbitrage/domain"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/apperror"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/circuitbreaker"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/config"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/logger"
)

// publisher gates detected opportunities through a fixed per-second window,
// records them in a bounded history ring, and fans them out to subscribed
// sinks.
type publisher struct {
	log       logger.LoggerInterface
	stats     *domain.Stats
	minProfit float64
	maxPerSec int

	// Window counters are touched only by the detector goroutine. The window
	// is the wall-clock second of the opportunity timestamp; a fresh second
	// resets the budget in full.
	windowSec   int64
	windowCount int

	mu      sync.Mutex
	history []domain.Opportunity // ring; next is the write position
	next    int
	size    int

	sinksMu sync.RWMutex
	sinks   []*sinkEntry
}

type sinkEntry struct {
	sink    Sink
	breaker *circuitbreaker.CircuitBreaker[struct{}]
}

func newPublisher(cfg config.EngineConfig, log logger.LoggerInterface, stats *domain.Stats) *publisher {
	return &publisher{
		log:       log,
		stats:     stats,
		minProfit: cfg.MinProfitThreshold,
		maxPerSec: cfg.MaxOpportunitiesPerSec,
		history:   make([]domain.Opportunity, cfg.HistoryCapacity),
	}
}

// subscribe registers a sink behind its own circuit breaker.
func (p *publisher) subscribe(sink Sink) {
	cfg := circuitbreaker.DefaultConfig("sink-" + sink.Name())
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		p.log.Info(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	entry := &sinkEntry{sink: sink, breaker: circuitbreaker.New[struct{}](cfg)}

	p.sinksMu.Lock()
	p.sinks = append(p.sinks, entry)
	p.sinksMu.Unlock()
}

// publish applies the profit and rate gates, then records the opportunity
// and fans it out. Called only from the detector goroutine. It reports
// whether the opportunity was published.
func (p *publisher) publish(opp domain.Opportunity) bool {
	if !opp.IsProfitable(p.minProfit) {
		p.stats.RecordFalsePositive()
		return false
	}

	sec := opp.DetectedAt.Unix()
	if sec != p.windowSec {
		p.windowSec = sec
		p.windowCount = 0
	}
	if p.windowCount >= p.maxPerSec {
		return false
	}
	p.windowCount++

	p.stats.RecordOpportunity()
	p.remember(opp)
	p.dispatch(opp)
	return true
}

func (p *publisher) remember(opp domain.Opportunity) {
	p.mu.Lock()
	p.history[p.next] = opp
	p.next = (p.next + 1) % len(p.history)
	if p.size < len(p.history) {
		p.size++
	}
	p.mu.Unlock()
}

// recent returns up to limit of the most recently published opportunities,
// in publication order. A non-positive limit returns everything retained.
func (p *publisher) recent(limit int) []domain.Opportunity {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := p.size
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Opportunity, n)
	for i := 0; i < n; i++ {
		out[i] = p.history[(p.next-n+i+len(p.history))%len(p.history)]
	}
	return out
}

func (p *publisher) dispatch(opp domain.Opportunity) {
	p.sinksMu.RLock()
	entries := p.sinks
	p.sinksMu.RUnlock()

	for _, ent := range entries {
		_, err := ent.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, deliver(ent.sink, opp)
		})
		if err != nil {
			p.log.Warn(context.Background(), "sink delivery failed",
				"sink", ent.sink.Name(), "error", err)
		}
	}
}

// deliver invokes the sink, converting a panic into an error so one bad sink
// cannot take down the detector.
func deliver(sink Sink, opp domain.Opportunity) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperror.New(apperror.CodeSinkFailure,
				apperror.WithContext(fmt.Sprintf("%s: %v", sink.Name(), r)))
		}
	}()
	sink.Publish(opp)
	return nil
}
