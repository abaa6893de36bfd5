package app

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/arbitrage/domain"
	marketdata "github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/marketdata/domain"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/config"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func testEngineConfig() config.EngineConfig {
	cfg := config.Default().Engine
	cfg.MaxVenues = 2
	cfg.MaxSymbols = 8
	cfg.QueueCapacity = 16
	cfg.HistoryCapacity = 16
	cfg.DetectionInterval = 5 * time.Millisecond
	return cfg
}

func newTestEngine(t *testing.T, mutate func(*config.EngineConfig)) *Engine {
	t.Helper()
	cfg := testEngineConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := New(cfg, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.EngineConfig)
	}{
		{name: "queue_not_power_of_two", mutate: func(c *config.EngineConfig) { c.QueueCapacity = 100 }},
		{name: "zero_venues", mutate: func(c *config.EngineConfig) { c.MaxVenues = 0 }},
		{name: "zero_interval", mutate: func(c *config.EngineConfig) { c.DetectionInterval = 0 }},
		{name: "zero_history", mutate: func(c *config.EngineConfig) { c.HistoryCapacity = 0 }},
		{name: "zero_rate", mutate: func(c *config.EngineConfig) { c.MaxOpportunitiesPerSec = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testEngineConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg, testLogger()); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}

func TestSubmitValidation(t *testing.T) {
	e := newTestEngine(t, nil)

	if e.Submit(99, "BTC/USDT", 100, 101, 1) {
		t.Fatal("unknown venue must be rejected")
	}
	// Price validity is the updater's concern; ingress only rejects on venue
	// range and queue capacity.
	if !e.Submit(0, "BTC/USDT", 0, 0, 1) {
		t.Fatal("tick with no usable price side must still queue")
	}
	if !e.Submit(0, "BTC/USDT", 100, 0, 1) {
		t.Fatal("bid-only tick must be accepted")
	}
	if !e.Submit(0, "BTC/USDT", 0, 101, 1) {
		t.Fatal("ask-only tick must be accepted")
	}
	if got := e.Stats().MessagesProcessed; got != 3 {
		t.Fatalf("MessagesProcessed = %d, want 3 (one per accepted submit)", got)
	}
}

func TestSubmitCountsAcceptedTicks(t *testing.T) {
	// Updater not started: counting must happen at enqueue, not at apply.
	e := newTestEngine(t, func(c *config.EngineConfig) { c.QueueCapacity = 4 })

	for i := 0; i < 4; i++ {
		if !e.Submit(0, "BTC/USDT", 100, 101, 1) {
			t.Fatalf("submit %d should fit", i)
		}
	}
	snap := e.Stats()
	if snap.MessagesProcessed != 4 {
		t.Fatalf("MessagesProcessed = %d, want 4", snap.MessagesProcessed)
	}
	if snap.AvgLatencyUS <= 0 {
		t.Fatal("latency estimate should move after accepted submits")
	}

	// A rejected submit leaves the counters alone.
	if e.Submit(0, "BTC/USDT", 100, 101, 1) {
		t.Fatal("full queue must reject")
	}
	if got := e.Stats().MessagesProcessed; got != 4 {
		t.Fatalf("MessagesProcessed = %d after drop, want 4", got)
	}
}

func TestSubmitBackpressure(t *testing.T) {
	// Capacity 4 with no updater running: the fifth submit must fail fast
	// instead of blocking.
	e := newTestEngine(t, func(c *config.EngineConfig) { c.QueueCapacity = 4 })

	for i := 0; i < 4; i++ {
		if !e.Submit(0, "BTC/USDT", 100, 101, 1) {
			t.Fatalf("submit %d should fit", i)
		}
	}
	if e.Submit(0, "BTC/USDT", 100, 101, 1) {
		t.Fatal("full queue must reject, not block")
	}
	if got := e.Stats().MessagesProcessed; got != 4 {
		t.Fatalf("MessagesProcessed = %d, want 4 (drop is not counted)", got)
	}

	// Another venue has its own queue and is unaffected.
	if !e.Submit(1, "BTC/USDT", 100, 101, 1) {
		t.Fatal("other venue queue should accept")
	}
	if got := e.QueueDepths(); got[0] != 4 || got[1] != 1 {
		t.Fatalf("queue depths = %v, want [4 1]", got)
	}
}

func TestApplyTickDiscardsBadSymbols(t *testing.T) {
	e := newTestEngine(t, nil)

	e.applyTick(marketdata.Tick{Venue: 0, Symbol: "BTC/USDT", Bid: 100, Ask: 101, Timestamp: time.Now()})
	e.applyTick(marketdata.Tick{Venue: 0, Symbol: "garbage", Bid: 100, Ask: 101, Timestamp: time.Now()})

	if e.NodeCount() != 2 {
		t.Fatalf("NodeCount = %d, want 2 (bad symbol interns nothing)", e.NodeCount())
	}
	if e.Stats().LastUpdate.IsZero() {
		t.Fatal("LastUpdate should be set after a processed tick")
	}
}

func TestApplyTickSkipsInvalidPriceSides(t *testing.T) {
	e := newTestEngine(t, nil)

	e.applyTick(marketdata.Tick{Venue: 0, Symbol: "BTC/USDT", Bid: 0, Ask: 0, Timestamp: time.Now()})

	if e.NodeCount() != 2 {
		t.Fatalf("NodeCount = %d, want 2", e.NodeCount())
	}
	// Neither edge may move off "no data".
	if w := e.graph.Weight(0, 1); !math.IsInf(w, 1) {
		t.Fatalf("forward weight = %v, want +Inf", w)
	}
	if w := e.graph.Weight(1, 0); !math.IsInf(w, 1) {
		t.Fatalf("reverse weight = %v, want +Inf", w)
	}
}

func TestCapacityExhaustionDropsNewSymbols(t *testing.T) {
	e := newTestEngine(t, func(c *config.EngineConfig) {
		c.MaxVenues = 1
		c.MaxSymbols = 2
	})

	e.applyTick(marketdata.Tick{Venue: 0, Symbol: "BTC/USDT", Bid: 100, Ask: 101, Timestamp: time.Now()})
	e.applyTick(marketdata.Tick{Venue: 0, Symbol: "ETH/SOL", Bid: 10, Ask: 11, Timestamp: time.Now()})

	if e.NodeCount() != 2 {
		t.Fatalf("NodeCount = %d, want 2 (overflow symbol interns nothing)", e.NodeCount())
	}

	// Known symbols keep flowing.
	e.applyTick(marketdata.Tick{Venue: 0, Symbol: "BTC/USDT", Bid: 102, Ask: 103, Timestamp: time.Now()})
	if w := e.graph.Weight(0, 1); w != -math.Log(102) {
		t.Fatalf("forward weight = %v, want %v", w, -math.Log(102))
	}
}

func TestStartStopLifecycle(t *testing.T) {
	e := newTestEngine(t, nil)

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("second Start must be a no-op, got %v", err)
	}

	e.Stop()
	e.Stop() // idempotent

	if err := e.Start(); err == nil {
		t.Fatal("Start after Stop must fail")
	}
}

func TestEngineEndToEnd(t *testing.T) {
	e := newTestEngine(t, nil)
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	defer e.Stop()

	published := make(chan domain.Opportunity, 16)
	e.Subscribe(SinkFunc("probe", func(opp domain.Opportunity) {
		select {
		case published <- opp:
		default:
		}
	}))

	// Triangle with a 4% loop: buy BTC with USDT, swap into ETH, sell ETH
	// back to USDT.
	e.Submit(0, "BTC/USDT", 49990, 50000, 1)
	e.Submit(0, "ETH/BTC", 0.0499, 0.05, 1)
	e.Submit(0, "ETH/USDT", 2600, 2610, 1)

	select {
	case opp := <-published:
		if len(opp.Cycle) != 3 {
			t.Fatalf("cycle length = %d, want 3", len(opp.Cycle))
		}
		if math.Abs(opp.ProfitPct-0.04) > 1e-6 {
			t.Fatalf("profit = %v, want ~0.04", opp.ProfitPct)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no opportunity published within 2s")
	}

	if got := e.Stats().MessagesProcessed; got != 3 {
		t.Fatalf("MessagesProcessed = %d, want 3", got)
	}
}
