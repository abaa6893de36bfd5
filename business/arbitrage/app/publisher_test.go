package app

import (
	"testing"
	"time"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/arbitrage/domain"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/config"
)

func newTestPublisher(mutate func(*config.EngineConfig)) (*publisher, *domain.Stats) {
	cfg := testEngineConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	stats := &domain.Stats{}
	return newPublisher(cfg, testLogger(), stats), stats
}

func opp(profit float64, at time.Time) domain.Opportunity {
	return domain.Opportunity{
		Cycle:      []int{0, 1, 2},
		Path:       "A@0 -> B@0 -> C@0",
		ProfitPct:  profit,
		DetectedAt: at,
	}
}

func TestPublishRateLimitResetsEachSecond(t *testing.T) {
	p, stats := newTestPublisher(func(c *config.EngineConfig) { c.MaxOpportunitiesPerSec = 2 })
	base := time.Unix(100, 0)

	if !p.publish(opp(0.05, base)) {
		t.Fatal("first publish should pass")
	}
	if !p.publish(opp(0.05, base.Add(time.Millisecond))) {
		t.Fatal("second publish should pass")
	}
	if p.publish(opp(0.05, base.Add(2*time.Millisecond))) {
		t.Fatal("third publish in the same second must be dropped")
	}

	// A fresh second restores the full budget.
	if !p.publish(opp(0.05, base.Add(time.Second))) {
		t.Fatal("publish in the next second should pass")
	}

	if got := stats.Snapshot().OpportunitiesFound; got != 3 {
		t.Fatalf("OpportunitiesFound = %d, want 3 (rate-limited drop is not counted)", got)
	}
}

func TestPublishProfitGate(t *testing.T) {
	p, stats := newTestPublisher(nil)

	if p.publish(opp(0.0005, time.Now())) {
		t.Fatal("sub-threshold opportunity must not publish")
	}

	snap := stats.Snapshot()
	if snap.FalsePositives != 1 {
		t.Fatalf("FalsePositives = %d, want 1", snap.FalsePositives)
	}
	if snap.OpportunitiesFound != 0 {
		t.Fatalf("OpportunitiesFound = %d, want 0", snap.OpportunitiesFound)
	}
}

func TestRecentReturnsPublicationOrder(t *testing.T) {
	p, _ := newTestPublisher(func(c *config.EngineConfig) { c.HistoryCapacity = 3 })
	base := time.Unix(200, 0)

	for i := 0; i < 5; i++ {
		profit := 0.01 + float64(i)*0.01
		if !p.publish(opp(profit, base.Add(time.Duration(i)*time.Millisecond))) {
			t.Fatalf("publish %d failed", i)
		}
	}

	got := p.recent(0)
	if len(got) != 3 {
		t.Fatalf("recent(0) returned %d entries, want 3 (ring capacity)", len(got))
	}
	wantProfits := []float64{0.03, 0.04, 0.05}
	for i, w := range wantProfits {
		if got[i].ProfitPct != w {
			t.Fatalf("recent[%d].ProfitPct = %v, want %v", i, got[i].ProfitPct, w)
		}
	}

	// The limit keeps the newest entries but preserves publication order.
	if limited := p.recent(2); len(limited) != 2 ||
		limited[0].ProfitPct != 0.04 || limited[1].ProfitPct != 0.05 {
		t.Fatalf("recent(2) = %v, want the two newest oldest-first", limited)
	}
}

func TestSinkPanicIsolation(t *testing.T) {
	p, stats := newTestPublisher(nil)

	var before, after int
	p.subscribe(SinkFunc("before", func(domain.Opportunity) { before++ }))
	p.subscribe(SinkFunc("bomb", func(domain.Opportunity) { panic("sink blew up") }))
	p.subscribe(SinkFunc("after", func(domain.Opportunity) { after++ }))

	base := time.Unix(300, 0)
	for i := 0; i < 3; i++ {
		if !p.publish(opp(0.05, base.Add(time.Duration(i)*time.Millisecond))) {
			t.Fatalf("publish %d failed", i)
		}
	}

	if before != 3 || after != 3 {
		t.Fatalf("healthy sinks got (%d, %d) deliveries, want (3, 3)", before, after)
	}
	if got := stats.Snapshot().OpportunitiesFound; got != 3 {
		t.Fatalf("OpportunitiesFound = %d, want 3 despite sink panics", got)
	}
}

func TestSinkBreakerStopsCallingFailingSink(t *testing.T) {
	p, _ := newTestPublisher(nil)

	var bombCalls int
	p.subscribe(SinkFunc("bomb", func(domain.Opportunity) {
		bombCalls++
		panic("sink blew up")
	}))
	var healthy int
	p.subscribe(SinkFunc("healthy", func(domain.Opportunity) { healthy++ }))

	base := time.Unix(400, 0)
	for i := 0; i < 20; i++ {
		p.publish(opp(0.05, base.Add(time.Duration(i)*time.Millisecond)))
	}

	// The breaker trips after five consecutive failures and shields the
	// failing sink from further traffic.
	if bombCalls != 5 {
		t.Fatalf("failing sink called %d times, want 5 before the breaker opens", bombCalls)
	}
	if healthy != 20 {
		t.Fatalf("healthy sink got %d deliveries, want 20", healthy)
	}
}
