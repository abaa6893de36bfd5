// Package app implements the arbitrage detection engine: lock-free tick
// ingress, a log-space price graph, Bellman-Ford cycle detection on a fixed
// cadence, and rate-limited opportunity publication.
package app

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/arbitrage/domain"
	marketdata "github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/marketdata/domain"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/apperror"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/config"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/logger"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/spsc"
)

// idleSleep is how long the graph updater parks when every ingress queue is
// empty.
const idleSleep = 100 * time.Microsecond

// Engine ties together the per-venue ingress queues, the price graph, the
// cycle detector, and the opportunity publisher. One updater goroutine drains
// the queues into the graph; one detector goroutine scans the graph on a
// fixed cadence. Producers feed the engine through Submit, one goroutine per
// venue.
type Engine struct {
	cfg config.EngineConfig
	log logger.LoggerInterface

	index *domain.SymbolIndex
	graph *domain.PriceGraph
	stats domain.Stats

	queues []*spsc.Queue[marketdata.Tick]
	pub    *publisher

	// byCurrency maps a currency to every node carrying it, one per venue.
	// Touched only by the updater goroutine.
	byCurrency     map[string][]int
	capacityWarned bool

	// Bellman-Ford scratch, reused across passes. Touched only by the
	// detector goroutine.
	dist   []float64
	parent []int

	seq     atomic.Uint64
	started atomic.Bool
	stopped atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New constructs an engine from validated configuration. Every per-venue
// queue and the full price graph are allocated here, so Submit and the
// processing goroutines never allocate on the hot path.
func New(cfg config.EngineConfig, log logger.LoggerInterface) (*Engine, error) {
	if cfg.QueueCapacity <= 0 || cfg.QueueCapacity&(cfg.QueueCapacity-1) != 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("queue capacity must be a positive power of two"))
	}
	if cfg.MaxVenues <= 0 || cfg.MaxSymbols <= 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("max_venues and max_symbols must be positive"))
	}
	if cfg.DetectionInterval <= 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("detection interval must be positive"))
	}
	if cfg.HistoryCapacity <= 0 || cfg.MaxOpportunitiesPerSec <= 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("history capacity and opportunity rate must be positive"))
	}

	maxNodes := cfg.MaxNodes()
	e := &Engine{
		cfg:        cfg,
		log:        log,
		index:      domain.NewSymbolIndex(maxNodes),
		graph:      domain.NewPriceGraph(maxNodes),
		queues:     make([]*spsc.Queue[marketdata.Tick], cfg.MaxVenues),
		byCurrency: make(map[string][]int),
		dist:       make([]float64, maxNodes),
		parent:     make([]int, maxNodes),
		stopCh:     make(chan struct{}),
	}
	for i := range e.queues {
		e.queues[i] = spsc.New[marketdata.Tick](cfg.QueueCapacity)
	}
	e.pub = newPublisher(cfg, log, &e.stats)
	return e, nil
}

// Start launches the updater and detector goroutines. Calling Start on a
// running engine is a no-op.
func (e *Engine) Start() error {
	if e.stopped.Load() {
		return apperror.New(apperror.CodeInvalidState,
			apperror.WithMessage("engine already stopped"))
	}
	if !e.started.CompareAndSwap(false, true) {
		return nil
	}

	e.wg.Add(2)
	go e.runUpdater()
	go e.runDetector()

	e.log.Info(context.Background(), "engine started",
		"max_nodes", e.graph.Capacity(),
		"queue_capacity", e.cfg.QueueCapacity,
		"detection_interval", e.cfg.DetectionInterval.String())
	return nil
}

// Stop halts both goroutines and waits for them to exit. Safe to call more
// than once; the engine cannot be restarted afterwards.
func (e *Engine) Stop() {
	if !e.started.Load() {
		e.stopped.Store(true)
		return
	}
	if !e.stopped.CompareAndSwap(false, true) {
		return
	}
	close(e.stopCh)
	e.wg.Wait()

	snap := e.stats.Snapshot()
	e.log.Info(context.Background(), "engine stopped",
		"messages_processed", snap.MessagesProcessed,
		"opportunities_found", snap.OpportunitiesFound,
		"false_positives", snap.FalsePositives)
}

// Submit offers one tick to the engine. It returns false when the venue is
// out of range or the venue's queue is full; an accepted tick counts toward
// messages_processed and folds its enqueue latency into the EWMA. Submit
// never blocks; at most one goroutine may submit per venue.
func (e *Engine) Submit(venue marketdata.VenueID, symbol string, bid, ask, volume float64) bool {
	if int(venue) >= len(e.queues) {
		return false
	}
	start := time.Now()
	tick := marketdata.Tick{
		Venue:     venue,
		Symbol:    symbol,
		Bid:       bid,
		Ask:       ask,
		Volume:    volume,
		Sequence:  e.seq.Add(1),
		Timestamp: start,
	}
	if !e.queues[venue].TryEnqueue(tick) {
		return false
	}
	e.stats.RecordMessage()
	e.stats.UpdateLatency(float64(time.Since(start)) / float64(time.Microsecond))
	return true
}

// Subscribe registers a sink for published opportunities. Sinks cannot be
// removed.
func (e *Engine) Subscribe(sink Sink) {
	e.pub.subscribe(sink)
}

// Recent returns up to limit of the most recently published opportunities,
// in publication order. A non-positive limit returns the full history.
func (e *Engine) Recent(limit int) []domain.Opportunity {
	return e.pub.recent(limit)
}

// Stats returns a snapshot of the pipeline counters.
func (e *Engine) Stats() domain.StatsSnapshot {
	return e.stats.Snapshot()
}

// QueueDepths reports the current depth of every venue queue, indexed by
// venue id. Depths are approximate while the engine runs.
func (e *Engine) QueueDepths() []int {
	depths := make([]int, len(e.queues))
	for i, q := range e.queues {
		depths[i] = q.Len()
	}
	return depths
}

// NodeCount returns the number of interned graph nodes.
func (e *Engine) NodeCount() int {
	return e.index.Count()
}

func (e *Engine) runUpdater() {
	defer e.wg.Done()
	for {
		select {
		case <-e.stopCh:
			return
		default:
		}

		drained := false
		for _, q := range e.queues {
			tick, ok := q.TryDequeue()
			if !ok {
				continue
			}
			e.applyTick(tick)
			drained = true
		}
		if !drained {
			time.Sleep(idleSleep)
		}
	}
}

// applyTick folds one tick into the price graph. The bid prices the base in
// quote units (forward edge -log(bid)); the ask prices the reverse direction
// (reverse edge +log(ask)).
func (e *Engine) applyTick(tick marketdata.Tick) {
	base, quote, err := marketdata.ParseSymbol(tick.Symbol)
	if err != nil {
		e.log.Debug(context.Background(), "tick rejected",
			"symbol", tick.Symbol, "venue", tick.Venue)
		return
	}

	from, err := e.node(base, tick.Venue)
	if err != nil {
		e.warnCapacity(err)
		return
	}
	to, err := e.node(quote, tick.Venue)
	if err != nil {
		e.warnCapacity(err)
		return
	}

	if tick.HasValidBid() {
		e.graph.SetWeight(from, to, -math.Log(tick.Bid))
	}
	if tick.HasValidAsk() {
		e.graph.SetWeight(to, from, math.Log(tick.Ask))
	}

	e.stats.MarkUpdated(time.Now())
}

// node interns (currency, venue), marking new nodes live and linking them to
// the same currency on other venues when cross-venue edges are enabled.
func (e *Engine) node(currency string, venue marketdata.VenueID) (int, error) {
	id, isNew, err := e.index.Intern(currency, venue)
	if err != nil {
		return 0, err
	}
	if !isNew {
		return id, nil
	}

	e.graph.MarkLive(id)
	if e.cfg.CrossVenueEdges {
		// The same currency transfers freely across venues: zero-weight
		// edges in both directions.
		for _, other := range e.byCurrency[currency] {
			e.graph.SetWeight(id, other, 0)
			e.graph.SetWeight(other, id, 0)
		}
	}
	e.byCurrency[currency] = append(e.byCurrency[currency], id)
	return id, nil
}

// warnCapacity logs the first node-capacity rejection; every later rejection
// would repeat it at tick rate.
func (e *Engine) warnCapacity(err error) {
	if e.capacityWarned {
		return
	}
	e.capacityWarned = true
	e.log.Warn(context.Background(), "node capacity exhausted, new symbols ignored",
		"max_nodes", e.graph.Capacity(), "error", err)
}
