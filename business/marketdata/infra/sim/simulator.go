// Package sim generates random-walk ticks for offline runs and load tests.
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	marketdata "github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/marketdata/domain"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/apperror"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/logger"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/ratelimit"
)

// Step size and spread of the random walk, as fractions of the mid price.
const (
	walkStep   = 0.001
	halfSpread = 0.0002
)

// startingMids seeds well-known pairs near realistic levels; anything else
// starts at 100.
var startingMids = map[string]float64{
	"BTC/USDT": 50000,
	"ETH/USDT": 2500,
	"ETH/BTC":  0.05,
	"SOL/USDT": 150,
}

// Submitter accepts ticks from a feed. The detection engine satisfies it.
type Submitter interface {
	Submit(venue marketdata.VenueID, symbol string, bid, ask, volume float64) bool
}

// Config holds simulator configuration.
type Config struct {
	Venue       marketdata.VenueID
	Symbols     []string // "BASE/QUOTE" form
	TicksPerSec float64
	Seed        int64 // 0 = time-based
}

// Feed walks each symbol's mid price and emits bid/ask ticks at a fixed
// sustained rate. Spreads stay consistent, so arbitrage shows up only when
// independent walks drift apart.
type Feed struct {
	cfg     Config
	log     logger.LoggerInterface
	sub     Submitter
	limiter *ratelimit.Limiter

	rng  *rand.Rand
	mids map[string]float64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFeed creates a simulator targeting sub.
func NewFeed(cfg Config, sub Submitter, log logger.LoggerInterface) (*Feed, error) {
	if len(cfg.Symbols) == 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("no symbols configured"))
	}
	if cfg.TicksPerSec <= 0 {
		cfg.TicksPerSec = 1000
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	f := &Feed{
		cfg:     cfg,
		log:     log,
		sub:     sub,
		limiter: ratelimit.New(cfg.TicksPerSec),
		rng:     rand.New(rand.NewSource(seed)),
		mids:    make(map[string]float64, len(cfg.Symbols)),
	}
	for _, sym := range cfg.Symbols {
		mid, ok := startingMids[sym]
		if !ok {
			mid = 100
		}
		f.mids[sym] = mid
	}
	return f, nil
}

// Start launches the tick generator.
func (f *Feed) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	f.wg.Add(1)
	go f.run(ctx)

	f.log.Info(ctx, "sim feed started",
		"venue", f.cfg.Venue, "symbols", f.cfg.Symbols, "ticks_per_sec", f.cfg.TicksPerSec)
	return nil
}

// Stop halts the generator and waits for it to exit.
func (f *Feed) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.wg.Wait()
}

func (f *Feed) run(ctx context.Context) {
	defer f.wg.Done()
	for {
		if err := f.limiter.Wait(ctx); err != nil {
			return
		}
		symbol := f.cfg.Symbols[f.rng.Intn(len(f.cfg.Symbols))]
		bid, ask := f.step(symbol)
		volume := 0.5 + f.rng.Float64()*10
		f.sub.Submit(f.cfg.Venue, symbol, bid, ask, volume)
	}
}

// step advances one symbol's mid price and returns the quoted sides.
func (f *Feed) step(symbol string) (bid, ask float64) {
	mid := f.mids[symbol]
	mid *= 1 + (f.rng.Float64()-0.5)*2*walkStep
	f.mids[symbol] = mid
	return mid * (1 - halfSpread), mid * (1 + halfSpread)
}
