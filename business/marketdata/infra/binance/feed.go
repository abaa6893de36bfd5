package binance

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	marketdata "github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/marketdata/domain"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/apm"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/apperror"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/logger"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/wsconn"
)

const meterName = "binance-feed"

// Binance WebSocket endpoints.
const (
	BaseWSURL     = "wss://stream.binance.com:9443"
	DataStreamURL = "wss://data-stream.binance.vision"
)

// Submitter accepts ticks from a feed. The detection engine satisfies it.
type Submitter interface {
	Submit(venue marketdata.VenueID, symbol string, bid, ask, volume float64) bool
}

// Config holds Binance feed configuration.
type Config struct {
	BaseURL        string
	Symbols        []string // "BASE/QUOTE" form
	Venue          marketdata.VenueID
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
}

// DefaultConfig returns sensible defaults for the given symbols.
func DefaultConfig(symbols []string) Config {
	return Config{
		BaseURL:        BaseWSURL,
		Symbols:        symbols,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
	}
}

type feedMetrics struct {
	messagesReceived metric.Int64Counter
	parseErrors      metric.Int64Counter
	ticksDropped     metric.Int64Counter
}

// Feed subscribes to bookTicker streams over one combined WebSocket
// connection and forwards every update into the engine.
type Feed struct {
	cfg Config
	log logger.LoggerInterface
	sub Submitter

	// wireToSymbol maps Binance wire symbols back to "BASE/QUOTE" form.
	wireToSymbol map[string]string

	conn    *wsconn.Client
	metrics feedMetrics
	tracer  apm.Tracer
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewFeed creates a feed targeting sub.
func NewFeed(cfg Config, sub Submitter, log logger.LoggerInterface) (*Feed, error) {
	if len(cfg.Symbols) == 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("no symbols configured"))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseWSURL
	}

	f := &Feed{
		cfg:          cfg,
		log:          log,
		sub:          sub,
		tracer:       apm.NewTracer(meterName),
		wireToSymbol: make(map[string]string, len(cfg.Symbols)),
	}
	for _, sym := range cfg.Symbols {
		f.wireToSymbol[WireSymbol(sym)] = sym
	}
	if err := f.initMetrics(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Feed) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	f.metrics.messagesReceived, err = meter.Int64Counter(
		"binance_messages_total",
		metric.WithDescription("Total stream messages received"),
	)
	if err != nil {
		return err
	}

	f.metrics.parseErrors, err = meter.Int64Counter(
		"binance_parse_errors_total",
		metric.WithDescription("Stream messages that failed to parse"),
	)
	if err != nil {
		return err
	}

	f.metrics.ticksDropped, err = meter.Int64Counter(
		"binance_ticks_dropped_total",
		metric.WithDescription("Ticks rejected by the engine ingress queue"),
	)
	return err
}

// Start connects and begins forwarding ticks. The combined-stream URL
// carries the subscriptions, so reconnects resubscribe automatically.
func (f *Feed) Start(ctx context.Context) error {
	streamURL, err := f.buildStreamURL()
	if err != nil {
		return err
	}

	wsCfg := wsconn.DefaultConfig(streamURL)
	if f.cfg.InitialBackoff > 0 {
		wsCfg.InitialBackoff = f.cfg.InitialBackoff
	}
	if f.cfg.MaxBackoff > 0 {
		wsCfg.MaxBackoff = f.cfg.MaxBackoff
	}
	wsCfg.MaxReconnects = f.cfg.MaxReconnects
	wsCfg.OnReconnect = func() {
		f.log.Info(context.Background(), "binance stream reconnected", "venue", f.cfg.Venue)
	}

	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	spanCtx, span := f.tracer.StartSpanFromContext(ctx, "binance.feed.connect")
	span.SetAttributes(
		attribute.Int("venue", int(f.cfg.Venue)),
		attribute.Int("symbols", len(f.cfg.Symbols)),
	)

	f.conn = wsconn.New(wsCfg)
	if err := f.conn.Connect(spanCtx); err != nil {
		span.NoticeError(err)
		span.End()
		cancel()
		return err
	}
	span.End()

	f.wg.Add(1)
	go f.consume(ctx)

	f.log.Info(ctx, "binance feed started",
		"url", streamURL, "venue", f.cfg.Venue, "symbols", f.cfg.Symbols)
	return nil
}

// Stop closes the connection and waits for the consumer to exit.
func (f *Feed) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	if f.conn != nil {
		_ = f.conn.Close()
	}
	f.wg.Wait()
}

// buildStreamURL constructs the combined streams URL:
// /stream?streams=btcusdt@bookTicker/ethusdt@bookTicker/...
func (f *Feed) buildStreamURL() (string, error) {
	streams := make([]string, 0, len(f.cfg.Symbols))
	for _, sym := range f.cfg.Symbols {
		streams = append(streams, BookTickerStream(WireSymbol(sym)))
	}

	u, err := url.Parse(f.cfg.BaseURL)
	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeConfigurationError, f.cfg.BaseURL)
	}
	u.Path = "/stream"
	u.RawQuery = "streams=" + strings.Join(streams, "/")
	return u.String(), nil
}

func (f *Feed) consume(ctx context.Context) {
	defer f.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-f.conn.Messages():
			if !ok {
				return
			}
			f.handleMessage(ctx, data)
		}
	}
}

func (f *Feed) handleMessage(ctx context.Context, data []byte) {
	f.metrics.messagesReceived.Add(ctx, 1)

	var event StreamEvent
	if err := json.Unmarshal(data, &event); err != nil {
		f.metrics.parseErrors.Add(ctx, 1)
		f.log.Debug(ctx, "unparseable stream message", "error", err)
		return
	}
	if !strings.HasSuffix(event.Stream, "@bookTicker") {
		return
	}

	var ticker BookTickerEvent
	if err := json.Unmarshal(event.Data, &ticker); err != nil {
		f.metrics.parseErrors.Add(ctx, 1)
		f.log.Debug(ctx, "unparseable book ticker", "error", err, "stream", event.Stream)
		return
	}
	f.forward(ctx, &ticker)
}

// forward converts one book ticker into a tick submission. Prices arrive as
// decimal strings; the graph works in float64, which is exact enough for
// log-space weights.
func (f *Feed) forward(ctx context.Context, ticker *BookTickerEvent) {
	symbol, ok := f.wireToSymbol[ticker.Symbol]
	if !ok {
		return
	}

	bid, err := ticker.ParseBidPrice()
	if err != nil {
		f.metrics.parseErrors.Add(ctx, 1)
		return
	}
	ask, err := ticker.ParseAskPrice()
	if err != nil {
		f.metrics.parseErrors.Add(ctx, 1)
		return
	}
	bidQty, err := ticker.ParseBidQty()
	if err != nil {
		f.metrics.parseErrors.Add(ctx, 1)
		return
	}
	askQty, err := ticker.ParseAskQty()
	if err != nil {
		f.metrics.parseErrors.Add(ctx, 1)
		return
	}

	// Tradable volume is bounded by the thinner side of the book.
	volume := decimal.Min(bidQty, askQty)

	bidF, _ := bid.Float64()
	askF, _ := ask.Float64()
	volF, _ := volume.Float64()
	if !f.sub.Submit(f.cfg.Venue, symbol, bidF, askF, volF) {
		f.metrics.ticksDropped.Add(ctx, 1)
	}
}

// State reports the underlying connection state.
func (f *Feed) State() wsconn.State {
	if f.conn == nil {
		return wsconn.StateDisconnected
	}
	return f.conn.State()
}
