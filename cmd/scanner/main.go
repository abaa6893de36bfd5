// Package main is the entry point for the crypto arbitrage scanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/arbitrage/app"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/arbitrage/domain"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/arbitrage/infra"
	marketdata "github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/marketdata/domain"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/marketdata/infra/binance"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/marketdata/infra/sim"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/apm"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/config"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/health"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/logger"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/metrics"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// feed is the shared lifecycle of the market data sources.
type feed interface {
	Start(ctx context.Context) error
	Stop()
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	simMode := flag.Bool("sim", false, "Force the simulated feed regardless of config")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("arbitrage-scanner %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	tuiMode := !*cliMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, tuiMode, *simMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode, simMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if simMode {
		cfg.Feed.Mode = "sim"
	}

	// In TUI mode logs would corrupt the screen, so they are discarded.
	logLevel := logger.ParseLevel(cfg.App.LogLevel)
	var log *logger.Logger
	if tuiMode {
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting arbitrage scanner",
			"version", version,
			"environment", cfg.App.Environment,
			"feed_mode", cfg.Feed.Mode,
		)
	}

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log,
			apm.WithProvider(apm.Provider(cfg.Telemetry.TraceProvider), log))
		log.Info(ctx, "tracing initialized", "provider", cfg.Telemetry.TraceProvider)

		metricOpts := []metrics.OptionFn{
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithPrometheus(),
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			metricOpts = append(metricOpts,
				metrics.WithOtelCollector(cfg.Telemetry.OTLPEndpoint, nil, true))
		}
		if _, err := metrics.NewMetricProvider(metricOpts...); err != nil {
			return fmt.Errorf("failed to init metrics: %w", err)
		}

		go func() {
			port := strconv.Itoa(cfg.Telemetry.PrometheusPort)
			if err := metrics.ServePrometheusMetrics(metrics.WithPort(port)); err != nil {
				log.Warn(ctx, "prometheus server stopped", "error", err)
			}
		}()
		log.Info(ctx, "prometheus metrics server started", "port", cfg.Telemetry.PrometheusPort)
	}
	defer func() {
		if traceProvider != nil {
			_ = traceProvider.Stop()
		}
	}()

	// Detection engine.
	engine, err := app.New(cfg.Engine, log)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	if cfg.Telemetry.Enabled {
		telemetry, err := infra.NewTelemetry(engine)
		if err != nil {
			return fmt.Errorf("failed to register engine telemetry: %w", err)
		}
		defer telemetry.Close()
	}

	// Health endpoints with a market data freshness probe.
	healthServer := health.NewServer(cfg.App.HealthPort, version)
	healthServer.RegisterCheck("market_data", health.FreshnessCheck(
		func() time.Time { return engine.Stats().LastUpdate },
		10*time.Second,
	))
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.App.HealthPort)
	}
	defer healthServer.Stop(ctx)

	// Market data feeds, one venue id per configured venue.
	feeds, err := buildFeeds(cfg, engine, log)
	if err != nil {
		return err
	}

	if err := engine.Start(); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer engine.Stop()

	for _, f := range feeds {
		if err := f.Start(ctx); err != nil {
			return fmt.Errorf("failed to start feed: %w", err)
		}
	}
	defer func() {
		for _, f := range feeds {
			f.Stop()
		}
	}()

	if tuiMode {
		return runTUI(ctx, engine)
	}
	return runCLI(ctx, engine, log)
}

// buildFeeds constructs one feed per configured venue. Binance mode streams
// real book tickers; sim mode random-walks the configured symbols.
func buildFeeds(cfg *config.Config, engine *app.Engine, log *logger.Logger) ([]feed, error) {
	venues := cfg.Feed.Venues
	if len(venues) == 0 {
		venues = []string{"default"}
	}

	feeds := make([]feed, 0, len(venues))
	for i, venueName := range venues {
		venue := marketdata.VenueID(i)
		venueLog := log.With("venue", venueName)

		switch cfg.Feed.Mode {
		case "binance":
			f, err := binance.NewFeed(binance.Config{
				BaseURL:        cfg.Feed.WebSocketURL,
				Symbols:        cfg.Feed.Symbols,
				Venue:          venue,
				InitialBackoff: cfg.Feed.InitialBackoff,
				MaxBackoff:     cfg.Feed.MaxBackoff,
				MaxReconnects:  cfg.Feed.MaxReconnects,
			}, engine, venueLog)
			if err != nil {
				return nil, fmt.Errorf("failed to create binance feed: %w", err)
			}
			feeds = append(feeds, f)

		default:
			f, err := sim.NewFeed(sim.Config{
				Venue:       venue,
				Symbols:     cfg.Feed.Symbols,
				TicksPerSec: cfg.Feed.SimTicksPerSec,
			}, engine, venueLog)
			if err != nil {
				return nil, fmt.Errorf("failed to create sim feed: %w", err)
			}
			feeds = append(feeds, f)
		}
	}
	return feeds, nil
}

func runCLI(ctx context.Context, engine *app.Engine, log *logger.Logger) error {
	reporter := infra.NewConsoleReporter()
	reporter.Start()
	engine.Subscribe(reporter)

	log.Info(ctx, "scanner running, waiting for opportunities")
	<-ctx.Done()

	log.Info(ctx, "shutting down")
	reporter.Stop()
	return nil
}

func runTUI(ctx context.Context, engine *app.Engine) error {
	p := tea.NewProgram(ui.NewModel(engine), tea.WithAltScreen())

	engine.Subscribe(app.SinkFunc("tui", func(opp domain.Opportunity) {
		p.Send(ui.OpportunityMsg{Opportunity: opp})
	}))

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
