// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	HealthPort  int    `mapstructure:"health_port"`
}

// EngineConfig holds detection engine configuration.
type EngineConfig struct {
	MinProfitThreshold       float64       `mapstructure:"min_profit_threshold"`
	MaxPositionSize          float64       `mapstructure:"max_position_size"`
	MaxOpportunitiesPerSec   int           `mapstructure:"max_opportunities_per_second"`
	QueueCapacity            int           `mapstructure:"queue_capacity"`
	DetectionInterval        time.Duration `mapstructure:"detection_interval"`
	HistoryCapacity          int           `mapstructure:"history_capacity"`
	MaxVenues                int           `mapstructure:"max_venues"`
	MaxSymbols               int           `mapstructure:"max_symbols"`
	CrossVenueEdges          bool          `mapstructure:"cross_venue_edges"`
}

// MaxNodes returns the node capacity of the price graph.
func (c *EngineConfig) MaxNodes() int {
	return c.MaxVenues * c.MaxSymbols
}

// MinProfitThresholdDecimal returns the profit threshold as decimal.Decimal.
func (c *EngineConfig) MinProfitThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitThreshold)
}

// MaxPositionSizeDecimal returns the position cap as decimal.Decimal.
func (c *EngineConfig) MaxPositionSizeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxPositionSize)
}

// FeedConfig holds market data feed configuration.
type FeedConfig struct {
	Mode           string        `mapstructure:"mode"` // "binance" or "sim"
	WebSocketURL   string        `mapstructure:"websocket_url"`
	Symbols        []string      `mapstructure:"symbols"` // "BASE/QUOTE" form
	Venues         []string      `mapstructure:"venues"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	SimTicksPerSec float64       `mapstructure:"sim_ticks_per_second"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"` // "zipkin", "otlp", "console"
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Engine
	v.BindEnv("engine.min_profit_threshold", "ARB_MIN_PROFIT_THRESHOLD")
	v.BindEnv("engine.max_position_size", "ARB_MAX_POSITION_SIZE")
	v.BindEnv("engine.max_opportunities_per_second", "ARB_MAX_OPPS_PER_SECOND")
	v.BindEnv("engine.queue_capacity", "ARB_QUEUE_CAPACITY")
	v.BindEnv("engine.detection_interval", "ARB_DETECTION_INTERVAL")
	v.BindEnv("engine.cross_venue_edges", "ARB_CROSS_VENUE_EDGES")

	// Feed
	v.BindEnv("feed.mode", "ARB_FEED_MODE")
	v.BindEnv("feed.websocket_url", "ARB_FEED_WS_URL")
	v.BindEnv("feed.symbols", "ARB_FEED_SYMBOLS")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "arbitrage-scanner")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.health_port", 8081)

	// Engine defaults
	v.SetDefault("engine.min_profit_threshold", 0.001) // 0.1%
	v.SetDefault("engine.max_position_size", 1000.0)
	v.SetDefault("engine.max_opportunities_per_second", 100)
	v.SetDefault("engine.queue_capacity", 65536)
	v.SetDefault("engine.detection_interval", "10ms")
	v.SetDefault("engine.history_capacity", 1000)
	v.SetDefault("engine.max_venues", 16)
	v.SetDefault("engine.max_symbols", 256)
	v.SetDefault("engine.cross_venue_edges", false)

	// Feed defaults
	v.SetDefault("feed.mode", "sim")
	v.SetDefault("feed.websocket_url", "wss://stream.binance.com:9443")
	v.SetDefault("feed.symbols", []string{"BTC/USDT", "ETH/USDT", "ETH/BTC"})
	v.SetDefault("feed.venues", []string{"binance"})
	v.SetDefault("feed.initial_backoff", "1s")
	v.SetDefault("feed.max_backoff", "30s")
	v.SetDefault("feed.max_reconnects", 0) // infinite
	v.SetDefault("feed.sim_ticks_per_second", 1000.0)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbitrage-scanner")
	v.SetDefault("telemetry.trace_provider", "console")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.MinProfitThreshold < 0 {
		return fmt.Errorf("engine.min_profit_threshold must be non-negative")
	}
	if c.Engine.MaxPositionSize <= 0 {
		return fmt.Errorf("engine.max_position_size must be positive")
	}
	if c.Engine.QueueCapacity <= 0 || c.Engine.QueueCapacity&(c.Engine.QueueCapacity-1) != 0 {
		return fmt.Errorf("engine.queue_capacity must be a positive power of two, got %d", c.Engine.QueueCapacity)
	}
	if c.Engine.DetectionInterval <= 0 {
		return fmt.Errorf("engine.detection_interval must be positive")
	}
	if c.Engine.HistoryCapacity <= 0 {
		return fmt.Errorf("engine.history_capacity must be positive")
	}
	if c.Engine.MaxVenues <= 0 || c.Engine.MaxVenues > 255 {
		return fmt.Errorf("engine.max_venues must be in [1, 255], got %d", c.Engine.MaxVenues)
	}
	if c.Engine.MaxSymbols <= 0 {
		return fmt.Errorf("engine.max_symbols must be positive")
	}
	switch c.Feed.Mode {
	case "sim", "binance":
	default:
		return fmt.Errorf("feed.mode must be \"sim\" or \"binance\", got %q", c.Feed.Mode)
	}
	if c.Feed.Mode == "binance" && len(c.Feed.Symbols) == 0 {
		return fmt.Errorf("feed.symbols cannot be empty")
	}
	return nil
}

// Default returns a Config populated with defaults only, useful for embedding.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: default unmarshal: %v", err))
	}
	return &cfg
}
