package config

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	if cfg.Engine.MinProfitThreshold != 0.001 {
		t.Fatalf("min_profit_threshold = %v, want 0.001", cfg.Engine.MinProfitThreshold)
	}
	if cfg.Engine.DetectionInterval != 10*time.Millisecond {
		t.Fatalf("detection_interval = %v, want 10ms", cfg.Engine.DetectionInterval)
	}
	if cfg.Engine.MaxNodes() != 16*256 {
		t.Fatalf("MaxNodes = %d, want %d", cfg.Engine.MaxNodes(), 16*256)
	}
	if cfg.Feed.Mode != "sim" {
		t.Fatalf("feed.mode = %q, want sim", cfg.Feed.Mode)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "negative_threshold", mutate: func(c *Config) { c.Engine.MinProfitThreshold = -0.1 }},
		{name: "zero_position", mutate: func(c *Config) { c.Engine.MaxPositionSize = 0 }},
		{name: "queue_not_power_of_two", mutate: func(c *Config) { c.Engine.QueueCapacity = 1000 }},
		{name: "zero_interval", mutate: func(c *Config) { c.Engine.DetectionInterval = 0 }},
		{name: "too_many_venues", mutate: func(c *Config) { c.Engine.MaxVenues = 300 }},
		{name: "bad_feed_mode", mutate: func(c *Config) { c.Feed.Mode = "kraken" }},
		{name: "binance_without_symbols", mutate: func(c *Config) {
			c.Feed.Mode = "binance"
			c.Feed.Symbols = nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestEngineDecimalAccessors(t *testing.T) {
	cfg := Default()
	if got := cfg.Engine.MinProfitThresholdDecimal().String(); got != "0.001" {
		t.Fatalf("threshold decimal = %s, want 0.001", got)
	}
	if got := cfg.Engine.MaxPositionSizeDecimal().String(); got != "1000" {
		t.Fatalf("position decimal = %s, want 1000", got)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ARB_MIN_PROFIT_THRESHOLD", "0.005")
	t.Setenv("ARB_FEED_MODE", "sim")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.MinProfitThreshold != 0.005 {
		t.Fatalf("env override ignored: threshold = %v", cfg.Engine.MinProfitThreshold)
	}
}
