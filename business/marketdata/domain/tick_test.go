package domain

import (
	"errors"
	"testing"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/apperror"
)

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		name      string
		symbol    string
		wantBase  string
		wantQuote string
		wantErr   bool
	}{
		{name: "simple", symbol: "BTC/USDT", wantBase: "BTC", wantQuote: "USDT"},
		{name: "short_sides", symbol: "A/B", wantBase: "A", wantQuote: "B"},
		{name: "missing_separator", symbol: "BTCUSDT", wantErr: true},
		{name: "empty_base", symbol: "/USDT", wantErr: true},
		{name: "empty_quote", symbol: "BTC/", wantErr: true},
		{name: "empty", symbol: "", wantErr: true},
		{name: "too_long", symbol: "VERYLONGBASE/QUOTE", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, quote, err := ParseSymbol(tt.symbol)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSymbol(%q) expected error", tt.symbol)
				}
				if got := apperror.GetCode(err); got != apperror.CodeBadSymbol {
					t.Fatalf("error code = %s, want %s", got, apperror.CodeBadSymbol)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSymbol(%q) unexpected error: %v", tt.symbol, err)
			}
			if base != tt.wantBase || quote != tt.wantQuote {
				t.Fatalf("ParseSymbol(%q) = (%q, %q), want (%q, %q)",
					tt.symbol, base, quote, tt.wantBase, tt.wantQuote)
			}
		})
	}
}

func TestParseSymbolErrorIsComparable(t *testing.T) {
	_, _, err := ParseSymbol("nonsense")
	if !errors.Is(err, apperror.New(apperror.CodeBadSymbol)) {
		t.Fatal("BadSymbol errors should compare equal by code")
	}
}

func TestTickValidSides(t *testing.T) {
	tick := Tick{Bid: 1.5, Ask: 0}
	if !tick.HasValidBid() {
		t.Error("positive bid should be valid")
	}
	if tick.HasValidAsk() {
		t.Error("zero ask should be invalid")
	}

	tick = Tick{Bid: -1, Ask: 2}
	if tick.HasValidBid() {
		t.Error("negative bid should be invalid")
	}
	if !tick.HasValidAsk() {
		t.Error("positive ask should be valid")
	}
}
