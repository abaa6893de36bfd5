// Package domain contains the core domain types for the market data context.
package domain

import (
	"strings"
	"time"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/apperror"
)

// MaxSymbolLen bounds symbol strings ("BASE/QUOTE" form).
const MaxSymbolLen = 16

// VenueID identifies a trading venue. Venues are a small enumeration; ids
// are assigned by configuration order.
type VenueID uint8

// Tick is a snapshot of best bid, best ask, and recent traded volume for one
// symbol at one venue at one instant. Ticks are immutable once constructed.
type Tick struct {
	Venue     VenueID
	Symbol    string
	Bid       float64
	Ask       float64
	Volume    float64
	Sequence  uint64
	Timestamp time.Time
}

// HasValidBid reports whether the bid side should update the graph.
func (t Tick) HasValidBid() bool {
	return t.Bid > 0
}

// HasValidAsk reports whether the ask side should update the graph.
func (t Tick) HasValidAsk() bool {
	return t.Ask > 0
}

// ParseSymbol splits a "BASE/QUOTE" symbol into its currencies. Both sides
// must be non-empty and the whole symbol must fit the wire bound.
func ParseSymbol(symbol string) (base, quote string, err error) {
	if len(symbol) > MaxSymbolLen {
		return "", "", apperror.New(apperror.CodeBadSymbol, apperror.WithContext(symbol))
	}
	sep := strings.IndexByte(symbol, '/')
	if sep <= 0 || sep == len(symbol)-1 {
		return "", "", apperror.New(apperror.CodeBadSymbol, apperror.WithContext(symbol))
	}
	return symbol[:sep], symbol[sep+1:], nil
}
