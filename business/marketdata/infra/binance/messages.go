// Package binance streams best bid/ask updates from the Binance combined
// stream endpoint into the detection engine.
package binance

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// StreamEvent is the wrapper around every combined-stream payload.
type StreamEvent struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// BookTickerEvent is a real-time best bid/ask update.
// Stream: <symbol>@bookTicker
type BookTickerEvent struct {
	UpdateID int64  `json:"u"` // Order book updateId
	Symbol   string `json:"s"` // Wire symbol, e.g. "BTCUSDT"
	BidPrice string `json:"b"` // Best bid price
	BidQty   string `json:"B"` // Best bid qty
	AskPrice string `json:"a"` // Best ask price
	AskQty   string `json:"A"` // Best ask qty
}

// ParseBidPrice parses the best bid price.
func (e *BookTickerEvent) ParseBidPrice() (decimal.Decimal, error) {
	return decimal.NewFromString(e.BidPrice)
}

// ParseAskPrice parses the best ask price.
func (e *BookTickerEvent) ParseAskPrice() (decimal.Decimal, error) {
	return decimal.NewFromString(e.AskPrice)
}

// ParseBidQty parses the best bid quantity.
func (e *BookTickerEvent) ParseBidQty() (decimal.Decimal, error) {
	return decimal.NewFromString(e.BidQty)
}

// ParseAskQty parses the best ask quantity.
func (e *BookTickerEvent) ParseAskQty() (decimal.Decimal, error) {
	return decimal.NewFromString(e.AskQty)
}

// WireSymbol converts a "BASE/QUOTE" symbol to Binance wire form.
// "BTC/USDT" becomes "BTCUSDT".
func WireSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}

// BookTickerStream returns the bookTicker stream name for a wire symbol.
// Binance stream names are lowercase.
func BookTickerStream(wire string) string {
	return strings.ToLower(wire) + "@bookTicker"
}
