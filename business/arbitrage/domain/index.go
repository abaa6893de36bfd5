// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"fmt"
	"sync/atomic"

	marketdata "github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/marketdata/domain"
	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/apperror"
)

// UnknownNodeName is returned for ids outside the interned range.
const UnknownNodeName = "UNKNOWN"

type nodeKey struct {
	currency string
	venue    marketdata.VenueID
}

// SymbolIndex maps (currency, venue) pairs to dense node ids. Ids are
// assigned on first observation and never recycled.
//
// Only the graph updater interns new nodes. Concurrent readers snapshot
// Count() and may then resolve any id below it: names[id] is fully written
// before the count is advanced, so the prefix a reader observes is stable.
type SymbolIndex struct {
	maxNodes int
	count    atomic.Int64
	ids      map[nodeKey]int // touched by the interning goroutine only
	names    []string
	venues   []marketdata.VenueID
}

// NewSymbolIndex creates an index with capacity for maxNodes nodes.
func NewSymbolIndex(maxNodes int) *SymbolIndex {
	return &SymbolIndex{
		maxNodes: maxNodes,
		ids:      make(map[nodeKey]int, maxNodes),
		names:    make([]string, maxNodes),
		venues:   make([]marketdata.VenueID, maxNodes),
	}
}

// Intern returns the node id for (currency, venue), assigning the next free
// id on first observation. isNew reports whether the id was just assigned.
func (x *SymbolIndex) Intern(currency string, venue marketdata.VenueID) (id int, isNew bool, err error) {
	key := nodeKey{currency: currency, venue: venue}
	if id, ok := x.ids[key]; ok {
		return id, false, nil
	}

	next := int(x.count.Load())
	if next >= x.maxNodes {
		return 0, false, apperror.New(apperror.CodeCapacityExceeded,
			apperror.WithContext(fmt.Sprintf("%s@%d", currency, venue)))
	}

	x.ids[key] = next
	x.names[next] = fmt.Sprintf("%s@%d", currency, venue)
	x.venues[next] = venue
	x.count.Store(int64(next + 1)) // publish the new prefix
	return next, true, nil
}

// Lookup returns the id for (currency, venue) without interning.
func (x *SymbolIndex) Lookup(currency string, venue marketdata.VenueID) (int, bool) {
	id, ok := x.ids[nodeKey{currency: currency, venue: venue}]
	return id, ok
}

// Count returns the number of interned nodes. Ids in [0, Count()) are valid.
func (x *SymbolIndex) Count() int {
	return int(x.count.Load())
}

// Capacity returns the maximum number of nodes.
func (x *SymbolIndex) Capacity() int {
	return x.maxNodes
}

// NameOf renders a node id for path formatting.
func (x *SymbolIndex) NameOf(id int) string {
	if id < 0 || id >= x.Count() {
		return UnknownNodeName
	}
	return x.names[id]
}

// VenueOf returns the venue a node belongs to. Valid for id < Count().
func (x *SymbolIndex) VenueOf(id int) marketdata.VenueID {
	return x.venues[id]
}
