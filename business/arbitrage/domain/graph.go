package domain

import (
	"math"
	"sync/atomic"
)

// PriceGraph is a dense V×V matrix of log-space edge weights. A weight of
// +Inf means "no edge"; the diagonal cell w(u,u) is 0 exactly when node u is
// live. Edges carry the negated natural log of a conversion ratio, so a
// negative-weight cycle is a conversion loop whose product exceeds 1.
//
// The graph has exactly one writer (the graph updater) and one reader (the
// cycle detector). Cells are stored as float64 bit patterns accessed with
// atomic loads and stores, so the reader never sees a torn value; it may see
// a mix of old and new edges within one pass, which the detection cadence
// tolerates.
type PriceGraph struct {
	stride int
	cells  []uint64
}

var infBits = math.Float64bits(math.Inf(1))

// NewPriceGraph allocates a graph with capacity for maxNodes nodes. All
// edges start at +Inf, including the diagonal: a node is dead until marked
// live.
func NewPriceGraph(maxNodes int) *PriceGraph {
	g := &PriceGraph{
		stride: maxNodes,
		cells:  make([]uint64, maxNodes*maxNodes),
	}
	for i := range g.cells {
		g.cells[i] = infBits
	}
	return g
}

// Capacity returns the node capacity of the graph.
func (g *PriceGraph) Capacity() int {
	return g.stride
}

// Weight returns the edge weight from u to v.
func (g *PriceGraph) Weight(u, v int) float64 {
	return math.Float64frombits(atomic.LoadUint64(&g.cells[u*g.stride+v]))
}

// SetWeight overwrites the edge weight from u to v.
func (g *PriceGraph) SetWeight(u, v int, w float64) {
	atomic.StoreUint64(&g.cells[u*g.stride+v], math.Float64bits(w))
}

// MarkLive sets the self-edge of u to zero, marking the node observed.
// Once live, a node stays live for the process lifetime.
func (g *PriceGraph) MarkLive(u int) {
	atomic.StoreUint64(&g.cells[u*g.stride+u], 0)
}

// IsLive reports whether node u has been observed.
func (g *PriceGraph) IsLive(u int) bool {
	return g.Weight(u, u) == 0
}
