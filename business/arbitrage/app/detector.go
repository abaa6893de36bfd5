package app

import (
	"math"
	"strings"
	"time"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/business/arbitrage/domain"
)

// relaxEpsilon guards relaxations against float noise: an edge must improve
// a distance by more than this to count.
const relaxEpsilon = 1e-9

func (e *Engine) runDetector() {
	defer e.wg.Done()
	ticker := time.NewTicker(e.cfg.DetectionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			e.detect()
		}
	}
}

// detect runs one full detection pass: Bellman-Ford from every live node,
// negative-cycle extraction, dedupe, and publication. The node count is
// snapshotted once; nodes interned mid-pass wait for the next tick.
func (e *Engine) detect() {
	n := e.index.Count()
	if n < domain.MinCycleNodes {
		return
	}

	now := time.Now()
	seen := make(map[string]struct{})

	for source := 0; source < n; source++ {
		if !e.graph.IsLive(source) {
			continue
		}
		e.relax(source, n)
		e.scanForCycles(n, now, seen)
	}
}

// relax runs Bellman-Ford from source over the first n nodes, terminating
// early once a round changes nothing.
func (e *Engine) relax(source, n int) {
	dist := e.dist[:n]
	parent := e.parent[:n]
	for i := 0; i < n; i++ {
		dist[i] = math.Inf(1)
		parent[i] = -1
	}
	dist[source] = 0

	for iter := 0; iter < n-1; iter++ {
		changed := false
		for u := 0; u < n; u++ {
			du := dist[u]
			if math.IsInf(du, 1) {
				continue
			}
			for v := 0; v < n; v++ {
				if u == v {
					continue
				}
				w := e.graph.Weight(u, v)
				if math.IsInf(w, 1) {
					continue
				}
				if du+w < dist[v]-relaxEpsilon {
					dist[v] = du + w
					parent[v] = u
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
}

// scanForCycles looks for an edge that still relaxes after n-1 rounds; every
// such edge sits on or reaches a negative cycle.
func (e *Engine) scanForCycles(n int, now time.Time, seen map[string]struct{}) {
	for u := 0; u < n; u++ {
		du := e.dist[u]
		if math.IsInf(du, 1) {
			continue
		}
		for v := 0; v < n; v++ {
			if u == v {
				continue
			}
			w := e.graph.Weight(u, v)
			if math.IsInf(w, 1) {
				continue
			}
			if du+w < e.dist[v]-relaxEpsilon {
				e.parent[v] = u
				e.reportCycle(v, n, now, seen)
			}
		}
	}
}

// reportCycle extracts the cycle reachable from v through parent links,
// verifies it against live edge weights, and hands it to the publisher.
func (e *Engine) reportCycle(v, n int, now time.Time, seen map[string]struct{}) {
	// Walk n parent links to guarantee landing inside the cycle.
	x := v
	for i := 0; i < n; i++ {
		x = e.parent[x]
		if x < 0 {
			return
		}
	}

	// Collect the loop. Parent links point against trade direction.
	cycle := []int{x}
	for c := e.parent[x]; c != x; c = e.parent[c] {
		if c < 0 || len(cycle) > n {
			return
		}
		cycle = append(cycle, c)
	}
	for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
		cycle[i], cycle[j] = cycle[j], cycle[i]
	}

	// Two-node round trips are spread crossings, not arbitrage.
	if len(cycle) < domain.MinCycleNodes {
		return
	}

	canonical := domain.CanonicalCycle(cycle)
	key := domain.CycleKey(canonical)
	if _, dup := seen[key]; dup {
		return
	}
	seen[key] = struct{}{}

	// Re-sum the loop from live edge weights; the relaxation snapshot may be
	// stale by the time the cycle surfaces.
	total := 0.0
	for i := range canonical {
		w := e.graph.Weight(canonical[i], canonical[(i+1)%len(canonical)])
		if math.IsInf(w, 1) {
			e.stats.RecordFalsePositive()
			return
		}
		total += w
	}
	if total >= -relaxEpsilon {
		e.stats.RecordFalsePositive()
		return
	}

	var age time.Duration
	if lu := e.stats.LastUpdate(); !lu.IsZero() && now.After(lu) {
		age = now.Sub(lu)
	}

	e.pub.publish(domain.Opportunity{
		Cycle:      canonical,
		Path:       e.renderPath(canonical),
		ProfitPct:  math.Exp(-total) - 1,
		MaxVolume:  e.cfg.MaxPositionSize / float64(len(canonical)),
		Confidence: domain.Confidence(total, len(canonical), age),
		DetectedAt: now,
	})
}

func (e *Engine) renderPath(cycle []int) string {
	var sb strings.Builder
	for i, id := range cycle {
		if i > 0 {
			sb.WriteString(" -> ")
		}
		sb.WriteString(e.index.NameOf(id))
	}
	return sb.String()
}
