package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// MinCycleNodes is the smallest cycle worth reporting. Two-node round trips
// are spread crossings, not arbitrage, and are rejected.
const MinCycleNodes = 3

// Opportunity represents a detected arbitrage cycle.
type Opportunity struct {
	Cycle      []int   // node ids in trade order, canonicalized
	Path       string  // human-readable rendering, e.g. "BTC@0 -> USDT@0 -> ETH@0"
	ProfitPct  float64 // cycle product minus 1
	MaxVolume  float64
	Confidence uint32 // 0-100 reliability score
	DetectedAt time.Time
}

// IsProfitable reports whether the opportunity clears the profit threshold.
func (o *Opportunity) IsProfitable(minProfit float64) bool {
	return o.ProfitPct > minProfit
}

// CanonicalCycle rotates the cycle so its lowest node id comes first. The
// same loop discovered from different entry points then compares equal.
func CanonicalCycle(cycle []int) []int {
	if len(cycle) == 0 {
		return cycle
	}
	lowest := 0
	for i, n := range cycle {
		if n < cycle[lowest] {
			lowest = i
		}
	}
	out := make([]int, len(cycle))
	copy(out, cycle[lowest:])
	copy(out[len(cycle)-lowest:], cycle[:lowest])
	return out
}

// CycleKey returns a dedupe key for a canonicalized cycle.
func CycleKey(cycle []int) string {
	var sb strings.Builder
	for i, n := range cycle {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(strconv.Itoa(n))
	}
	return sb.String()
}

// Confidence scores a cycle from profit magnitude, path length, and data
// freshness. Each term contributes up to 50 points; the sum is clipped to
// 100.
func Confidence(logReturn float64, pathLen int, dataAge time.Duration) uint32 {
	profitConfidence := math.Min(math.Abs(logReturn)*100.0, 50.0)
	pathConfidence := math.Max(0.0, 50.0-float64(pathLen)*10.0)
	freshnessConfidence := math.Max(0.0, 50.0-float64(dataAge.Milliseconds())/100.0)

	total := math.Round(profitConfidence + pathConfidence + freshnessConfidence)
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return uint32(total)
}
