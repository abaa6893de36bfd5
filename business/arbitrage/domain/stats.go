package domain

import (
	"math"
	"sync/atomic"
	"time"
)

// ewmaWeight is the decay used for the ingress latency estimate:
// avg = 0.9*avg + 0.1*sample.
const ewmaWeight = 0.1

// Stats holds process-wide pipeline counters. Fields are updated with
// relaxed atomics from the updater and detector; readers take a field-wise
// snapshot and tolerate nanosecond-scale skew between fields.
type Stats struct {
	messagesProcessed  atomic.Uint64
	opportunitiesFound atomic.Uint64
	falsePositives     atomic.Uint64
	avgLatencyBits     atomic.Uint64 // float64 microseconds
	lastUpdateNanos    atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	MessagesProcessed  uint64
	OpportunitiesFound uint64
	FalsePositives     uint64
	AvgLatencyUS       float64
	LastUpdate         time.Time
}

// RecordMessage counts one accepted tick.
func (s *Stats) RecordMessage() {
	s.messagesProcessed.Add(1)
}

// RecordOpportunity counts one published opportunity.
func (s *Stats) RecordOpportunity() {
	s.opportunitiesFound.Add(1)
}

// RecordFalsePositive counts one cycle that failed the profit recompute.
func (s *Stats) RecordFalsePositive() {
	s.falsePositives.Add(1)
}

// UpdateLatency folds an ingress latency sample (microseconds) into the
// exponentially-weighted moving average. The read-modify-write is not
// atomic as a whole; the estimate is approximate by construction and lost
// updates under contention are acceptable.
func (s *Stats) UpdateLatency(sampleUS float64) {
	current := math.Float64frombits(s.avgLatencyBits.Load())
	next := (1-ewmaWeight)*current + ewmaWeight*sampleUS
	s.avgLatencyBits.Store(math.Float64bits(next))
}

// AvgLatencyUS returns the current latency estimate in microseconds.
func (s *Stats) AvgLatencyUS() float64 {
	return math.Float64frombits(s.avgLatencyBits.Load())
}

// MarkUpdated records the timestamp of the most recent graph update.
func (s *Stats) MarkUpdated(t time.Time) {
	s.lastUpdateNanos.Store(t.UnixNano())
}

// LastUpdate returns the most recent graph update time, zero if none.
func (s *Stats) LastUpdate() time.Time {
	nanos := s.lastUpdateNanos.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

// Snapshot reads each field once and returns a self-consistent view.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		MessagesProcessed:  s.messagesProcessed.Load(),
		OpportunitiesFound: s.opportunitiesFound.Load(),
		FalsePositives:     s.falsePositives.Load(),
		AvgLatencyUS:       s.AvgLatencyUS(),
		LastUpdate:         s.LastUpdate(),
	}
}
