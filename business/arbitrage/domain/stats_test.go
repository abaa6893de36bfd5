package domain

import (
	"math"
	"testing"
	"time"
)

func TestStatsCounters(t *testing.T) {
	var s Stats
	s.RecordMessage()
	s.RecordMessage()
	s.RecordOpportunity()
	s.RecordFalsePositive()

	snap := s.Snapshot()
	if snap.MessagesProcessed != 2 {
		t.Fatalf("MessagesProcessed = %d, want 2", snap.MessagesProcessed)
	}
	if snap.OpportunitiesFound != 1 {
		t.Fatalf("OpportunitiesFound = %d, want 1", snap.OpportunitiesFound)
	}
	if snap.FalsePositives != 1 {
		t.Fatalf("FalsePositives = %d, want 1", snap.FalsePositives)
	}
}

func TestLatencyEWMA(t *testing.T) {
	var s Stats

	// First sample from a zero average: 0.9*0 + 0.1*100.
	s.UpdateLatency(100)
	if got := s.AvgLatencyUS(); math.Abs(got-10) > 1e-9 {
		t.Fatalf("avg after first sample = %v, want 10", got)
	}

	s.UpdateLatency(100)
	if got := s.AvgLatencyUS(); math.Abs(got-19) > 1e-9 {
		t.Fatalf("avg after second sample = %v, want 19", got)
	}
}

func TestLastUpdate(t *testing.T) {
	var s Stats
	if !s.LastUpdate().IsZero() {
		t.Fatal("fresh stats should have zero LastUpdate")
	}

	now := time.Now()
	s.MarkUpdated(now)
	if got := s.LastUpdate(); got.UnixNano() != now.UnixNano() {
		t.Fatalf("LastUpdate = %v, want %v", got, now)
	}
}
