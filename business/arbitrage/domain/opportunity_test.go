package domain

import (
	"testing"
	"time"
)

func TestCanonicalCycle(t *testing.T) {
	tests := []struct {
		name  string
		cycle []int
		want  []int
	}{
		{name: "already_canonical", cycle: []int{0, 2, 1}, want: []int{0, 2, 1}},
		{name: "rotate_once", cycle: []int{2, 0, 1}, want: []int{0, 1, 2}},
		{name: "rotate_twice", cycle: []int{5, 7, 3}, want: []int{3, 5, 7}},
		{name: "single", cycle: []int{4}, want: []int{4}},
		{name: "empty", cycle: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalCycle(tt.cycle)
			if len(got) != len(tt.want) {
				t.Fatalf("CanonicalCycle(%v) = %v, want %v", tt.cycle, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("CanonicalCycle(%v) = %v, want %v", tt.cycle, got, tt.want)
				}
			}
		})
	}
}

func TestCycleKeyDistinguishesRotationsOnlyAfterCanonicalization(t *testing.T) {
	a := CanonicalCycle([]int{2, 0, 1})
	b := CanonicalCycle([]int{1, 2, 0})
	if CycleKey(a) != CycleKey(b) {
		t.Fatalf("rotations of the same cycle must share a key: %q vs %q",
			CycleKey(a), CycleKey(b))
	}

	c := CanonicalCycle([]int{0, 2, 1}) // reversed direction is a different cycle
	if CycleKey(a) == CycleKey(c) {
		t.Fatal("opposite directions must not share a key")
	}
}

func TestConfidenceBounds(t *testing.T) {
	tests := []struct {
		name      string
		logReturn float64
		pathLen   int
		dataAge   time.Duration
		wantMin   uint32
		wantMax   uint32
	}{
		{name: "ideal", logReturn: -1.0, pathLen: 3, dataAge: 0, wantMin: 90, wantMax: 100},
		{name: "long_path", logReturn: -0.5, pathLen: 10, dataAge: 0, wantMin: 50, wantMax: 100},
		{name: "stale_data", logReturn: -0.5, pathLen: 3, dataAge: 10 * time.Second, wantMin: 50, wantMax: 80},
		{name: "tiny_profit", logReturn: -0.0001, pathLen: 5, dataAge: time.Hour, wantMin: 0, wantMax: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(tt.logReturn, tt.pathLen, tt.dataAge)
			if got > 100 {
				t.Fatalf("confidence %d exceeds 100", got)
			}
			if got < tt.wantMin || got > tt.wantMax {
				t.Fatalf("confidence = %d, want in [%d, %d]", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestIsProfitable(t *testing.T) {
	opp := &Opportunity{ProfitPct: 0.02}
	if !opp.IsProfitable(0.001) {
		t.Fatal("2% profit should clear a 0.1% threshold")
	}
	if opp.IsProfitable(0.02) {
		t.Fatal("threshold is exclusive")
	}
}
