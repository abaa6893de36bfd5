package domain

import (
	"testing"

	"github.com/sohammirajkar/Crypto-Arbitrage-Scanner/internal/apperror"
)

func TestInternAssignsDenseIds(t *testing.T) {
	x := NewSymbolIndex(8)

	id0, isNew, err := x.Intern("BTC", 0)
	if err != nil || !isNew || id0 != 0 {
		t.Fatalf("first intern = (%d, %v, %v), want (0, true, nil)", id0, isNew, err)
	}

	id1, isNew, err := x.Intern("USDT", 0)
	if err != nil || !isNew || id1 != 1 {
		t.Fatalf("second intern = (%d, %v, %v), want (1, true, nil)", id1, isNew, err)
	}

	// Same currency on another venue is a distinct node.
	id2, isNew, err := x.Intern("BTC", 1)
	if err != nil || !isNew || id2 != 2 {
		t.Fatalf("cross-venue intern = (%d, %v, %v), want (2, true, nil)", id2, isNew, err)
	}

	// Re-interning returns the existing id.
	again, isNew, err := x.Intern("BTC", 0)
	if err != nil || isNew || again != id0 {
		t.Fatalf("re-intern = (%d, %v, %v), want (%d, false, nil)", again, isNew, err, id0)
	}

	if x.Count() != 3 {
		t.Fatalf("Count = %d, want 3", x.Count())
	}
}

func TestInternCapacityExceeded(t *testing.T) {
	x := NewSymbolIndex(2)
	if _, _, err := x.Intern("A", 0); err != nil {
		t.Fatal(err)
	}
	if _, _, err := x.Intern("B", 0); err != nil {
		t.Fatal(err)
	}

	_, _, err := x.Intern("C", 0)
	if err == nil {
		t.Fatal("expected capacity error")
	}
	if got := apperror.GetCode(err); got != apperror.CodeCapacityExceeded {
		t.Fatalf("error code = %s, want %s", got, apperror.CodeCapacityExceeded)
	}

	// A full index still resolves existing nodes.
	if id, ok := x.Lookup("B", 0); !ok || id != 1 {
		t.Fatalf("Lookup(B@0) = (%d, %v), want (1, true)", id, ok)
	}
}

func TestNameOf(t *testing.T) {
	x := NewSymbolIndex(4)
	id, _, _ := x.Intern("ETH", 2)

	if got := x.NameOf(id); got != "ETH@2" {
		t.Fatalf("NameOf = %q, want %q", got, "ETH@2")
	}
	if got := x.NameOf(99); got != UnknownNodeName {
		t.Fatalf("NameOf(unknown) = %q, want %q", got, UnknownNodeName)
	}
	if got := x.NameOf(-1); got != UnknownNodeName {
		t.Fatalf("NameOf(-1) = %q, want %q", got, UnknownNodeName)
	}
}

func TestVenueOf(t *testing.T) {
	x := NewSymbolIndex(4)
	a, _, _ := x.Intern("BTC", 0)
	b, _, _ := x.Intern("BTC", 3)

	if x.VenueOf(a) != 0 || x.VenueOf(b) != 3 {
		t.Fatalf("VenueOf = (%d, %d), want (0, 3)", x.VenueOf(a), x.VenueOf(b))
	}
}
