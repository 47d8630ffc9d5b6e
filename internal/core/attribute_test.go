package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAttributeSetBoostReplacesByID(t *testing.T) {
	attr := NewAttribute()
	attr.SetBoost(Boost{ID: "charm", Order: OrderBase, Fn: Add(dec("2"))})
	attr.SetBoost(Boost{ID: "charm", Order: OrderBase, Fn: Add(dec("5"))})
	if attr.Len() != 1 {
		t.Fatalf("expected one boost after re-registration, got %d", attr.Len())
	}
	if got := attr.Value(); !got.Equal(dec("5")) {
		t.Fatalf("expected replaced value 5, got %s", got)
	}
}

func TestAttributeFoldsByOrderThenInsertion(t *testing.T) {
	attr := NewAttribute()
	attr.SetBoost(Boost{ID: "double", Order: OrderMultiplier, Fn: Mul(dec("2"))})
	attr.SetBoost(Boost{ID: "base", Order: OrderBase, Fn: Add(dec("3"))})
	attr.SetBoost(Boost{ID: "plus-one", Order: OrderMultiplier, Fn: Add(dec("1"))})
	// (0 + 3) * 2 + 1
	if got := attr.Value(); !got.Equal(dec("7")) {
		t.Fatalf("expected 7, got %s", got)
	}
	ids := attr.Boosts()
	want := []string{"base", "double", "plus-one"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("unexpected boost order %v", ids)
		}
	}

	// Replacing keeps the original insertion slot.
	attr.SetBoost(Boost{ID: "double", Order: OrderMultiplier, Fn: Mul(dec("3"))})
	if got := attr.Value(); !got.Equal(dec("10")) {
		t.Fatalf("expected 10 after replacement, got %s", got)
	}
}

func TestAttributeValueIsDeterministic(t *testing.T) {
	attr := NewAttribute()
	attr.SetBoost(Boost{ID: "a", Order: OrderBase, Fn: Add(dec("0.1"))})
	attr.SetBoost(Boost{ID: "b", Order: OrderMultiplier, Fn: Div(dec("3"))})
	first := attr.Value()
	for i := 0; i < 5; i++ {
		if got := attr.Value(); !got.Equal(first) {
			t.Fatalf("value changed between reads: %s vs %s", first, got)
		}
	}
}

func TestAttributeRemoval(t *testing.T) {
	attr := NewAttribute()
	attr.SetBoost(Boost{ID: "grid.0.0", Fn: Add(dec("1"))})
	attr.SetBoost(Boost{ID: "grid.1.0", Fn: Add(dec("1"))})
	attr.SetBoost(Boost{ID: "other", Fn: Add(dec("1"))})

	if attr.RemoveBoost("missing") {
		t.Fatalf("expected missing boost removal to report false")
	}
	if n := attr.RemoveBoostsWithPrefix("grid."); n != 2 {
		t.Fatalf("expected 2 prefixed boosts removed, got %d", n)
	}
	if !attr.RemoveBoost("other") {
		t.Fatalf("expected removal of other")
	}
	if attr.Len() != 0 || !attr.Value().IsZero() {
		t.Fatalf("expected empty ledger, got %d entries", attr.Len())
	}

	attr.SetBoost(Boost{ID: "x", Fn: Add(dec("4"))})
	attr.ClearBoosts()
	if attr.Len() != 0 {
		t.Fatalf("expected clear to empty the ledger")
	}
}

func TestDivByZeroLeavesValue(t *testing.T) {
	if got := Div(decimal.Zero)(dec("4")); !got.Equal(dec("4")) {
		t.Fatalf("expected unchanged value, got %s", got)
	}
}

func TestZeroValueAttributeAcceptsBoosts(t *testing.T) {
	var attr Attribute
	attr.SetBoost(Boost{ID: "a", Fn: Add(dec("1"))})
	if !attr.Value().Equal(dec("1")) {
		t.Fatalf("expected zero-value attribute to work")
	}
}
