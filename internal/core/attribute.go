package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"quantumassembler/internal/numeric"
)

// Ordering conventions for boosts. Lower orders apply first.
const (
	OrderBase       = 0
	OrderAggregate  = 1
	OrderMultiplier = 3
)

// Boost is one named transformation applied to an attribute value.
type Boost struct {
	ID    string
	Order int
	Fn    func(decimal.Decimal) decimal.Decimal
}

type boostEntry struct {
	Boost
	seq uint64
}

// Attribute is a value derived from a base of zero by folding an ordered
// ledger of boosts. Boost ids are unique; setting an existing id replaces the
// entry in place.
type Attribute struct {
	entries map[string]*boostEntry
	nextSeq uint64
}

// NewAttribute returns an empty attribute.
func NewAttribute() *Attribute {
	return &Attribute{entries: make(map[string]*boostEntry)}
}

// SetBoost inserts b or replaces the entry with the same id. A replaced entry
// keeps its original insertion position among boosts of equal order.
func (a *Attribute) SetBoost(b Boost) {
	if a.entries == nil {
		a.entries = make(map[string]*boostEntry)
	}
	if existing, ok := a.entries[b.ID]; ok {
		existing.Boost = b
		return
	}
	a.nextSeq++
	a.entries[b.ID] = &boostEntry{Boost: b, seq: a.nextSeq}
}

// ClearBoosts empties the ledger.
func (a *Attribute) ClearBoosts() {
	a.entries = make(map[string]*boostEntry)
}

// RemoveBoost deletes the boost with the given id.
func (a *Attribute) RemoveBoost(id string) bool {
	if _, ok := a.entries[id]; !ok {
		return false
	}
	delete(a.entries, id)
	return true
}

// RemoveBoostsWithPrefix deletes every boost whose id starts with prefix and
// returns how many were removed.
func (a *Attribute) RemoveBoostsWithPrefix(prefix string) int {
	removed := 0
	for id := range a.entries {
		if strings.HasPrefix(id, prefix) {
			delete(a.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of boosts in the ledger.
func (a *Attribute) Len() int { return len(a.entries) }

// Boosts returns boost ids in application order.
func (a *Attribute) Boosts() []string {
	sorted := a.sorted()
	out := make([]string, len(sorted))
	for i, e := range sorted {
		out[i] = e.ID
	}
	return out
}

// Value folds the ledger over the zero base.
func (a *Attribute) Value() decimal.Decimal {
	v := decimal.Zero
	for _, e := range a.sorted() {
		if e.Fn == nil {
			continue
		}
		v = e.Fn(v)
	}
	return v
}

func (a *Attribute) sorted() []*boostEntry {
	out := make([]*boostEntry, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order == out[j].Order {
			return out[i].seq < out[j].seq
		}
		return out[i].Order < out[j].Order
	})
	return out
}

// Add returns a boost function adding delta.
func Add(delta decimal.Decimal) func(decimal.Decimal) decimal.Decimal {
	return func(v decimal.Decimal) decimal.Decimal { return numeric.Add(v, delta) }
}

// Mul returns a boost function multiplying by factor.
func Mul(factor decimal.Decimal) func(decimal.Decimal) decimal.Decimal {
	return func(v decimal.Decimal) decimal.Decimal { return numeric.Mul(v, factor) }
}

// Div returns a boost function dividing by divisor. A zero divisor leaves the
// value unchanged.
func Div(divisor decimal.Decimal) func(decimal.Decimal) decimal.Decimal {
	return func(v decimal.Decimal) decimal.Decimal { return numeric.Div(v, divisor) }
}
