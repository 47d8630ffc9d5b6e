// Package economy holds the currencies the assembler spends and produces.
package economy

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"quantumassembler/internal/core"
	"quantumassembler/internal/numeric"
	"quantumassembler/pkg/domain"
)

// Currency names persisted in saves.
const (
	Energy      = "energy"
	Instability = "instability"
)

// Currency is a single named balance.
type Currency struct {
	Name   string
	Amount decimal.Decimal
}

// PriceList prices shop items. core.KindRegistry satisfies it through
// Lookup(...).Cost.
type PriceList interface {
	Lookup(id core.CellType) core.Kind
	Has(id core.CellType) bool
}

// Wallet holds the energy and instability balances and sells cells priced by
// their kind's cost curve. It is safe for concurrent use.
type Wallet struct {
	mu          sync.Mutex
	prices      PriceList
	energy      decimal.Decimal
	instability decimal.Decimal
}

var _ core.Purchaser = (*Wallet)(nil)

// NewWallet returns an empty wallet pricing items with prices.
func NewWallet(prices PriceList) *Wallet {
	return &Wallet{prices: prices}
}

// Cost returns the price of quantity items of itemID at tier. Unknown items
// are not for sale.
func (w *Wallet) Cost(itemID string, tier decimal.Decimal, quantity int) (decimal.Decimal, error) {
	id := core.CellType(itemID)
	if w.prices == nil || !w.prices.Has(id) {
		return decimal.Zero, fmt.Errorf("item %q is not for sale", itemID)
	}
	if quantity <= 0 {
		return decimal.Zero, fmt.Errorf("quantity %d must be positive", quantity)
	}
	return numeric.Mul(w.prices.Lookup(id).Cost(tier), decimal.NewFromInt(int64(quantity))), nil
}

// CanAfford reports whether the energy balance covers the purchase.
func (w *Wallet) CanAfford(itemID string, tier decimal.Decimal, quantity int) bool {
	cost, err := w.Cost(itemID, tier, quantity)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return numeric.Cmp(w.energy, cost) >= 0
}

// BuyItem debits the purchase from energy when affordable.
func (w *Wallet) BuyItem(itemID string, tier decimal.Decimal, quantity int) bool {
	cost, err := w.Cost(itemID, tier, quantity)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if numeric.Cmp(w.energy, cost) < 0 {
		return false
	}
	w.energy = numeric.Sub(w.energy, cost)
	return true
}

// Gain credits rate per second over dt to each balance.
func (w *Wallet) Gain(energyRate, instabilityRate decimal.Decimal, dt time.Duration) {
	if dt <= 0 {
		return
	}
	seconds := decimal.NewFromFloat(dt.Seconds())
	w.mu.Lock()
	defer w.mu.Unlock()
	w.energy = numeric.Add(w.energy, numeric.Mul(energyRate, seconds))
	w.instability = numeric.Add(w.instability, numeric.Mul(instabilityRate, seconds))
}

// Balances returns both currencies.
func (w *Wallet) Balances() []Currency {
	w.mu.Lock()
	defer w.mu.Unlock()
	return []Currency{
		{Name: Energy, Amount: w.energy},
		{Name: Instability, Amount: w.instability},
	}
}

// Balance returns one currency amount by name.
func (w *Wallet) Balance(name string) (decimal.Decimal, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch name {
	case Energy:
		return w.energy, true
	case Instability:
		return w.instability, true
	}
	return decimal.Zero, false
}

// SetBalance overwrites a currency amount, saturating at the numeric cap.
func (w *Wallet) SetBalance(name string, amount decimal.Decimal) error {
	amount = numeric.Clamp(amount)
	w.mu.Lock()
	defer w.mu.Unlock()
	switch name {
	case Energy:
		w.energy = amount
	case Instability:
		w.instability = amount
	default:
		return fmt.Errorf("unknown currency %q", name)
	}
	return nil
}

// Export returns the balances in their persisted form.
func (w *Wallet) Export() map[string]domain.DecimalData {
	out := make(map[string]domain.DecimalData, 2)
	for _, c := range w.Balances() {
		out[c.Name] = numeric.ToData(c.Amount)
	}
	return out
}

// Import restores balances from their persisted form. Unknown currencies are
// ignored; missing ones reset to zero.
func (w *Wallet) Import(data map[string]domain.DecimalData) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.energy = numeric.FromData(data[Energy])
	w.instability = numeric.FromData(data[Instability])
}
