package game

import (
	"github.com/shopspring/decimal"

	"quantumassembler/internal/core"
	"quantumassembler/internal/economy"
	"quantumassembler/internal/numeric"
)

// CellView is the read model of one cell.
type CellView struct {
	X           int             `json:"x"`
	Y           int             `json:"y"`
	Type        core.CellType   `json:"type"`
	Glyph       string          `json:"glyph"`
	Tier        string          `json:"tier"`
	Direction   core.Direction  `json:"direction"`
	Facing      core.FacingMode `json:"facing"`
	Generation  string          `json:"generation"`
	Instability string          `json:"instability"`
	Cost        string          `json:"next_tier_cost"`
}

// GridView is the read model of the whole grid.
type GridView struct {
	X          int              `json:"x"`
	Y          int              `json:"y"`
	Valid      bool             `json:"valid"`
	Violations []core.Violation `json:"violations,omitempty"`
	Cells      []CellView       `json:"cells"`
}

// Resources reports balances and their rates of change.
type Resources struct {
	Energy          string `json:"energy"`
	Instability     string `json:"instability"`
	EnergyGain      string `json:"energy_gain"`
	InstabilityGain string `json:"instability_gain"`
}

// Grid returns the grid read model in row-major order.
func (g *Game) Grid() GridView {
	g.mu.Lock()
	defer g.mu.Unlock()
	x, y := g.assembler.Grid().Size()
	view := GridView{X: x, Y: y, Valid: g.assembler.IsValid(), Violations: g.assembler.Violations()}
	for _, cell := range g.assembler.Grid().All() {
		kind := cell.Kind()
		tier := cell.Tier()
		view.Cells = append(view.Cells, CellView{
			X:           cell.X(),
			Y:           cell.Y(),
			Type:        kind.ID(),
			Glyph:       kind.Glyph(),
			Tier:        numeric.Format(tier),
			Direction:   cell.Direction(),
			Facing:      cell.FacingMode(),
			Generation:  numeric.Format(cell.Generation().Value()),
			Instability: numeric.Format(cell.Instability().Value()),
			Cost:        numeric.Format(kind.Cost(numeric.Add(tier, decimal.NewFromInt(1)))),
		})
	}
	return view
}

// Resources returns the formatted wallet balances and rates.
func (g *Game) Resources() Resources {
	g.mu.Lock()
	defer g.mu.Unlock()
	energy, _ := g.wallet.Balance(economy.Energy)
	instability, _ := g.wallet.Balance(economy.Instability)
	return Resources{
		Energy:          numeric.Format(energy),
		Instability:     numeric.Format(instability),
		EnergyGain:      numeric.FormatGain(g.assembler.Energy().Value()),
		InstabilityGain: numeric.FormatGain(g.assembler.Instability().Value()),
	}
}
