package core

import (
	"github.com/shopspring/decimal"

	"quantumassembler/internal/numeric"
)

// FacingMode selects how a cell resolves its effect targets.
type FacingMode string

const (
	// FacingGlobal applies while a singularity is on the grid: every cell
	// targets every other cell.
	FacingGlobal FacingMode = "all"
	// FacingAdjacent applies while a gluon is on the grid.
	FacingAdjacent FacingMode = "adjacent"
	// FacingSingular targets the single neighbour in the cell's direction.
	FacingSingular FacingMode = "direction"
)

// Cell is a handle on one grid slot. Type, tier and direction live in the
// grid's CellStore; generation and instability are derived by Reload.
type Cell struct {
	x, y        int
	grid        *Grid
	generation  *Attribute
	instability *Attribute
}

func newCell(x, y int, grid *Grid) *Cell {
	return &Cell{
		x:           x,
		y:           y,
		grid:        grid,
		generation:  NewAttribute(),
		instability: NewAttribute(),
	}
}

// X returns the cell column.
func (c *Cell) X() int { return c.x }

// Y returns the cell row.
func (c *Cell) Y() int { return c.y }

// Coordinate returns the cell position as a Coordinate.
func (c *Cell) Coordinate() Coordinate { return Coordinate{X: c.x, Y: c.y} }

// Generation returns the energy generation ledger of this cell.
func (c *Cell) Generation() *Attribute { return c.generation }

// Instability returns the instability ledger of this cell.
func (c *Cell) Instability() *Attribute { return c.instability }

func (c *Cell) record() *CellRecord {
	return c.grid.store.Get(c.Coordinate())
}

// Kind resolves the cell's persisted type. Unknown types behave as void.
func (c *Cell) Kind() Kind {
	return c.grid.kinds.Lookup(c.record().Type)
}

// Type returns the resolved type id.
func (c *Cell) Type() CellType { return c.Kind().ID() }

// Tier returns the cell's tier. Negative persisted tiers read as zero.
func (c *Cell) Tier() decimal.Decimal {
	tier := numeric.FromData(c.record().Tier)
	if tier.Sign() < 0 {
		return decimal.Zero
	}
	return tier
}

// Direction returns the facing direction, defaulting to up.
func (c *Cell) Direction() Direction {
	return c.record().Direction.Normalize()
}

func (c *Cell) set(kind CellType, tier decimal.Decimal, dir Direction) {
	rec := c.record()
	rec.Type = kind
	rec.Tier = numeric.ToData(tier)
	rec.Direction = dir.Normalize()
	rec.X, rec.Y = c.x, c.y
	c.grid.store.Put(*rec)
}

func (c *Cell) setDirection(dir Direction) {
	rec := c.record()
	rec.Direction = dir.Normalize()
	c.grid.store.Put(*rec)
}

func (c *Cell) clearBoosts() {
	c.generation.ClearBoosts()
	c.instability.ClearBoosts()
}

// Effect runs the cell kind's effect at the current tier.
func (c *Cell) Effect() {
	c.Kind().Effect(c.Tier(), c)
}

// FacingMode reports how the cell currently resolves targets. A singularity
// anywhere on the grid takes precedence over a gluon.
func (c *Cell) FacingMode() FacingMode {
	switch {
	case c.grid.HasType(CellSingularity):
		return FacingGlobal
	case c.grid.HasType(CellGluon):
		return FacingAdjacent
	default:
		return FacingSingular
	}
}

// FacingTargets returns the cells this cell's effect applies to.
func (c *Cell) FacingTargets() []*Cell {
	switch c.FacingMode() {
	case FacingGlobal:
		all := c.grid.All()
		out := make([]*Cell, 0, len(all))
		for _, other := range all {
			if other != c {
				out = append(out, other)
			}
		}
		return out
	case FacingAdjacent:
		return c.grid.Adjacent(c.x, c.y)
	default:
		return []*Cell{c.grid.Directional(c.x, c.y, c.Direction())}
	}
}
