package core

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a coordinate lies outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrInvalidArgument wraps rejected sizes, tiers and directions.
	ErrInvalidArgument = errors.New("invalid argument")
)

// MaxGridSize is the default upper bound on either grid dimension.
const MaxGridSize = 64

// gridSizeCeiling bounds configured limits so x*y cannot overflow or exhaust
// memory.
const gridSizeCeiling = 1024

// Grid owns the cell handles of the assembler in row-major order.
type Grid struct {
	xSize   int
	ySize   int
	maxSize int
	cells   []*Cell
	store CellStore
	kinds *KindRegistry
}

// GridView is the read-only surface rules evaluate against.
type GridView interface {
	Size() (x, y int)
	All() []*Cell
	OfType(id CellType) []*Cell
	Kinds() *KindRegistry
}

// NewGrid builds an x by y grid backed by store.
func NewGrid(x, y int, store CellStore, kinds *KindRegistry) (*Grid, error) {
	return newGrid(x, y, MaxGridSize, store, kinds)
}

func newGrid(x, y, maxSize int, store CellStore, kinds *KindRegistry) (*Grid, error) {
	maxSize = normalizeMaxSize(maxSize)
	if err := validateSize(x, y, maxSize); err != nil {
		return nil, err
	}
	if store == nil {
		store = NewMemoryCellStore()
	}
	if kinds == nil {
		kinds = NewKindRegistry(DefaultBalance())
	}
	g := &Grid{store: store, kinds: kinds, maxSize: maxSize}
	g.layout(x, y)
	return g, nil
}

func normalizeMaxSize(n int) int {
	switch {
	case n <= 0:
		return MaxGridSize
	case n > gridSizeCeiling:
		return gridSizeCeiling
	}
	return n
}

func validateSize(x, y, maxSize int) error {
	if x <= 0 || y <= 0 {
		return fmt.Errorf("grid size %dx%d must be positive: %w", x, y, ErrInvalidArgument)
	}
	if x > maxSize || y > maxSize {
		return fmt.Errorf("grid size %dx%d exceeds %d: %w", x, y, maxSize, ErrInvalidArgument)
	}
	return nil
}

func (g *Grid) layout(x, y int) {
	prev := g.cells
	prevX, prevY := g.xSize, g.ySize
	g.xSize, g.ySize = x, y
	g.cells = make([]*Cell, 0, x*y)
	for cy := 0; cy < y; cy++ {
		for cx := 0; cx < x; cx++ {
			if cx < prevX && cy < prevY {
				g.cells = append(g.cells, prev[cy*prevX+cx])
				continue
			}
			g.cells = append(g.cells, newCell(cx, cy, g))
		}
	}
}

// MaxSize returns the largest accepted edge length.
func (g *Grid) MaxSize() int { return g.maxSize }

// Size returns the grid dimensions.
func (g *Grid) Size() (x, y int) { return g.xSize, g.ySize }

// Kinds returns the registry used to resolve cell types.
func (g *Grid) Kinds() *KindRegistry { return g.kinds }

// Store returns the backing cell store.
func (g *Grid) Store() CellStore { return g.store }

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.xSize && y >= 0 && y < g.ySize
}

// GetCell returns the cell at (x, y) or ErrOutOfBounds.
func (g *Grid) GetCell(x, y int) (*Cell, error) {
	if !g.inBounds(x, y) {
		return nil, fmt.Errorf("cell %d,%d in %dx%d grid: %w", x, y, g.xSize, g.ySize, ErrOutOfBounds)
	}
	return g.cells[y*g.xSize+x], nil
}

func (g *Grid) at(x, y int) *Cell { return g.cells[y*g.xSize+x] }

// All returns every cell, rows top to bottom and left to right within a row.
func (g *Grid) All() []*Cell {
	out := make([]*Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// Adjacent returns the in-bounds edge neighbours of (x, y) in the order up,
// right, down, left. The origin is never included.
func (g *Grid) Adjacent(x, y int) []*Cell {
	out := make([]*Cell, 0, 4)
	for _, dir := range []Direction{DirectionUp, DirectionRight, DirectionDown, DirectionLeft} {
		dx, dy := dir.Delta()
		if g.inBounds(x+dx, y+dy) {
			out = append(out, g.at(x+dx, y+dy))
		}
	}
	return out
}

// Directional returns the neighbour of (x, y) in dir. When that neighbour is
// outside the grid the origin cell is returned instead. It returns nil only
// when the origin itself is out of bounds.
func (g *Grid) Directional(x, y int, dir Direction) *Cell {
	if !g.inBounds(x, y) {
		return nil
	}
	dx, dy := dir.Normalize().Delta()
	if g.inBounds(x+dx, y+dy) {
		return g.at(x+dx, y+dy)
	}
	return g.at(x, y)
}

// Resize changes the grid dimensions. Cells inside the new bounds keep their
// handles and state; records of discarded cells are removed from the store.
// Nothing is recomputed.
func (g *Grid) Resize(x, y int) error {
	if err := validateSize(x, y, g.maxSize); err != nil {
		return err
	}
	for _, cell := range g.cells {
		if cell.x >= x || cell.y >= y {
			g.store.Delete(cell.Coordinate())
		}
	}
	g.layout(x, y)
	return nil
}

// OfType returns the cells whose resolved type is id, in grid order.
func (g *Grid) OfType(id CellType) []*Cell {
	var out []*Cell
	for _, cell := range g.cells {
		if cell.Type() == id {
			out = append(out, cell)
		}
	}
	return out
}

// HasType reports whether any cell has type id.
func (g *Grid) HasType(id CellType) bool {
	for _, cell := range g.cells {
		if cell.Type() == id {
			return true
		}
	}
	return false
}

// CountType returns how many cells have type id.
func (g *Grid) CountType(id CellType) int {
	n := 0
	for _, cell := range g.cells {
		if cell.Type() == id {
			n++
		}
	}
	return n
}
