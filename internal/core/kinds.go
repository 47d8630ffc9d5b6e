package core

import (
	"fmt"

	"github.com/shopspring/decimal"

	"quantumassembler/internal/numeric"
)

// Kind is one cell type. Each built-in variant is its own type so effect
// behaviour is dispatched through the interface rather than stored as data.
type Kind interface {
	ID() CellType
	Glyph() string
	Name() string
	Description() string
	// Special kinds may appear at most once on a valid grid.
	Special() bool
	// Cost returns the energy price of one cell at tier.
	Cost(tier decimal.Decimal) decimal.Decimal
	// Effect registers the boosts contributed by self at tier. It must only
	// write boosts; reading other cells' values is not allowed.
	Effect(tier decimal.Decimal, self *Cell)
}

// Balance holds the tunable effect coefficients.
type Balance struct {
	CharmGeneration  float64 `mapstructure:"charm_generation"`
	CharmInstability float64 `mapstructure:"charm_instability"`
	UpGeneration     float64 `mapstructure:"up_generation"`
	UpInstability    float64 `mapstructure:"up_instability"`
	DownInstability  float64 `mapstructure:"down_instability"`
}

// DefaultBalance returns the shipped coefficients.
func DefaultBalance() Balance {
	return Balance{
		CharmGeneration:  1,
		CharmInstability: 0.1,
		UpGeneration:     1,
		UpInstability:    0.5,
		DownInstability:  1,
	}
}

// pricing computes a cost for a tier.
type pricing interface {
	price(tier decimal.Decimal) decimal.Decimal
}

// powerCurve prices tier as round(tier^((tier+offset)*scale) + add).
type powerCurve struct {
	offset decimal.Decimal
	scale  decimal.Decimal
	add    decimal.Decimal
}

func curve(offset, scale float64, add decimal.Decimal) powerCurve {
	return powerCurve{offset: decimal.NewFromFloat(offset), scale: decimal.NewFromFloat(scale), add: add}
}

func (c powerCurve) price(tier decimal.Decimal) decimal.Decimal {
	exp := numeric.Mul(numeric.Add(tier, c.offset), c.scale)
	return numeric.Round0(numeric.Add(numeric.Pow(tier, exp), c.add))
}

type flatPrice struct{ value decimal.Decimal }

func (f flatPrice) price(decimal.Decimal) decimal.Decimal { return f.value }

// kindInfo carries the static identity shared by every variant.
type kindInfo struct {
	id          CellType
	glyph       string
	name        string
	description string
	special     bool
	pricing     pricing
}

func (k kindInfo) ID() CellType        { return k.id }
func (k kindInfo) Glyph() string       { return k.glyph }
func (k kindInfo) Name() string        { return k.name }
func (k kindInfo) Description() string { return k.description }
func (k kindInfo) Special() bool       { return k.special }

func (k kindInfo) Cost(tier decimal.Decimal) decimal.Decimal {
	if k.pricing == nil {
		return decimal.Zero
	}
	return k.pricing.price(tier)
}

// targetBoostID names a boost a source cell places on another cell.
func targetBoostID(kind CellType, source *Cell) string {
	return fmt.Sprintf("%s.%d.%d", kind, source.X(), source.Y())
}

type voidKind struct{ kindInfo }

func (voidKind) Effect(decimal.Decimal, *Cell) {}

type charmKind struct {
	kindInfo
	generation  decimal.Decimal
	instability decimal.Decimal
}

// Effect adds tier-scaled generation and instability to the charm cell itself.
func (k charmKind) Effect(tier decimal.Decimal, self *Cell) {
	id := string(k.id)
	self.Generation().SetBoost(Boost{ID: id, Order: OrderBase, Fn: Add(numeric.Mul(tier, k.generation))})
	self.Instability().SetBoost(Boost{ID: id, Order: OrderBase, Fn: Add(numeric.Mul(tier, k.instability))})
}

type upKind struct {
	kindInfo
	generation  decimal.Decimal
	instability decimal.Decimal
}

// Effect multiplies generation and instability of every facing target.
func (k upKind) Effect(tier decimal.Decimal, self *Cell) {
	id := targetBoostID(k.id, self)
	gen := numeric.Add(one, numeric.Mul(tier, k.generation))
	inst := numeric.Add(one, numeric.Mul(tier, k.instability))
	for _, target := range self.FacingTargets() {
		target.Generation().SetBoost(Boost{ID: id, Order: OrderMultiplier, Fn: Mul(gen)})
		target.Instability().SetBoost(Boost{ID: id, Order: OrderMultiplier, Fn: Mul(inst)})
	}
}

type downKind struct {
	kindInfo
	instability decimal.Decimal
}

// Effect divides the instability of every facing target.
func (k downKind) Effect(tier decimal.Decimal, self *Cell) {
	id := targetBoostID(k.id, self)
	divisor := numeric.Add(one, numeric.Mul(tier, k.instability))
	for _, target := range self.FacingTargets() {
		target.Instability().SetBoost(Boost{ID: id, Order: OrderMultiplier, Fn: Div(divisor)})
	}
}

// The remaining quarks and bosons have no agreed numeric effect yet. They are
// placeable and priced, and the special ones take part in validation.
type strangeKind struct{ kindInfo }

func (strangeKind) Effect(decimal.Decimal, *Cell) {}

type topKind struct{ kindInfo }

func (topKind) Effect(decimal.Decimal, *Cell) {}

type gravitonKind struct{ kindInfo }

func (gravitonKind) Effect(decimal.Decimal, *Cell) {}

type higgsBosonKind struct{ kindInfo }

func (higgsBosonKind) Effect(decimal.Decimal, *Cell) {}

type zBosonKind struct{ kindInfo }

func (zBosonKind) Effect(decimal.Decimal, *Cell) {}

type wBosonKind struct{ kindInfo }

func (wBosonKind) Effect(decimal.Decimal, *Cell) {}

// Gluons and singularities act through facing resolution only.
type gluonKind struct{ kindInfo }

func (gluonKind) Effect(decimal.Decimal, *Cell) {}

type singularityKind struct{ kindInfo }

func (singularityKind) Effect(decimal.Decimal, *Cell) {}

var one = decimal.NewFromInt(1)

func builtinKinds(b Balance) []Kind {
	minusOne := func(d decimal.Decimal) decimal.Decimal { return numeric.Sub(d, one) }
	return []Kind{
		voidKind{kindInfo{id: CellVoid, glyph: "V", name: "Void", description: "Empty slot."}},
		charmKind{
			kindInfo: kindInfo{id: CellCharm, glyph: "C", name: "Charm Quark",
				description: "Generates energy and a little instability.",
				pricing:     curve(2.5, 1, decimal.Zero)},
			generation:  decimal.NewFromFloat(b.CharmGeneration),
			instability: decimal.NewFromFloat(b.CharmInstability),
		},
		upKind{
			kindInfo: kindInfo{id: CellUp, glyph: "U", name: "Up Quark",
				description: "Multiplies the generation and instability of the cells it faces.",
				pricing:     curve(4, 1.25, decimal.NewFromInt(4))},
			generation:  decimal.NewFromFloat(b.UpGeneration),
			instability: decimal.NewFromFloat(b.UpInstability),
		},
		downKind{
			kindInfo: kindInfo{id: CellDown, glyph: "D", name: "Down Quark",
				description: "Divides the instability of the cells it faces.",
				pricing:     curve(3.5, 1.25, decimal.NewFromInt(4))},
			instability: decimal.NewFromFloat(b.DownInstability),
		},
		strangeKind{kindInfo{id: CellStrange, glyph: "S", name: "Strange Quark",
			description: "Ends the assembler.",
			pricing:     curve(3, 1, decimal.NewFromInt(4))}},
		topKind{kindInfo{id: CellTop, glyph: "T", name: "Top Quark",
			description: "Amplifies the up quark it faces.",
			pricing:     curve(5, 1.5, decimal.NewFromInt(999))}},
		gravitonKind{kindInfo{id: CellGraviton, glyph: "G", name: "Graviton", special: true,
			description: "Strengthens the effect of every cell.",
			pricing:     curve(7, 2, minusOne(decimal.New(1, 9)))}},
		higgsBosonKind{kindInfo{id: CellHiggsBoson, glyph: "H", name: "Higgs Boson", special: true,
			description: "Squares the generated value.",
			pricing:     curve(10, 3, minusOne(decimal.New(1, 15)))}},
		zBosonKind{kindInfo{id: CellZBoson, glyph: "Z", name: "Z Boson", special: true,
			description: "Raises the value of every cell.",
			pricing:     curve(15, 4, minusOne(decimal.New(1, 30)))}},
		wBosonKind{kindInfo{id: CellWBoson, glyph: "W", name: "W Boson", special: true,
			description: "Lowers the instability of every cell.",
			pricing:     curve(20, 5, minusOne(decimal.New(1, 20)))}},
		gluonKind{kindInfo{id: CellGluon, glyph: "G", name: "Gluon", special: true,
			description: "Every cell affects its adjacent cells regardless of direction.",
			pricing:     flatPrice{decimal.New(1, 25)}}},
		singularityKind{kindInfo{id: CellSingularity, glyph: "X", name: "Singularity", special: true,
			description: "Every cell affects every other cell.",
			pricing:     flatPrice{decimal.New(1, 1000)}}},
	}
}

// KindRegistry resolves cell type ids to kinds.
type KindRegistry struct {
	kinds map[CellType]Kind
	order []CellType
}

// NewKindRegistry returns a registry holding the built-in kinds tuned by b.
func NewKindRegistry(b Balance) *KindRegistry {
	r := &KindRegistry{kinds: make(map[CellType]Kind)}
	for _, kind := range builtinKinds(b) {
		if err := r.Register(kind); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a kind. Ids must be non-empty and unique.
func (r *KindRegistry) Register(kind Kind) error {
	if kind == nil {
		return fmt.Errorf("kind cannot be nil")
	}
	id := kind.ID()
	if id == "" {
		return fmt.Errorf("kind id cannot be empty")
	}
	if _, exists := r.kinds[id]; exists {
		return fmt.Errorf("kind %s already registered", id)
	}
	r.kinds[id] = kind
	r.order = append(r.order, id)
	return nil
}

// Lookup returns the kind for id, or void when id is unknown.
func (r *KindRegistry) Lookup(id CellType) Kind {
	if kind, ok := r.kinds[id]; ok {
		return kind
	}
	return r.kinds[CellVoid]
}

// Has reports whether id is registered.
func (r *KindRegistry) Has(id CellType) bool {
	_, ok := r.kinds[id]
	return ok
}

// All returns every kind in registration order.
func (r *KindRegistry) All() []Kind {
	out := make([]Kind, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.kinds[id])
	}
	return out
}

// Special returns the special kinds in registration order.
func (r *KindRegistry) Special() []Kind {
	var out []Kind
	for _, id := range r.order {
		if kind := r.kinds[id]; kind.Special() {
			out = append(out, kind)
		}
	}
	return out
}
