package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"quantumassembler/internal/numeric"
)

// gridBoostPrefix prefixes the per-cell entries aggregated into the global
// energy and instability ledgers.
const gridBoostPrefix = "quantumAssemblerGrid."

// DefaultGridSize is the edge length of a freshly created grid.
const DefaultGridSize = 2

// Purchaser debits the cost of shop items. The assembler never computes costs
// itself.
type Purchaser interface {
	BuyItem(itemID string, tier decimal.Decimal, quantity int) bool
	CanAfford(itemID string, tier decimal.Decimal, quantity int) bool
}

type closedShop struct{}

func (closedShop) BuyItem(string, decimal.Decimal, int) bool   { return false }
func (closedShop) CanAfford(string, decimal.Decimal, int) bool { return false }

// ErrUnknownRotation is returned for rotations that are neither cw, ccw nor a
// compass direction.
type ErrUnknownRotation struct {
	Value string
}

func (e ErrUnknownRotation) Error() string {
	return fmt.Sprintf("unknown rotation %q", e.Value)
}

// ErrUnknownKind is returned when placing a cell type that is not registered.
type ErrUnknownKind struct {
	ID CellType
}

func (e ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown cell type %q", string(e.ID))
}

// Rotation turns a cell: cw and ccw step through up, right, down, left; a
// compass direction sets the facing directly.
type Rotation string

const (
	RotateClockwise        Rotation = "cw"
	RotateCounterClockwise Rotation = "ccw"
)

// ParseRotation validates s as a rotation.
func ParseRotation(s string) (Rotation, error) {
	r := Rotation(strings.ToLower(strings.TrimSpace(s)))
	switch {
	case r == RotateClockwise, r == RotateCounterClockwise:
		return r, nil
	case Direction(r).Valid():
		return r, nil
	}
	return "", ErrUnknownRotation{Value: s}
}

// Apply returns the direction reached by rotating from dir.
func (r Rotation) Apply(dir Direction) (Direction, error) {
	switch r {
	case RotateClockwise:
		return dir.Clockwise(), nil
	case RotateCounterClockwise:
		return dir.CounterClockwise(), nil
	}
	if d := Direction(r); d.Valid() {
		return d, nil
	}
	return "", ErrUnknownRotation{Value: string(r)}
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithGridSize sets the initial grid dimensions.
func WithGridSize(x, y int) Option {
	return func(a *Assembler) { a.sizeX, a.sizeY = x, y }
}

// WithMaxGridSize bounds both grid dimensions. Values of zero or less keep
// MaxGridSize; values above 1024 are capped there.
func WithMaxGridSize(n int) Option {
	return func(a *Assembler) { a.maxGrid = normalizeMaxSize(n) }
}

// WithKinds replaces the kind registry.
func WithKinds(kinds *KindRegistry) Option {
	return func(a *Assembler) {
		if kinds != nil {
			a.kinds = kinds
		}
	}
}

// WithBalance builds the built-in kinds with the supplied coefficients.
func WithBalance(b Balance) Option {
	return func(a *Assembler) { a.kinds = NewKindRegistry(b) }
}

// WithStore sets the cell store backing the grid.
func WithStore(store CellStore) Option {
	return func(a *Assembler) {
		if store != nil {
			a.store = store
		}
	}
}

// WithPurchaser sets the shop used by BuyCell.
func WithPurchaser(p Purchaser) Option {
	return func(a *Assembler) {
		if p != nil {
			a.purchaser = p
		}
	}
}

// WithRulesEngine replaces the validation rules.
func WithRulesEngine(engine *RulesEngine) Option {
	return func(a *Assembler) {
		if engine != nil {
			a.engine = engine
		}
	}
}

// WithLogger sets the assembler logger.
func WithLogger(logger Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetricsRecorder sets the operation metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(a *Assembler) {
		if recorder != nil {
			a.metrics = recorder
		}
	}
}

// WithTracer sets the operation tracer.
func WithTracer(tracer Tracer) Option {
	return func(a *Assembler) {
		if tracer != nil {
			a.tracer = tracer
		}
	}
}

// WithClock overrides the clock used to time operations.
func WithClock(clock Clock) Option {
	return func(a *Assembler) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// Assembler owns the grid and the global energy and instability totals.
// It is not safe for concurrent use.
type Assembler struct {
	sizeX, sizeY int
	maxGrid      int

	grid      *Grid
	kinds     *KindRegistry
	engine    *RulesEngine
	store     CellStore
	purchaser Purchaser
	logger    Logger
	metrics   MetricsRecorder
	tracer    Tracer
	clock     Clock

	energy      *Attribute
	instability *Attribute
	result      Result
	plugins     map[string]PluginMetadata
}

// NewAssembler builds an assembler and runs an initial reload.
func NewAssembler(opts ...Option) (*Assembler, error) {
	a := &Assembler{
		sizeX:       DefaultGridSize,
		sizeY:       DefaultGridSize,
		maxGrid:     MaxGridSize,
		engine:      NewDefaultRulesEngine(),
		purchaser:   closedShop{},
		logger:      noopLogger{},
		metrics:     noopMetrics{},
		tracer:      noopTracer{},
		clock:       systemClock{},
		energy:      NewAttribute(),
		instability: NewAttribute(),
		plugins:     make(map[string]PluginMetadata),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.kinds == nil {
		a.kinds = NewKindRegistry(DefaultBalance())
	}
	if a.store == nil {
		a.store = NewMemoryCellStore()
	}
	grid, err := newGrid(a.sizeX, a.sizeY, a.maxGrid, a.store, a.kinds)
	if err != nil {
		return nil, err
	}
	a.grid = grid
	a.reload()
	return a, nil
}

// Grid returns the assembler grid.
func (a *Assembler) Grid() *Grid { return a.grid }

// Kinds returns the registry used to resolve cell types.
func (a *Assembler) Kinds() *KindRegistry { return a.kinds }

// Store returns the cell store backing the grid.
func (a *Assembler) Store() CellStore { return a.store }

// Energy returns the global energy generation ledger.
func (a *Assembler) Energy() *Attribute { return a.energy }

// Instability returns the global instability ledger.
func (a *Assembler) Instability() *Attribute { return a.instability }

// Cell returns the cell at (x, y).
func (a *Assembler) Cell(x, y int) (*Cell, error) { return a.grid.GetCell(x, y) }

// IsValid reports whether the last reload found no blocking violation.
func (a *Assembler) IsValid() bool { return !a.result.HasBlocking() }

// Violations returns the violations found by the last reload.
func (a *Assembler) Violations() []Violation {
	out := make([]Violation, len(a.result.Violations))
	copy(out, a.result.Violations)
	return out
}

// CellsOfType returns the cells of type id.
func (a *Assembler) CellsOfType(id CellType) []*Cell { return a.grid.OfType(id) }

// HasCellType reports whether any cell has type id.
func (a *Assembler) HasCellType(id CellType) bool { return a.grid.HasType(id) }

func (a *Assembler) run(ctx context.Context, op string, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := a.tracer.Start(ctx, op)
	start := a.clock.Now()
	err := fn()
	a.metrics.Observe(ctx, op, err == nil, a.clock.Now().Sub(start))
	span.End(err)
	if err != nil {
		a.logger.Warn("assembler operation failed", "operation", op, "error", err)
	}
	return err
}

// Reload recomputes every derived value from the cell records: per-cell
// boosts are cleared, every effect runs in grid order, the rules are
// evaluated and, when no blocking violation exists, each cell's generation
// and instability are aggregated into the global ledgers. An invalid grid
// clears both global ledgers.
func (a *Assembler) Reload(ctx context.Context) Result {
	var res Result
	_ = a.run(ctx, "reload", func() error {
		res = a.reload()
		return nil
	})
	return res
}

func (a *Assembler) reload() Result {
	cells := a.grid.All()
	for _, cell := range cells {
		cell.clearBoosts()
	}
	for _, cell := range cells {
		cell.Effect()
	}

	res := a.engine.Evaluate(a.grid)
	a.result = res
	if res.HasBlocking() {
		a.energy.ClearBoosts()
		a.instability.ClearBoosts()
		a.logger.Debug("grid invalid", "violations", len(res.Violations))
		return res
	}

	a.energy.RemoveBoostsWithPrefix(gridBoostPrefix)
	a.instability.RemoveBoostsWithPrefix(gridBoostPrefix)
	for _, cell := range cells {
		id := fmt.Sprintf("%s%d.%d", gridBoostPrefix, cell.X(), cell.Y())
		a.energy.SetBoost(Boost{ID: id, Order: OrderAggregate, Fn: Add(cell.Generation().Value())})
		a.instability.SetBoost(Boost{ID: id, Order: OrderAggregate, Fn: Add(cell.Instability().Value())})
	}
	a.logger.Debug("grid reloaded",
		"energy", numeric.Format(a.energy.Value()),
		"instability", numeric.Format(a.instability.Value()))
	return res
}

func (a *Assembler) validatePlacement(x, y int, kind CellType, tier decimal.Decimal, dir Direction) (*Cell, Direction, error) {
	cell, err := a.grid.GetCell(x, y)
	if err != nil {
		return nil, "", err
	}
	if !a.kinds.Has(kind) {
		return nil, "", ErrUnknownKind{ID: kind}
	}
	if tier.Sign() < 0 {
		return nil, "", fmt.Errorf("tier %s must not be negative: %w", numeric.Format(tier), ErrInvalidArgument)
	}
	if numeric.Saturated(tier) {
		return nil, "", fmt.Errorf("tier %s exceeds 1e%d: %w", numeric.Format(tier), numeric.MaxExponent, ErrInvalidArgument)
	}
	if dir == "" {
		dir = DirectionUp
	}
	if !dir.Valid() {
		return nil, "", fmt.Errorf("unknown direction %q: %w", string(dir), ErrInvalidArgument)
	}
	return cell, dir, nil
}

// SetCell places a cell of the given type, tier and direction at (x, y) and
// reloads.
func (a *Assembler) SetCell(ctx context.Context, x, y int, kind CellType, tier decimal.Decimal, dir Direction) error {
	return a.run(ctx, "set_cell", func() error {
		cell, dir, err := a.validatePlacement(x, y, kind, tier, dir)
		if err != nil {
			return err
		}
		cell.set(kind, tier, dir)
		a.reload()
		return nil
	})
}

// RotateCell turns the cell at (x, y) and reloads.
func (a *Assembler) RotateCell(ctx context.Context, x, y int, rotation Rotation) error {
	return a.run(ctx, "rotate_cell", func() error {
		cell, err := a.grid.GetCell(x, y)
		if err != nil {
			return err
		}
		dir, err := rotation.Apply(cell.Direction())
		if err != nil {
			return err
		}
		cell.setDirection(dir)
		a.reload()
		return nil
	})
}

// BuyCell asks the purchaser to pay for one cell and places it on success.
// A declined purchase changes nothing and reports false without an error.
func (a *Assembler) BuyCell(ctx context.Context, x, y int, kind CellType, tier decimal.Decimal, dir Direction) (bool, error) {
	var bought bool
	err := a.run(ctx, "buy_cell", func() error {
		cell, dir, err := a.validatePlacement(x, y, kind, tier, dir)
		if err != nil {
			return err
		}
		if !a.purchaser.BuyItem(string(kind), tier, 1) {
			a.logger.Info("purchase declined", "type", string(kind), "tier", numeric.Format(tier), "cell", cell.Coordinate().Key())
			return nil
		}
		cell.set(kind, tier, dir)
		a.reload()
		bought = true
		return nil
	})
	return bought, err
}

// Resize changes the grid dimensions and reloads.
func (a *Assembler) Resize(ctx context.Context, x, y int) error {
	return a.run(ctx, "resize", func() error {
		if err := a.grid.Resize(x, y); err != nil {
			return err
		}
		a.sizeX, a.sizeY = x, y
		a.reload()
		return nil
	})
}

// Restore replaces every cell record and the grid size in one step, then
// reloads. It is used when loading a save.
func (a *Assembler) Restore(ctx context.Context, x, y int, records map[string]CellRecord) error {
	return a.run(ctx, "restore", func() error {
		if err := validateSize(x, y, a.grid.MaxSize()); err != nil {
			return err
		}
		importErr := a.store.Import(records)
		if err := a.grid.Resize(x, y); err != nil {
			return err
		}
		for _, rec := range a.store.Records() {
			if !a.grid.inBounds(rec.X, rec.Y) {
				a.store.Delete(rec.Coordinate())
			}
		}
		a.sizeX, a.sizeY = x, y
		a.reload()
		if importErr != nil {
			a.logger.Warn("cell records partially imported", "error", importErr)
		}
		return nil
	})
}

// InstallPlugin registers a plugin's kinds and rules, then reloads.
func (a *Assembler) InstallPlugin(plugin Plugin) (PluginMetadata, error) {
	if plugin == nil {
		return PluginMetadata{}, fmt.Errorf("plugin cannot be nil")
	}
	if _, ok := a.plugins[plugin.Name()]; ok {
		return PluginMetadata{}, fmt.Errorf("plugin %s already registered", plugin.Name())
	}

	registry := NewPluginRegistry()
	if err := plugin.Register(registry); err != nil {
		return PluginMetadata{}, err
	}
	kinds := registry.Kinds()
	for _, kind := range kinds {
		if a.kinds.Has(kind.ID()) {
			return PluginMetadata{}, fmt.Errorf("plugin %s: kind %s already registered", plugin.Name(), kind.ID())
		}
	}

	meta := PluginMetadata{Name: plugin.Name(), Version: plugin.Version()}
	for _, kind := range kinds {
		if err := a.kinds.Register(kind); err != nil {
			return PluginMetadata{}, err
		}
		meta.Kinds = append(meta.Kinds, kind.ID())
	}
	for _, rule := range registry.Rules() {
		a.engine.Register(rule)
		meta.Rules = append(meta.Rules, rule.Name())
	}
	a.plugins[plugin.Name()] = meta
	a.logger.Info("plugin installed", "plugin", meta.Name, "version", meta.Version, "kinds", len(meta.Kinds), "rules", len(meta.Rules))
	a.reload()
	return meta, nil
}

// RegisteredPlugins returns metadata describing installed plugins sorted by
// name.
func (a *Assembler) RegisteredPlugins() []PluginMetadata {
	out := make([]PluginMetadata, 0, len(a.plugins))
	for _, meta := range a.plugins {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
