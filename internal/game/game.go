// Package game is the application context: it owns the assembler, the
// wallet and the save backends, and serialises every access to them.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quantumassembler/internal/archive"
	"quantumassembler/internal/core"
	"quantumassembler/internal/economy"
	"quantumassembler/internal/logs"
	"quantumassembler/pkg/domain"
)

const (
	defaultTick     = time.Second
	defaultAutosave = 30 * time.Second
)

// ErrNoArchive is returned by archive operations when no archive is set.
var ErrNoArchive = errors.New("save archive not configured")

// Option configures a Game.
type Option func(*Game)

// WithArchive enables ExportSave and ImportSave.
func WithArchive(a *archive.Archiver) Option {
	return func(g *Game) { g.archive = a }
}

// WithLogger sets the logger; the assembler logs through the same logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.log = l
		}
	}
}

// WithBalance tunes the built-in kinds.
func WithBalance(b core.Balance) Option {
	return func(g *Game) { g.balance = b }
}

// WithGridSize sets the grid used when no save exists.
func WithGridSize(x, y int) Option {
	return func(g *Game) { g.gridX, g.gridY = x, y }
}

// WithMaxGridSize bounds both grid dimensions for resizes and loaded saves.
func WithMaxGridSize(n int) Option {
	return func(g *Game) {
		if n > 0 {
			g.maxGrid = n
		}
	}
}

// WithTick sets the resource tick interval.
func WithTick(d time.Duration) Option {
	return func(g *Game) {
		if d > 0 {
			g.tick = d
		}
	}
}

// WithAutosave sets the autosave interval. Zero disables autosave.
func WithAutosave(d time.Duration) Option {
	return func(g *Game) {
		if d >= 0 {
			g.autosave = d
		}
	}
}

// WithClock overrides the time source used for save timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		if now != nil {
			g.now = now
		}
	}
}

// WithMetricsRecorder forwards assembler operation metrics.
func WithMetricsRecorder(m core.MetricsRecorder) Option {
	return func(g *Game) { g.metrics = m }
}

// WithTracer forwards assembler spans.
func WithTracer(t core.Tracer) Option {
	return func(g *Game) { g.tracer = t }
}

// Game is safe for concurrent use.
type Game struct {
	mu sync.Mutex

	store   domain.SaveStore
	archive *archive.Archiver
	log     *zap.Logger
	now     func() time.Time
	metrics core.MetricsRecorder
	tracer  core.Tracer

	balance      core.Balance
	gridX, gridY int
	maxGrid      int
	tick         time.Duration
	autosave     time.Duration

	kinds     *core.KindRegistry
	wallet    *economy.Wallet
	assembler *core.Assembler
}

// New builds a game on store with a fresh default grid. Call Load to restore
// the stored save.
func New(store domain.SaveStore, opts ...Option) (*Game, error) {
	if store == nil {
		return nil, errors.New("save store is required")
	}
	g := &Game{
		store:    store,
		log:      zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
		balance:  core.DefaultBalance(),
		gridX:    core.DefaultGridSize,
		gridY:    core.DefaultGridSize,
		maxGrid:  core.MaxGridSize,
		tick:     defaultTick,
		autosave: defaultAutosave,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.kinds = core.NewKindRegistry(g.balance)
	g.wallet = economy.NewWallet(g.kinds)
	assemblerOpts := []core.Option{
		core.WithKinds(g.kinds),
		core.WithPurchaser(g.wallet),
		core.WithGridSize(g.gridX, g.gridY),
		core.WithMaxGridSize(g.maxGrid),
		core.WithLogger(logs.NewCoreLogger(g.log.Named("assembler"))),
		core.WithClock(core.ClockFunc(g.now)),
	}
	if g.metrics != nil {
		assemblerOpts = append(assemblerOpts, core.WithMetricsRecorder(g.metrics))
	}
	if g.tracer != nil {
		assemblerOpts = append(assemblerOpts, core.WithTracer(g.tracer))
	}
	a, err := core.NewAssembler(assemblerOpts...)
	if err != nil {
		return nil, fmt.Errorf("build assembler: %w", err)
	}
	g.assembler = a
	return g, nil
}

// Load restores the stored save. It reports false, leaving the default grid
// in place, when nothing has been saved yet.
func (g *Game) Load(ctx context.Context) (bool, error) {
	state, ok, err := g.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load save: %w", err)
	}
	if !ok {
		g.log.Info("no save found, starting fresh", zap.Int("x", g.gridX), zap.Int("y", g.gridY))
		return false, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.apply(ctx, state); err != nil {
		return false, err
	}
	g.log.Info("save loaded", zap.Int("x", state.Grid.X), zap.Int("y", state.Grid.Y), zap.Int("cells", len(state.Cells)))
	return true, nil
}

func (g *Game) apply(ctx context.Context, state domain.SaveState) error {
	if state.Version > domain.SaveStateVersion {
		g.log.Warn("save written by a newer version", zap.Int("version", state.Version))
	}
	x, y := state.Grid.X, state.Grid.Y
	if x <= 0 || y <= 0 {
		x, y = g.gridX, g.gridY
	}
	if limit := g.assembler.Grid().MaxSize(); x > limit || y > limit {
		g.log.Warn("save grid exceeds the size limit, clamping",
			zap.Int("x", x), zap.Int("y", y), zap.Int("limit", limit))
		x, y = min(x, limit), min(y, limit)
	}
	if err := g.assembler.Restore(ctx, x, y, state.Cells); err != nil {
		return fmt.Errorf("restore grid: %w", err)
	}
	g.wallet.Import(state.Currencies)
	return nil
}

func (g *Game) snapshot() domain.SaveState {
	x, y := g.assembler.Grid().Size()
	return domain.SaveState{
		Version:    domain.SaveStateVersion,
		Grid:       domain.GridSize{X: x, Y: y},
		Cells:      g.assembler.Store().Export(),
		Currencies: g.wallet.Export(),
		SavedAt:    g.now(),
	}
}

// Snapshot returns the current save state without persisting it.
func (g *Game) Snapshot() domain.SaveState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

// Save writes the current state to the save store.
func (g *Game) Save(ctx context.Context) error {
	state := g.Snapshot()
	if err := g.store.Save(ctx, state); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	g.log.Debug("saved", zap.Time("saved_at", state.SavedAt))
	return nil
}

// ExportSave writes the current state to the archive.
func (g *Game) ExportSave(ctx context.Context) (archive.Info, error) {
	if g.archive == nil {
		return archive.Info{}, ErrNoArchive
	}
	info, err := g.archive.Put(ctx, g.Snapshot())
	if err != nil {
		return archive.Info{}, fmt.Errorf("export save: %w", err)
	}
	g.log.Info("save exported", zap.String("key", info.Key), zap.Int64("bytes", info.Size))
	return info, nil
}

// ImportSave restores the archived save at key, or the newest one when key
// is empty.
func (g *Game) ImportSave(ctx context.Context, key string) error {
	if g.archive == nil {
		return ErrNoArchive
	}
	var state domain.SaveState
	if key == "" {
		latest, info, ok, err := g.archive.Latest(ctx)
		if err != nil {
			return fmt.Errorf("import save: %w", err)
		}
		if !ok {
			return fmt.Errorf("import save: %w", archive.ErrNotFound)
		}
		state, key = latest, info.Key
	} else {
		fetched, err := g.archive.Fetch(ctx, key)
		if err != nil {
			return fmt.Errorf("import save: %w", err)
		}
		state = fetched
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.apply(ctx, state); err != nil {
		return err
	}
	g.log.Info("save imported", zap.String("key", key))
	return nil
}

// Tick credits the wallet with dt worth of the current energy and
// instability rates.
func (g *Game) Tick(dt time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.wallet.Gain(g.assembler.Energy().Value(), g.assembler.Instability().Value(), dt)
}

// Run ticks and autosaves until ctx is cancelled, then saves once more.
func (g *Game) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.tick)
	defer ticker.Stop()
	var autosave <-chan time.Time
	if g.autosave > 0 {
		t := time.NewTicker(g.autosave)
		defer t.Stop()
		autosave = t.C
	}
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := g.Save(shutdownCtx); err != nil {
				g.log.Error("final save failed", zap.Error(err))
				return err
			}
			g.log.Info("game stopped")
			return nil
		case now := <-ticker.C:
			g.Tick(now.Sub(last))
			last = now
		case <-autosave:
			if err := g.Save(ctx); err != nil {
				g.log.Warn("autosave failed", zap.Error(err))
			}
		}
	}
}

// SetCell places a cell without charging for it.
func (g *Game) SetCell(ctx context.Context, x, y int, kind core.CellType, tier decimal.Decimal, dir core.Direction) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.assembler.SetCell(ctx, x, y, kind, tier, dir)
}

// BuyCell places a cell if the wallet can pay for it.
func (g *Game) BuyCell(ctx context.Context, x, y int, kind core.CellType, tier decimal.Decimal, dir core.Direction) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.assembler.BuyCell(ctx, x, y, kind, tier, dir)
}

// RotateCell turns the cell at (x, y).
func (g *Game) RotateCell(ctx context.Context, x, y int, rotation core.Rotation) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.assembler.RotateCell(ctx, x, y, rotation)
}

// Resize changes the grid size.
func (g *Game) Resize(ctx context.Context, x, y int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.assembler.Resize(ctx, x, y)
}

// SetBalance overrides a currency balance.
func (g *Game) SetBalance(name string, amount decimal.Decimal) error {
	return g.wallet.SetBalance(name, amount)
}

// Rates returns the current energy and instability rates as floats, for
// gauges.
func (g *Game) Rates() (energy, instability float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.assembler.Energy().Value().InexactFloat64(), g.assembler.Instability().Value().InexactFloat64()
}
