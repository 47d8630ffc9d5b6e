package core

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// bottomKind adds its tier to its own generation.
type bottomKind struct{ kindInfo }

func (k bottomKind) Effect(tier decimal.Decimal, self *Cell) {
	self.Generation().SetBoost(Boost{ID: string(k.id), Order: OrderBase, Fn: Add(tier)})
}

type testPlugin struct {
	name  string
	kinds []Kind
	rules []Rule
	err   error
}

func (p testPlugin) Name() string    { return p.name }
func (p testPlugin) Version() string { return "1.0.0" }

func (p testPlugin) Register(registry *PluginRegistry) error {
	if p.err != nil {
		return p.err
	}
	for _, kind := range p.kinds {
		if err := registry.RegisterKind(kind); err != nil {
			return err
		}
	}
	for _, rule := range p.rules {
		registry.RegisterRule(rule)
	}
	return nil
}

func TestPluginRegistryGuards(t *testing.T) {
	registry := NewPluginRegistry()
	registry.RegisterRule(nil)
	if len(registry.Rules()) != 0 {
		t.Fatalf("expected nil rule to be ignored")
	}
	if err := registry.RegisterKind(nil); err == nil {
		t.Fatalf("expected nil kind to fail")
	}
	if err := registry.RegisterKind(bottomKind{kindInfo{}}); err == nil {
		t.Fatalf("expected empty kind id to fail")
	}
	if err := registry.RegisterKind(bottomKind{kindInfo{id: "bottom"}}); err != nil {
		t.Fatalf("register kind: %v", err)
	}
	if err := registry.RegisterKind(bottomKind{kindInfo{id: "bottom"}}); err == nil {
		t.Fatalf("expected duplicate kind to fail")
	}

	registry.RegisterRule(staticRule{"rule", SeverityLog})
	rules := registry.Rules()
	rules[0] = nil
	if registry.Rules()[0] == nil {
		t.Fatalf("expected registry to return a copy of rules")
	}
}

func TestInstallPlugin(t *testing.T) {
	a := newTestAssembler(t)
	plugin := testPlugin{
		name:  "bottom-quark",
		kinds: []Kind{bottomKind{kindInfo{id: "bottom", glyph: "B", name: "Bottom Quark"}}},
		rules: []Rule{staticRule{"audit", SeverityLog}},
	}
	meta, err := a.InstallPlugin(plugin)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if meta.Name != "bottom-quark" || len(meta.Kinds) != 1 || meta.Kinds[0] != "bottom" || meta.Rules[0] != "audit" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if len(a.Violations()) != 1 || !a.IsValid() {
		t.Fatalf("expected plugin rule to run on reload without blocking")
	}

	if err := a.SetCell(context.Background(), 0, 0, "bottom", decimal.NewFromInt(4), DirectionUp); err != nil {
		t.Fatalf("set plugin kind: %v", err)
	}
	if !a.Energy().Value().Equal(dec("4")) {
		t.Fatalf("expected plugin kind effect, got %s", a.Energy().Value())
	}

	if _, err := a.InstallPlugin(plugin); err == nil {
		t.Fatalf("expected duplicate plugin to fail")
	}
	if _, err := a.InstallPlugin(nil); err == nil {
		t.Fatalf("expected nil plugin to fail")
	}
	clash := testPlugin{name: "clash", kinds: []Kind{bottomKind{kindInfo{id: CellCharm}}}}
	if _, err := a.InstallPlugin(clash); err == nil {
		t.Fatalf("expected built-in kind clash to fail")
	}
	boom := errors.New("boom")
	if _, err := a.InstallPlugin(testPlugin{name: "broken", err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected register error, got %v", err)
	}
	if got := a.RegisteredPlugins(); len(got) != 1 || got[0].Name != "bottom-quark" {
		t.Fatalf("unexpected registered plugins %+v", got)
	}
}
