package core

import (
	"fmt"
	"sort"
)

// Plugin contributes additional cell kinds and validation rules.
type Plugin interface {
	Name() string
	Version() string
	Register(registry *PluginRegistry) error
}

// PluginRegistry accumulates plugin contributions during registration.
type PluginRegistry struct {
	rules []Rule
	kinds map[CellType]Kind
}

// NewPluginRegistry constructs a plugin registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{kinds: make(map[CellType]Kind)}
}

// RegisterRule adds a validation rule contributed by the plugin.
func (r *PluginRegistry) RegisterRule(rule Rule) {
	if rule == nil {
		return
	}
	r.rules = append(r.rules, rule)
}

// RegisterKind stores a cell kind contributed by the plugin.
func (r *PluginRegistry) RegisterKind(kind Kind) error {
	if kind == nil {
		return fmt.Errorf("kind cannot be nil")
	}
	if kind.ID() == "" {
		return fmt.Errorf("kind id cannot be empty")
	}
	if _, exists := r.kinds[kind.ID()]; exists {
		return fmt.Errorf("kind %s already registered", kind.ID())
	}
	r.kinds[kind.ID()] = kind
	return nil
}

// Rules returns a copy of registered rules.
func (r *PluginRegistry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Kinds returns registered kinds sorted by id.
func (r *PluginRegistry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.kinds))
	for _, kind := range r.kinds {
		out = append(out, kind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// PluginMetadata stores metadata describing an installed plugin.
type PluginMetadata struct {
	Name    string
	Version string
	Kinds   []CellType
	Rules   []string
}
