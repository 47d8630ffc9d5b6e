package domain

import "context"

// SaveStore is a minimal abstraction over durable save backends. Backends
// persist a whole SaveState snapshot; the assembler keeps the working copy
// in memory and hands snapshots over on save.
type SaveStore interface {
	// Load returns the stored snapshot. The boolean is false when nothing
	// has been saved yet.
	Load(ctx context.Context) (SaveState, bool, error)
	// Save replaces the stored snapshot.
	Save(ctx context.Context, state SaveState) error
	// Close releases backend resources.
	Close() error
}
