package memory

import (
	"context"
	"testing"

	"quantumassembler/pkg/domain"
)

func TestStoreRoundTripIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	if _, ok, err := store.Load(ctx); ok || err != nil {
		t.Fatalf("expected empty store, got %v %v", ok, err)
	}

	state := domain.SaveState{
		Grid:  domain.GridSize{X: 2, Y: 2},
		Cells: map[string]domain.CellRecord{"0,0": {Type: domain.CellCharm}},
	}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	state.Cells["0,0"] = domain.CellRecord{Type: domain.CellTop}

	loaded, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: %v %v", ok, err)
	}
	if loaded.Cells["0,0"].Type != domain.CellCharm {
		t.Fatalf("expected stored copy to be isolated from caller mutation")
	}
	loaded.Cells["0,0"] = domain.CellRecord{Type: domain.CellTop}
	again, _, _ := store.Load(ctx)
	if again.Cells["0,0"].Type != domain.CellCharm {
		t.Fatalf("expected loaded copy to be isolated from the store")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
