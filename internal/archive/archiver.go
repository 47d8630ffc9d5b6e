package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"quantumassembler/pkg/domain"
)

const (
	defaultPrefix = "saves/"
	contentType   = "application/json"
	keyLayout     = "20060102T150405.000000000Z"
)

// Archiver writes whole saves as JSON objects named by their save time, so
// key order is chronological.
type Archiver struct {
	store  Store
	prefix string
}

// NewArchiver wraps store. An empty prefix defaults to "saves/".
func NewArchiver(store Store, prefix string) *Archiver {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Archiver{store: store, prefix: prefix}
}

// Store returns the underlying object store.
func (a *Archiver) Store() Store { return a.store }

// Key returns the object key used for a save taken at t.
func (a *Archiver) Key(t time.Time) string {
	return a.prefix + t.UTC().Format(keyLayout) + ".json"
}

// Put archives state under the key derived from state.SavedAt.
func (a *Archiver) Put(ctx context.Context, state domain.SaveState) (Info, error) {
	if state.SavedAt.IsZero() {
		return Info{}, errors.New("save has no timestamp")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return Info{}, fmt.Errorf("encode save: %w", err)
	}
	return a.store.Put(ctx, a.Key(state.SavedAt), bytes.NewReader(raw), PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"version": strconv.Itoa(state.Version),
			"grid":    fmt.Sprintf("%dx%d", state.Grid.X, state.Grid.Y),
		},
	})
}

// Fetch reads and decodes the save stored at key.
func (a *Archiver) Fetch(ctx context.Context, key string) (domain.SaveState, error) {
	_, rc, err := a.store.Get(ctx, key)
	if err != nil {
		return domain.SaveState{}, err
	}
	defer func() { _ = rc.Close() }()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return domain.SaveState{}, fmt.Errorf("read %s: %w", key, err)
	}
	var state domain.SaveState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.SaveState{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return state, nil
}

// List returns the archived saves, oldest first.
func (a *Archiver) List(ctx context.Context) ([]Info, error) {
	return a.store.List(ctx, a.prefix)
}

// Latest fetches the newest archived save. It reports false when the archive
// is empty.
func (a *Archiver) Latest(ctx context.Context) (domain.SaveState, Info, bool, error) {
	infos, err := a.List(ctx)
	if err != nil {
		return domain.SaveState{}, Info{}, false, err
	}
	if len(infos) == 0 {
		return domain.SaveState{}, Info{}, false, nil
	}
	last := infos[len(infos)-1]
	state, err := a.Fetch(ctx, last.Key)
	if err != nil {
		return domain.SaveState{}, Info{}, false, err
	}
	return state, last, true, nil
}
