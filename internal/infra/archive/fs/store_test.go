package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quantumassembler/internal/archive/core"
)

func TestStorePutGetList(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "nested", "archive")
	s, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Driver() != core.DriverFilesystem || s.Root() != root {
		t.Fatalf("unexpected driver/root %s %s", s.Driver(), s.Root())
	}

	info, err := s.Put(ctx, "saves/one.json", strings.NewReader(`{"version":1}`), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"grid": "2x2"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 13 || len(info.ETag) != 64 || info.Metadata["grid"] != "2x2" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "saves/one.json", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	got, rc, err := s.Get(ctx, "saves/one.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"version":1}` || got.ContentType != "application/json" || got.ETag != info.ETag {
		t.Fatalf("unexpected get %+v %q", got, body)
	}
	head, err := s.Head(ctx, "saves/one.json")
	if err != nil || head.Size != info.Size {
		t.Fatalf("head: %+v %v", head, err)
	}

	if _, err := s.Put(ctx, "saves/two.json", strings.NewReader("{}"), core.PutOptions{}); err != nil {
		t.Fatalf("put two: %v", err)
	}
	if _, err := s.Put(ctx, "exports/x.json", strings.NewReader("{}"), core.PutOptions{}); err != nil {
		t.Fatalf("put export: %v", err)
	}
	list, err := s.List(ctx, "saves/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "saves/one.json" || list[1].Key != "saves/two.json" {
		t.Fatalf("unexpected list %+v", list)
	}
	all, _ := s.List(ctx, "")
	if len(all) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(all))
	}
}

func TestStoreMissingAndInvalidKeys(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, key := range []string{"", "../escape", "/abs", "x.meta"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
	if _, _, err := s.Get(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Head(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected head ErrNotFound, got %v", err)
	}
	if ok, err := s.Delete(ctx, "nope"); ok || err != nil {
		t.Fatalf("expected missing delete, got %v %v", ok, err)
	}

	if _, err := s.Put(ctx, "a", strings.NewReader("1"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ok, err := s.Delete(ctx, "a"); !ok || err != nil {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "a.meta")); !os.IsNotExist(err) {
		t.Fatalf("expected sidecar removed, got %v", err)
	}
}

func TestStoreCorruptSidecar(t *testing.T) {
	ctx := context.Background()
	s, _ := New(t.TempDir())
	if _, err := s.Put(ctx, "bad", strings.NewReader("1"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Root(), "bad.meta"), []byte("{"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, err := s.Head(ctx, "bad"); err == nil || errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if _, err := s.List(ctx, ""); err == nil {
		t.Fatalf("expected list to surface decode error")
	}
}
