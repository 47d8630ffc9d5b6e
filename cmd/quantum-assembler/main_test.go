package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qa.yml")
	body := "log:\n  level: error\nstorage:\n  driver: sqlite\n  sqlite_path: " + filepath.Join(dir, "qa.db") +
		"\narchive:\n  driver: memory\ngame:\n  tick: 10ms\n  autosave: 0s\nhttp:\n  enabled: false\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := run(ctx, []string{"-config", path}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "qa.db")); err != nil {
		t.Fatalf("expected save database: %v", err)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"-nope"}, &stderr); err == nil {
		t.Fatalf("expected flag error")
	}
	if !strings.Contains(stderr.String(), "flag provided but not defined") {
		t.Fatalf("expected usage output, got %q", stderr.String())
	}
	missing := filepath.Join(t.TempDir(), "missing.yml")
	if err := run(context.Background(), []string{"-config", missing}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected missing config error")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "qa.yml")
	_ = os.WriteFile(path, []byte("storage:\n  driver: cassandra\n"), 0o644)
	if err := run(context.Background(), []string{"-config", path}, &bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "unknown save driver") {
		t.Fatalf("expected driver error, got %v", err)
	}
}
