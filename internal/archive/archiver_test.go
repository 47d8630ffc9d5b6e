package archive

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quantumassembler/pkg/domain"
)

func sampleSave(at time.Time, x int) domain.SaveState {
	return domain.SaveState{
		Version: domain.SaveStateVersion,
		Grid:    domain.GridSize{X: x, Y: 2},
		Cells: map[string]domain.CellRecord{
			"0,0": {Type: domain.CellCharm, Direction: domain.DirectionUp, Tier: domain.DecimalData{Sign: 1, Mag: 3}},
		},
		Currencies: map[string]domain.DecimalData{"energy": {Sign: 1, Mag: 10}},
		SavedAt:    at,
	}
}

func TestArchiverRoundTripAcrossDrivers(t *testing.T) {
	ctx := context.Background()
	fsStore, err := Open(ctx, Config{Driver: "fs", Root: filepath.Join(t.TempDir(), "archive")})
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	stores := map[string]Store{
		"fs":     fsStore,
		"memory": NewMemory(),
		"s3":     NewS3Mock(1),
	}
	base := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			a := NewArchiver(store, "exports")
			if _, _, ok, err := a.Latest(ctx); ok || err != nil {
				t.Fatalf("expected empty archive, got %v %v", ok, err)
			}
			first, err := a.Put(ctx, sampleSave(base, 2))
			if err != nil {
				t.Fatalf("put first: %v", err)
			}
			if first.Key != "exports/20260304T050607.000000000Z.json" {
				t.Fatalf("unexpected key %s", first.Key)
			}
			if _, err := a.Put(ctx, sampleSave(base.Add(time.Second), 3)); err != nil {
				t.Fatalf("put second: %v", err)
			}
			if _, err := a.Put(ctx, sampleSave(base, 2)); !errors.Is(err, ErrExists) {
				t.Fatalf("expected ErrExists for same timestamp, got %v", err)
			}

			infos, err := a.List(ctx)
			if err != nil || len(infos) != 2 {
				t.Fatalf("list: %+v %v", infos, err)
			}
			latest, info, ok, err := a.Latest(ctx)
			if err != nil || !ok {
				t.Fatalf("latest: %v %v", ok, err)
			}
			if latest.Grid.X != 3 || info.Key != infos[1].Key {
				t.Fatalf("expected newest save, got %+v (%s)", latest.Grid, info.Key)
			}
			if latest.Cells["0,0"].Type != domain.CellCharm || latest.Currencies["energy"].Mag != 10 {
				t.Fatalf("unexpected contents %+v", latest)
			}
			if a.Store().Driver() != Driver(name) {
				t.Fatalf("unexpected driver %s", a.Store().Driver())
			}
		})
	}
}

func TestArchiverRejectsUntimedSave(t *testing.T) {
	a := NewArchiver(NewMemory(), "")
	if _, err := a.Put(context.Background(), domain.SaveState{}); err == nil {
		t.Fatalf("expected timestamp error")
	}
	if !strings.HasPrefix(a.Key(time.Unix(0, 0)), "saves/19700101T000000") {
		t.Fatalf("unexpected default key %s", a.Key(time.Unix(0, 0)))
	}
}

func TestArchiverFetchErrors(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	a := NewArchiver(store, "saves/")
	if _, err := a.Fetch(ctx, "saves/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Put(ctx, "saves/bad.json", strings.NewReader("{"), PutOptions{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := a.Fetch(ctx, "saves/bad.json"); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	if s, err := Open(ctx, Config{Driver: "memory"}); err != nil || s.Driver() != DriverMemory {
		t.Fatalf("memory: %v", err)
	}
	if _, err := Open(ctx, Config{Driver: "s3"}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	if s, err := Open(ctx, Config{Driver: "S3", S3Bucket: "b", S3Endpoint: "http://localhost:9000", S3PathStyle: true}); err != nil || s.Driver() != DriverS3 {
		t.Fatalf("s3: %v", err)
	}
	if _, err := Open(ctx, Config{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	t.Chdir(t.TempDir())
	if s, err := Open(ctx, Config{}); err != nil || s.Driver() != DriverFilesystem {
		t.Fatalf("default fs: %v", err)
	}
}
