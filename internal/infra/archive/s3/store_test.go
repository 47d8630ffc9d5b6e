package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"quantumassembler/internal/archive/core"
)

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
	s, err := New(context.Background(), Config{Bucket: "saves", Endpoint: "http://localhost:9000", PathStyle: true, AccessKeyID: "id", SecretAccessKey: "secret"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Bucket() != "saves" || s.Driver() != core.DriverS3 {
		t.Fatalf("unexpected store %+v", s)
	}
}

func TestMockStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests(1)

	info, err := s.Put(ctx, "saves/a.json", strings.NewReader(`{"v":1}`), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"grid": "2x2"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 7 || info.ContentType != "application/json" || info.Metadata["grid"] != "2x2" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "saves/a.json", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	_, rc, err := s.Get(ctx, "saves/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"v":1}` {
		t.Fatalf("unexpected body %q", body)
	}
	if _, _, err := s.Get(ctx, "saves/missing.json"); err == nil {
		t.Fatalf("expected missing get error")
	}

	for _, key := range []string{"saves/b.json", "saves/c.json", "other/d.json"} {
		if _, err := s.Put(ctx, key, strings.NewReader("{}"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := s.List(ctx, "saves/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Key != "saves/a.json" || list[2].Key != "saves/c.json" {
		t.Fatalf("unexpected paged list %+v", list)
	}

	if ok, err := s.Delete(ctx, "saves/a.json"); !ok || err != nil {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, _ := s.Delete(ctx, "saves/a.json"); ok {
		t.Fatalf("expected missing delete to report false")
	}
	if _, err := s.Head(ctx, "saves/a.json"); err == nil {
		t.Fatalf("expected head error after delete")
	}
}
