package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"plantcore/internal/blob/core"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()
	info, err := s.Put(ctx, "changes/CHG-1/sop.pdf", strings.NewReader("payload"), core.PutOptions{ContentType: "application/pdf", Metadata: map[string]string{"uploader": "jsmith"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len("payload")) || info.ContentType != "application/pdf" {
		t.Fatalf("unexpected info %+v", info)
	}
	got, rc, err := s.Get(ctx, "changes/CHG-1/sop.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected data %q", data)
	}
	if got.Metadata["uploader"] != "jsmith" {
		t.Fatalf("metadata not preserved: %+v", got.Metadata)
	}
}

func TestPutRejectsDuplicateKey(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Put(ctx, "k", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := s.Put(ctx, "k", strings.NewReader("b"), core.PutOptions{}); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestDeleteReportsExistence(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Put(ctx, "k", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ok, err := s.Delete(ctx, "k"); err != nil || !ok {
		t.Fatalf("delete existing: ok=%v err=%v", ok, err)
	}
	if ok, err := s.Delete(ctx, "k"); err != nil || ok {
		t.Fatalf("delete missing: ok=%v err=%v", ok, err)
	}
}

func TestListFiltersByPrefix(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, key := range []string{"changes/CHG-1/a", "changes/CHG-2/b", "exports/snapshot.json"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := s.List(ctx, "changes/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 blobs, got %d", len(infos))
	}
	if infos[0].Key != "changes/CHG-1/a" || infos[1].Key != "changes/CHG-2/b" {
		t.Fatalf("unexpected order %+v", infos)
	}
}

func TestPresignUnsupported(t *testing.T) {
	s := New()
	if _, err := s.PresignURL(context.Background(), "k", core.SignedURLOptions{}); err != core.ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
