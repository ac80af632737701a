package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/zeroshare/zeroshare/internal/common"
)

func TestFSStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := []byte("ciphertext bytes")
	if err := store.Put(ctx, "objects-a", bytes.NewReader(payload), int64(len(payload))); err != nil {
		t.Fatalf("put: %v", err)
	}

	rc, size, err := store.Get(ctx, "objects-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	if size != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), size)
	}
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("payload mismatch")
	}

	if err := store.Delete(ctx, "objects-a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := store.Get(ctx, "objects-a"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}

func TestFSStore_GetMissing(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := store.Get(context.Background(), "nope"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFSStore_DeleteMissingIsNoOp(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(context.Background(), "nope"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestFSStore_RejectsTraversalKeys(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{"../escape", "a/../../b", "/etc/passwd", "."} {
		if err := store.Put(context.Background(), key, strings.NewReader("x"), 1); !errors.Is(err, common.ErrStorage) {
			t.Fatalf("key %q: want ErrStorage, got %v", key, err)
		}
	}
}

func TestFSStore_ShortSourceFailsPut(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = store.Put(context.Background(), "short", strings.NewReader("abc"), 10)
	if !errors.Is(err, common.ErrStorage) {
		t.Fatalf("want ErrStorage for short source, got %v", err)
	}
	// no partial blob left behind
	if _, _, err := store.Get(context.Background(), "short"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	payload := []byte("blob")
	if err := store.Put(ctx, "k", bytes.NewReader(payload), int64(len(payload))); err != nil {
		t.Fatalf("put: %v", err)
	}

	rc, size, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if size != int64(len(payload)) || !bytes.Equal(got, payload) {
		t.Fatal("payload mismatch")
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, _, err := store.Get(ctx, "k"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
