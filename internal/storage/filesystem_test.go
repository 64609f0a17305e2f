package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wrapstudio/internal/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	ctx := context.Background()

	key, err := store.Write(ctx, "/studios/abc/../abc/logo.png", []byte("logo"))
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if key != "studios/abc/logo.png" {
		t.Fatalf("unexpected key %q", key)
	}
	data, err := store.Read(ctx, key)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(data) != "logo" {
		t.Fatalf("unexpected data %q", data)
	}

	if err := store.Delete(ctx, key, "studios/abc/missing.png"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.BasePath(), "studios", "abc", "logo.png")); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}
	if _, err := store.Read(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSanitizeKeyRejectsTraversal(t *testing.T) {
	for _, key := range []string{"", "  ", ".", "..", "../etc/passwd", "a/../../b"} {
		if _, err := sanitizeKey(key); err == nil {
			t.Fatalf("sanitizeKey(%q) expected error", key)
		}
	}
}
