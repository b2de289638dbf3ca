package index_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.trai.ch/twine/internal/adapters/index"
	"go.trai.ch/twine/internal/core/domain"
)

func TestStore_PutAndGet(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "index.json")

	store, err := index.NewStore(storePath)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	record := domain.RenderRecord{
		Name:      "index.html",
		CacheKey:  "abc",
		Timestamp: time.Now(),
	}
	if err := store.Put(record); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get("index.html")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if got.CacheKey != record.CacheKey {
		t.Errorf("expected CacheKey %q, got %q", record.CacheKey, got.CacheKey)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store, err := index.NewStore(filepath.Join(t.TempDir(), "index.json"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	got, err := store.Get("missing.html")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil record, got %+v", got)
	}
}

func TestStore_Persistence(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "nested", "index.json")
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	store1, err := index.NewStore(storePath)
	if err != nil {
		t.Fatalf("NewStore 1 failed: %v", err)
	}
	if err := store1.Put(domain.RenderRecord{Name: "a.html", CacheKey: "k1", Timestamp: ts}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	store2, err := index.NewStore(storePath)
	if err != nil {
		t.Fatalf("NewStore 2 failed: %v", err)
	}
	got, err := store2.Get("a.html")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if got.CacheKey != "k1" || !got.Timestamp.Equal(ts) {
		t.Errorf("unexpected record after reload: %+v", got)
	}

	if _, err := os.Stat(storePath + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("expected temporary file to be gone, stat err: %v", err)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "index.json")
	if err := os.WriteFile(storePath, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := index.NewStore(storePath); err == nil {
		t.Fatal("expected error for corrupt index, got nil")
	}
}

func TestStore_EmptyFile(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "index.json")
	if err := os.WriteFile(storePath, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := index.NewStore(storePath); err != nil {
		t.Fatalf("expected empty index to load, got: %v", err)
	}
}

func TestStore_PutFailureKeepsPreviousRecord(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "index.json")
	store, err := index.NewStore(storePath)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if err := store.Put(domain.RenderRecord{Name: "a.html", CacheKey: "v1"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// A directory in place of the temp file makes every later save fail.
	if err := os.Mkdir(storePath+".tmp", 0o750); err != nil {
		t.Fatal(err)
	}

	if err := store.Put(domain.RenderRecord{Name: "a.html", CacheKey: "v2"}); err == nil {
		t.Fatal("expected Put to fail")
	}
	if err := store.Put(domain.RenderRecord{Name: "b.html", CacheKey: "v1"}); err == nil {
		t.Fatal("expected Put to fail")
	}

	got, err := store.Get("a.html")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.CacheKey != "v1" {
		t.Errorf("expected the saved record to survive, got %+v", got)
	}

	got, err = store.Get("b.html")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected no record for b.html, got %+v", got)
	}
}

func TestStore_Anchor(t *testing.T) {
	store, err := index.NewStore(filepath.Join(t.TempDir(), "index.json"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.Put(domain.RenderRecord{Name: "old.html", CacheKey: "x"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	root := t.TempDir()
	seed, err := index.NewStore(filepath.Join(root, index.DefaultPath))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := seed.Put(domain.RenderRecord{Name: "kept.html", CacheKey: "k"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := store.Anchor(root); err != nil {
		t.Fatalf("Anchor failed: %v", err)
	}

	if got, _ := store.Get("old.html"); got != nil {
		t.Errorf("records from the previous location must be dropped, got %+v", got)
	}
	got, _ := store.Get("kept.html")
	if got == nil || got.CacheKey != "k" {
		t.Errorf("expected record loaded from the root, got %+v", got)
	}

	if err := store.Put(domain.RenderRecord{Name: "new.html", CacheKey: "n"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, index.DefaultPath)); err != nil {
		t.Errorf("expected index below root: %v", err)
	}
}
