package store_test

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/playsift/levelscope/internal/store"
)

func TestLocalRoundTrip(t *testing.T) {
	l, err := store.NewLocal(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if err := l.Upload("levels.csv", []byte("Level,Score\n1,90\n")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	b, err := l.Download("levels.csv")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(b) != "Level,Score\n1,90\n" {
		t.Fatalf("blob = %q", b)
	}

	names, err := l.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "levels.csv" {
		t.Fatalf("names = %v", names)
	}
}

func TestLocalMissingBlob(t *testing.T) {
	l, err := store.NewLocal(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if _, err := l.Download("nope.csv"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestLocalRejectsNestedNames(t *testing.T) {
	l, err := store.NewLocal(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	for _, name := range []string{"", "../escape.csv", "a/b.csv", `a\b.csv`} {
		if err := l.Upload(name, []byte("x")); err == nil {
			t.Fatalf("Upload(%q) should fail", name)
		}
	}
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()
	m, err := store.LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}

	e1 := m.Add("levels.csv", "levels", 120)
	if e1.ID == "" || e1.FetchedAt.IsZero() {
		t.Fatalf("entry not populated: %+v", e1)
	}
	m.Add("regions.csv", "regions", 40)
	// re-adding the same blob replaces the old entry
	m.Add("levels.csv", "levels-v2", 130)
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m2, err := store.LoadManifest(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(m2.Exports) != 2 {
		t.Fatalf("exports = %d, want 2", len(m2.Exports))
	}
	e, ok := m2.ByName("levels.csv")
	if !ok || e.ViewID != "levels-v2" || e.Rows != 130 {
		t.Fatalf("ByName = %+v, %v", e, ok)
	}
	if _, ok := m2.ByName("ghost.csv"); ok {
		t.Fatal("ByName should miss unknown blobs")
	}
	sorted := m2.Sorted()
	if len(sorted) != 2 {
		t.Fatalf("sorted = %d entries", len(sorted))
	}
	if sorted[0].FetchedAt.Before(sorted[1].FetchedAt) {
		t.Fatal("Sorted must be newest-first")
	}
}

func TestMemoryStore(t *testing.T) {
	m := store.NewMemory()
	if err := m.Upload("a.csv", []byte("x")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	b, err := m.Download("a.csv")
	if err != nil || string(b) != "x" {
		t.Fatalf("Download = %q, %v", b, err)
	}
	// the returned slice is a copy
	b[0] = 'y'
	b2, _ := m.Download("a.csv")
	if string(b2) != "x" {
		t.Fatalf("stored blob mutated: %q", b2)
	}
	if _, err := m.Download("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
