package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/adlinkton/internal/favicon"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
)

type staticRefs struct {
	paths []string
	err   error
}

func (r staticRefs) FaviconPaths(context.Context) ([]string, error) {
	return r.paths, r.err
}

func writeFile(t *testing.T, dir, name string, mtime time.Time) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := os.Chtimes(p, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
}

func exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

func TestGarbageCollector_Collect(t *testing.T) {
	log := logger.New("error", false)
	dir := t.TempDir()
	store := favicon.NewStore(dir, "/favicons")

	now := time.Now()
	old := now.Add(-35 * 24 * time.Hour)

	writeFile(t, dir, "referenced.png", old)
	writeFile(t, dir, "orphan-old.ico", old)
	writeFile(t, dir, "orphan-recent.svg", now.Add(-10*24*time.Hour))
	writeFile(t, dir, ".pending.tmp", old)

	gc := NewGarbageCollector(
		staticRefs{paths: []string{"/favicons/referenced.png", "/elsewhere/orphan-old.ico"}},
		store,
		log,
		24*time.Hour,
		30*24*time.Hour,
	)

	deleted, err := gc.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 favicon deleted, got %d", deleted)
	}

	if !exists(dir, "referenced.png") {
		t.Error("Referenced favicon was incorrectly removed")
	}
	if !exists(dir, "orphan-recent.svg") {
		t.Error("Recent orphan was incorrectly removed")
	}
	if exists(dir, "orphan-old.ico") {
		t.Error("Old orphan was not removed")
	}
	if !exists(dir, ".pending.tmp") {
		t.Error("Temporary file must be left alone")
	}
}

func TestGarbageCollector_MissingDirectory(t *testing.T) {
	store := favicon.NewStore(filepath.Join(t.TempDir(), "absent"), "/favicons")
	gc := NewGarbageCollector(staticRefs{}, store, logger.New("error", false), time.Hour, 0)

	deleted, err := gc.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected nothing deleted, got %d", deleted)
	}
}

func TestGarbageCollector_ReferenceError(t *testing.T) {
	store := favicon.NewStore(t.TempDir(), "/favicons")
	gc := NewGarbageCollector(staticRefs{err: errors.New("db down")}, store, logger.New("error", false), time.Hour, 0)

	if _, err := gc.Collect(context.Background()); err == nil {
		t.Fatal("Expected an error when references cannot be listed")
	}
}
