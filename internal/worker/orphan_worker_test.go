package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeKeyLister struct {
	keys map[string]struct{}
}

func (f *fakeKeyLister) ListFileKeys(ctx context.Context) (map[string]struct{}, error) {
	return f.keys, nil
}

func writeAged(t *testing.T, dir, key string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return path
}

func TestSweepRemovesOnlyAgedOrphans(t *testing.T) {
	dir := t.TempDir()
	referenced := writeAged(t, dir, "submissions/1/keep.py", time.Hour)
	orphanOld := writeAged(t, dir, "submissions/1/orphan.py", time.Hour)
	orphanYoung := writeAged(t, dir, "submissions/2/fresh.py", time.Minute)

	lister := &fakeKeyLister{keys: map[string]struct{}{"submissions/1/keep.py": {}}}
	w := NewOrphanWorker(lister, dir, time.Minute, zerolog.Nop())

	if err := w.sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if _, err := os.Stat(referenced); err != nil {
		t.Error("referenced file was removed")
	}
	if _, err := os.Stat(orphanOld); !os.IsNotExist(err) {
		t.Error("aged orphan survived the sweep")
	}
	if _, err := os.Stat(orphanYoung); err != nil {
		t.Error("file inside the grace period was removed")
	}
}

func TestSweepMissingUploadDir(t *testing.T) {
	lister := &fakeKeyLister{keys: map[string]struct{}{}}
	w := NewOrphanWorker(lister, filepath.Join(t.TempDir(), "never-created"), time.Minute, zerolog.Nop())

	if err := w.sweep(context.Background()); err != nil {
		t.Errorf("sweep over missing dir: %v", err)
	}
}
