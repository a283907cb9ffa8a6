package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestCleanup_Idempotent(t *testing.T) {
	ws, err := New(t.TempDir(), "job")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(ws.Dir()), "job-") {
		t.Fatalf("unexpected dir name: %s", ws.Dir())
	}
	if err := os.WriteFile(ws.Path("a.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ws.Cleanup(); err != nil {
				t.Errorf("cleanup: %v", err)
			}
		}()
	}
	wg.Wait()

	if err := ws.Cleanup(); err != nil {
		t.Fatalf("second cleanup: %v", err)
	}
	if _, err := os.Stat(ws.Dir()); !os.IsNotExist(err) {
		t.Fatalf("workspace still present: %v", err)
	}
}

func TestCleanup_ToleratesExternalRemoval(t *testing.T) {
	ws, err := New(t.TempDir(), "job")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(ws.Dir()); err != nil {
		t.Fatal(err)
	}
	if err := ws.Cleanup(); err != nil {
		t.Fatalf("cleanup after external removal: %v", err)
	}
}

func TestNew_DistinctDirs(t *testing.T) {
	base := t.TempDir()
	a, err := New(base, "job")
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(base, "job")
	if err != nil {
		t.Fatal(err)
	}
	if a.Dir() == b.Dir() {
		t.Fatalf("workspaces must not be shared: %s", a.Dir())
	}
}

func TestPublish(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "final.mp4")
	if err := os.WriteFile(src, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "out", "nested", "story.mp4")
	if err := Publish(src, dst); err != nil {
		t.Fatalf("publish: %v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil || string(b) != "video" {
		t.Fatalf("published content = %q, err=%v", b, err)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	if err := os.WriteFile(src, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "b")
	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if _, err := os.Stat(dst + ".part"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}
