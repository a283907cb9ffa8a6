package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Workspace is a job-private scratch directory. Cleanup may be called any
// number of times, from any goroutine.
type Workspace struct {
	dir  string
	once sync.Once
	err  error
}

// New creates a fresh directory under base whose name starts with prefix.
func New(base, prefix string) (*Workspace, error) {
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("workspace base: %w", err)
	}
	dir, err := os.MkdirTemp(base, prefix+"-")
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string { return w.dir }

// Path joins name onto the workspace directory.
func (w *Workspace) Path(name string) string { return filepath.Join(w.dir, name) }

func (w *Workspace) Cleanup() error {
	w.once.Do(func() {
		// RemoveAll tolerates paths that are already gone.
		w.err = os.RemoveAll(w.dir)
	})
	return w.err
}

// Publish moves src to dst, copying when a rename cannot cross filesystems.
func Publish(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("publish %s: %w", dst, err)
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
