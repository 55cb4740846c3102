package pdftext

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// workspace is a per-invocation temporary directory. Names combine a
// timestamp with MkdirTemp's random suffix so concurrent extractions never
// share files.
type workspace struct {
	dir string
}

func newWorkspace(base, label string) (*workspace, error) {
	dir, err := os.MkdirTemp(base, fmt.Sprintf("%s-%d-*", label, time.Now().UnixNano()))
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &workspace{dir: dir}, nil
}

func (w *workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *workspace) writeFile(name string, data []byte) (string, error) {
	p := w.path(name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return p, nil
}

func (w *workspace) cleanup() {
	if err := os.RemoveAll(w.dir); err != nil {
		slog.Warn("pdftext: failed to remove workspace", "dir", w.dir, "error", err)
	}
}
