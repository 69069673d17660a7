package assemble

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is a per-run directory for intermediate page files. Close
// removes it with everything inside.
type Workspace struct {
	dir string
}

// NewWorkspace creates a fresh directory under root (the system temp dir
// when root is empty) named after the run.
func NewWorkspace(root, runID string) (*Workspace, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("create work dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(root, "run-"+runID+"-")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string { return w.dir }

// File returns a path inside the workspace.
func (w *Workspace) File(format string, args ...any) string {
	return filepath.Join(w.dir, fmt.Sprintf(format, args...))
}

func (w *Workspace) Close() error { return os.RemoveAll(w.dir) }
