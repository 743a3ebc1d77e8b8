// Package scratch manages ephemeral workspaces for merge invocations. A
// scratch workspace holds the structural merge tool's output tree for exactly
// one invocation and is removed on every exit path.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mergebench/mergebench/internal/core/id"
	"github.com/mergebench/mergebench/internal/core/logger"
)

// Workspace is a uniquely named scratch directory
type Workspace struct {
	// ID is the collision-free workspace identifier
	ID string
	// Path is the directory on disk
	Path string

	log logger.Logger
}

// Manager creates scratch workspaces under a base directory
type Manager struct {
	baseDir string
	log     logger.Logger
}

// NewManager creates a scratch workspace manager. An empty baseDir falls
// back to the system temp directory.
func NewManager(baseDir string, log logger.Logger) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		baseDir: baseDir,
		log:     log,
	}
}

// Create allocates a new empty scratch workspace. The directory name embeds
// the process ID and a random suffix so concurrent invocations never collide.
func (m *Manager) Create(name string) (*Workspace, error) {
	wsID := id.Invocation(name)
	path := filepath.Join(m.baseDir, wsID)

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch workspace: %w", err)
	}

	m.log.Debug("created scratch workspace", "id", wsID, "path", path)

	return &Workspace{
		ID:   wsID,
		Path: path,
		log:  m.log,
	}, nil
}

// Remove deletes the workspace and everything in it. Safe to call more than
// once; callers defer it so cleanup runs on success and failure paths alike.
func (w *Workspace) Remove() error {
	if w == nil || w.Path == "" {
		return nil
	}
	if err := os.RemoveAll(w.Path); err != nil {
		return fmt.Errorf("failed to remove scratch workspace %s: %w", w.ID, err)
	}
	w.log.Debug("removed scratch workspace", "id", w.ID)
	return nil
}
