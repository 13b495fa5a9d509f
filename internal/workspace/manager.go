// Package workspace manages the temporary directories that scope one
// download request each. A workspace is exclusively owned by its request
// and destroyed exactly once, on every exit path.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"videofetch/internal/model"
	"videofetch/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Workspace is a scoped temporary directory for a single download.
type Workspace struct {
	ID  string
	Dir string

	manager *Manager
	release sync.Once
}

// Release destroys the workspace directory. Idempotent; removal failures
// are logged and swallowed so they never mask the request outcome.
func (w *Workspace) Release() {
	w.release.Do(func() {
		if err := os.RemoveAll(w.Dir); err != nil {
			logger.LogWarn("Failed to remove workspace",
				zap.String("id", w.ID), zap.String("dir", w.Dir), zap.Error(err))
		} else {
			logger.LogDebug("Workspace released", zap.String("id", w.ID))
		}
		if w.manager != nil {
			w.manager.untrack(w.ID)
		}
	})
}

// Manager creates and tracks workspaces under a single root directory and
// sweeps orphaned directories left behind by crashed requests.
type Manager struct {
	cfg      *model.WorkspaceConfig
	root     string
	active   map[string]*Workspace
	mu       sync.Mutex
	quitChan chan bool
}

// NewManager creates a workspace manager rooted under cfg.Root.
func NewManager(cfg *model.WorkspaceConfig) *Manager {
	return &Manager{
		cfg:      cfg,
		root:     filepath.Join(cfg.Root, "videofetch-workspaces"),
		active:   make(map[string]*Workspace),
		quitChan: make(chan bool),
	}
}

// EnsureRoot creates the workspace root directory.
func (m *Manager) EnsureRoot() error {
	return os.MkdirAll(m.root, 0o755)
}

// Acquire creates a fresh, uniquely named workspace.
func (m *Manager) Acquire() (*Workspace, error) {
	id := uuid.NewString()
	dir := filepath.Join(m.root, "dl-"+id)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	ws := &Workspace{ID: id, Dir: dir, manager: m}
	m.mu.Lock()
	m.active[id] = ws
	m.mu.Unlock()

	logger.LogDebug("Workspace acquired", zap.String("id", id), zap.String("dir", dir))
	return ws, nil
}

func (m *Manager) untrack(id string) {
	m.mu.Lock()
	delete(m.active, id)
	m.mu.Unlock()
}

// ActiveCount returns the number of live workspaces.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Start starts the orphan janitor.
func (m *Manager) Start() {
	go m.janitorRoutine()
}

// Stop stops the orphan janitor.
func (m *Manager) Stop() {
	select {
	case m.quitChan <- true:
	default:
	}
}

func (m *Manager) janitorRoutine() {
	ticker := time.NewTicker(time.Duration(m.cfg.JanitorInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.quitChan:
			logger.LogInfo("Workspace janitor stopped")
			return
		case <-ticker.C:
			m.sweepOrphans()
		}
	}
}

// sweepOrphans removes workspace directories that are no longer tracked
// and older than the orphan TTL. These only exist after a crash or kill
// between acquire and release.
func (m *Manager) sweepOrphans() {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		logger.LogWarn("Workspace sweep failed", zap.Error(err))
		return
	}

	m.mu.Lock()
	tracked := make(map[string]bool, len(m.active))
	for _, ws := range m.active {
		tracked[filepath.Base(ws.Dir)] = true
	}
	m.mu.Unlock()

	cutoff := time.Now().Add(-time.Duration(m.cfg.OrphanTTL) * time.Second)
	removed := 0

	for _, entry := range entries {
		if !entry.IsDir() || tracked[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(m.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logger.LogWarn("Failed to remove orphaned workspace",
				zap.String("dir", path), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.LogInfo("Orphaned workspaces swept", zap.Int("removed", removed))
	}
}
