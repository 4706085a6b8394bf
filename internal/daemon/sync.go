package daemon

import (
	"log/slog"

	"github.com/1broseidon/floatwm/internal/platform"
)

// Registry is the window manager state the reconciler keeps honest.
type Registry interface {
	IDs() []platform.WindowID
	Managed(id platform.WindowID) bool
	ViewDestroyed(id platform.WindowID)
	ActiveSession() (platform.WindowID, bool)
	StopSession()
}

// StateSynchronizer applies cleanup when windows vanish without the X server
// telling us.
type StateSynchronizer struct {
	registry Registry
	logger   *slog.Logger
}

// NewStateSynchronizer creates a new state synchronizer.
func NewStateSynchronizer(registry Registry, logger *slog.Logger) *StateSynchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateSynchronizer{
		registry: registry,
		logger:   logger,
	}
}

// HandleWindowClosed forgets a managed window that no longer exists. A
// session held by the window ends with it.
func (s *StateSynchronizer) HandleWindowClosed(id platform.WindowID) {
	if !s.registry.Managed(id) {
		return
	}
	s.logger.Info("window vanished, forgetting", "window", id)
	s.registry.ViewDestroyed(id)
}

// CheckSession stops a session whose window is no longer managed. It
// returns true if a session was stopped.
func (s *StateSynchronizer) CheckSession() bool {
	win, active := s.registry.ActiveSession()
	if !active || s.registry.Managed(win) {
		return false
	}
	s.logger.Warn("stopping session on unmanaged window", "window", win)
	s.registry.StopSession()
	return true
}
