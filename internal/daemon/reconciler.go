package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/floatwm/internal/platform"
)

// WindowLister returns the top-level windows that currently exist.
type WindowLister func() ([]platform.WindowID, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks for state drift and corrects it.
type Reconciler struct {
	interval    time.Duration
	sync        *StateSynchronizer
	listWindows WindowLister
	logger      *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, sync *StateSynchronizer, listWindows WindowLister) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:    interval,
		sync:        sync,
		listWindows: listWindows,
		logger:      logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the window manager
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	expected := r.sync.registry.IDs()
	if len(expected) == 0 {
		r.sync.CheckSession()
		return
	}

	actual, err := r.listWindows()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return
	}

	live := make(map[platform.WindowID]bool, len(actual))
	for _, id := range actual {
		live[id] = true
	}

	for _, id := range expected {
		if !live[id] {
			r.sync.HandleWindowClosed(id)
		}
	}
	r.sync.CheckSession()
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
