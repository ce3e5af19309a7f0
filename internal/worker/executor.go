package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/microerror"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
	"github.com/mewada-madhusudan/cuddly-disco/internal/history"
	"github.com/mewada-madhusudan/cuddly-disco/internal/install"
	"github.com/mewada-madhusudan/cuddly-disco/internal/store"
)

// Result describes the outcome of a completed operation.
type Result struct {
	App      string `json:"app"`
	Action   string `json:"action"`
	Version  string `json:"version,omitempty"`
	Path     string `json:"path,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// OperationExecutor performs install/update/uninstall operations.
// This interface enables mocking for testing the queue.
type OperationExecutor interface {
	Install(ctx context.Context, entry catalog.Entry) (*Result, error)
	Update(ctx context.Context, entry catalog.Entry) (*Result, error)
	Uninstall(ctx context.Context, entry catalog.Entry) (*Result, error)
}

// Executor carries out catalog operations against the local filesystem and
// the install registry.
type Executor struct {
	layout     *install.Layout
	registry   store.AppStoreInterface
	actions    history.Recorder
	logger     *slog.Logger
	onProgress func(app string, percent int)
}

// NewExecutor creates an executor over the given install layout and registry.
func NewExecutor(layout *install.Layout, registry store.AppStoreInterface, actions history.Recorder, logger *slog.Logger) *Executor {
	return &Executor{
		layout:   layout,
		registry: registry,
		actions:  actions,
		logger:   logger,
	}
}

// SetOnProgress registers a callback that receives transfer progress. The
// callback runs on the worker goroutine and must not block.
func (e *Executor) SetOnProgress(fn func(app string, percent int)) {
	e.onProgress = fn
}

func (e *Executor) progress(app string, percent int) {
	if e.onProgress != nil {
		e.onProgress(app, percent)
	}
}

// Install transfers the entry's executable from its network source into the
// install root and records it in the registry.
func (e *Executor) Install(ctx context.Context, entry catalog.Entry) (*Result, error) {
	started := time.Now()
	result := &Result{App: entry.Name, Action: "install", Version: entry.Version}

	e.logger.Info("starting install", "app", entry.Name, "source", entry.ExePath, "version", entry.Version)

	// 1. Preflight: source reachable, destination volume has room
	if err := install.CheckSpace(entry.ExePath, e.layout.Root()); err != nil {
		return result, microerror.Mask(err)
	}

	// 2. Transfer
	if err := e.transfer(ctx, entry, result, history.Installing(entry.Name)); err != nil {
		return result, microerror.Mask(err)
	}

	result.Duration = time.Since(started).Round(time.Millisecond).String()
	e.logger.Info("install complete", "app", entry.Name, "path", result.Path, "duration", result.Duration)
	return result, nil
}

// Update replaces an existing installation with a fresh transfer from the
// current source. Applications that were never installed are installed.
func (e *Executor) Update(ctx context.Context, entry catalog.Entry) (*Result, error) {
	started := time.Now()
	result := &Result{App: entry.Name, Action: "update", Version: entry.Version}

	e.logger.Info("starting update", "app", entry.Name, "version", entry.Version)

	// 1. Preflight before removing anything
	if err := install.CheckSpace(entry.ExePath, e.layout.Root()); err != nil {
		return result, microerror.Mask(err)
	}

	// 2. Clear the old installation
	app, err := e.registry.GetByName(entry.Name)
	if err != nil {
		return result, fmt.Errorf("failed to look up app: %w", err)
	}
	if app != nil {
		if err := e.registry.UpdateStatus(entry.Name, store.StatusUpdating); err != nil {
			e.logger.Warn("failed to update app status", "app", entry.Name, "error", err)
		}
	}
	if err := e.layout.Remove(entry.Name); err != nil {
		e.revertToInstalled(entry.Name, app != nil)
		return result, microerror.Mask(err)
	}

	// 3. Reinstall from the current source
	if err := e.transfer(ctx, entry, result, history.Updated(entry.Name)); err != nil {
		return result, microerror.Mask(err)
	}

	result.Duration = time.Since(started).Round(time.Millisecond).String()
	e.logger.Info("update complete", "app", entry.Name, "version", entry.Version, "duration", result.Duration)
	return result, nil
}

// Uninstall deletes the entry's install directory and its registry record.
func (e *Executor) Uninstall(ctx context.Context, entry catalog.Entry) (*Result, error) {
	result := &Result{App: entry.Name, Action: "uninstall"}

	e.logger.Info("starting uninstall", "app", entry.Name)

	// 1. The app must be in the registry
	app, err := e.registry.GetByName(entry.Name)
	if err != nil {
		return result, fmt.Errorf("failed to look up app: %w", err)
	}
	if app == nil {
		return result, microerror.Maskf(notInstalledError, "%s is not installed", entry.Name)
	}

	// 2. Mark removal in progress
	if err := e.registry.UpdateStatus(entry.Name, store.StatusRemoving); err != nil {
		return result, fmt.Errorf("failed to update app status: %w", err)
	}

	// 3. Delete the install directory; revert status if that fails
	if err := e.layout.Remove(entry.Name); err != nil {
		e.revertToInstalled(entry.Name, true)
		return result, microerror.Mask(err)
	}

	// 4. Drop the registry row and record the action
	if err := e.registry.Uninstall(entry.Name); err != nil {
		return result, fmt.Errorf("failed to remove registry record: %w", err)
	}
	e.actions.Record(ctx, history.Uninstalled(entry.Name))

	e.logger.Info("uninstall complete", "app", entry.Name)
	return result, nil
}

// transfer is the shared install sequence: record intent, copy in chunks with
// progress, write the version marker, mark installed.
func (e *Executor) transfer(ctx context.Context, entry catalog.Entry, result *Result, action string) error {
	name := entry.Name

	dir, err := e.layout.EnsureDir(name)
	if err != nil {
		return microerror.Mask(err)
	}

	// Record intent before any bytes move so a crash leaves a visible
	// 'installing' row rather than an orphaned directory
	if err := e.registry.Install(name, entry.Version, dir); err != nil {
		return fmt.Errorf("failed to record install intent: %w", err)
	}
	e.actions.Record(ctx, action)

	dest := e.layout.ExecutablePath(entry)
	onProgress := func(percent int) { e.progress(name, percent) }

	if err := install.CopyChunked(ctx, entry.ExePath, dest, onProgress); err != nil {
		e.markFailed(name)
		return microerror.Mask(err)
	}

	if err := e.layout.WriteVersion(name, entry.Version); err != nil {
		e.markFailed(name)
		return microerror.Mask(err)
	}

	if err := e.registry.UpdateStatus(name, store.StatusInstalled); err != nil {
		return fmt.Errorf("failed to mark app installed: %w", err)
	}

	result.Path = dest
	return nil
}

func (e *Executor) markFailed(name string) {
	if err := e.registry.UpdateStatus(name, store.StatusFailed); err != nil {
		e.logger.Warn("failed to mark app failed", "app", name, "error", err)
	}
}

func (e *Executor) revertToInstalled(name string, hasRecord bool) {
	if !hasRecord {
		return
	}
	if err := e.registry.UpdateStatus(name, store.StatusInstalled); err != nil {
		e.logger.Warn("failed to revert app status", "app", name, "error", err)
	}
}
