package worker

import (
	"fmt"
	"os"

	"github.com/mewada-madhusudan/cuddly-disco/internal/store"
)

// RecoverRegistry settles registry rows left in a transitional status by an
// interrupted run. A transfer that wrote its version marker is complete and
// becomes installed; one that did not is failed. Removals whose directory is
// already gone are finished, removals that left files behind are failed.
func (e *Executor) RecoverRegistry() error {
	apps, err := e.registry.GetAll()
	if err != nil {
		return fmt.Errorf("failed to list registry: %w", err)
	}

	for _, app := range apps {
		switch app.Status {
		case store.StatusInstalling, store.StatusUpdating:
			e.recoverTransfer(app)
		case store.StatusRemoving:
			e.recoverRemoval(app)
		}
	}
	return nil
}

func (e *Executor) recoverTransfer(app *store.InstalledApp) {
	marker := e.layout.InstalledVersion(app.Name)
	if marker == "" {
		e.logger.Warn("interrupted transfer, marking failed", "app", app.Name, "status", app.Status)
		e.markFailed(app.Name)
		return
	}

	// The marker is written after the final byte; it names the version
	// actually on disk.
	if marker != app.Version {
		if err := e.registry.SetVersion(app.Name, marker); err != nil {
			e.logger.Warn("failed to realign version", "app", app.Name, "error", err)
		}
	}
	if err := e.registry.UpdateStatus(app.Name, store.StatusInstalled); err != nil {
		e.logger.Warn("failed to mark app installed", "app", app.Name, "error", err)
		return
	}
	e.logger.Info("recovered interrupted transfer", "app", app.Name, "version", marker)
}

func (e *Executor) recoverRemoval(app *store.InstalledApp) {
	if _, err := os.Stat(e.layout.Dir(app.Name)); os.IsNotExist(err) {
		if err := e.registry.Uninstall(app.Name); err != nil {
			e.logger.Warn("failed to drop removed app", "app", app.Name, "error", err)
			return
		}
		e.logger.Info("completed interrupted uninstall", "app", app.Name)
		return
	}

	// Files remain after a partial delete
	e.logger.Warn("interrupted uninstall left files behind, marking failed", "app", app.Name)
	e.markFailed(app.Name)
}
