package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mewada-madhusudan/cuddly-disco/internal/listsvc"
	"github.com/mewada-madhusudan/cuddly-disco/internal/resilience"
)

// Logger records user actions to the remote action history list. Writes are
// retried with bounded backoff; they are best effort and must never fail the
// user operation that triggered them.
type Logger struct {
	service listsvc.Service
	list    string
	userSID string
	logger  *slog.Logger
}

// NewLogger creates an action logger for the given user.
func NewLogger(service listsvc.Service, list, userSID string, logger *slog.Logger) *Logger {
	return &Logger{
		service: service,
		list:    list,
		userSID: userSID,
		logger:  logger,
	}
}

// Record writes one action row. The returned error is informational; callers
// log it and carry on.
func (l *Logger) Record(ctx context.Context, action string) error {
	fields := map[string]string{
		"SID":    l.userSID,
		"action": action,
	}

	op := func() error {
		_, err := l.service.AddItem(ctx, l.list, fields)
		return err
	}

	if err := resilience.Retry(ctx, l.logger, "action history write", op); err != nil {
		l.logger.Warn("failed to record action", "action", action, "error", err)
		return fmt.Errorf("recording action %q: %w", action, err)
	}

	l.logger.Debug("action recorded", "action", action)
	return nil
}

// Installing returns the action text for an install of the named application.
func Installing(name string) string {
	return fmt.Sprintf("Installing %s", name)
}

// Updated returns the action text for an update of the named application.
func Updated(name string) string {
	return fmt.Sprintf("Updated %s", name)
}

// Launched returns the action text for a launch of the named application.
func Launched(name string) string {
	return fmt.Sprintf("Launched %s", name)
}

// Uninstalled returns the action text for an uninstall of the named application.
func Uninstalled(name string) string {
	return fmt.Sprintf("Uninstalled %s", name)
}

// Recorder is the action logging dependency of components that report user
// actions. This interface enables mocking for testing.
type Recorder interface {
	Record(ctx context.Context, action string) error
}

// Compile-time assertion that Logger implements Recorder
var _ Recorder = (*Logger)(nil)
