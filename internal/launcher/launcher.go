package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/giantswarm/microerror"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
	"github.com/mewada-madhusudan/cuddly-disco/internal/history"
	"github.com/mewada-madhusudan/cuddly-disco/internal/install"
)

// Result describes a completed launch.
type Result struct {
	App     string `json:"app"`
	Path    string `json:"path"`
	Warning string `json:"warning,omitempty"`
	Token   string `json:"token,omitempty"`
}

// Launcher starts installed applications after lifecycle checks. The install
// directory on disk is the source of truth for whether an application can be
// started.
type Launcher struct {
	layout  *install.Layout
	rules   *catalog.Rules
	actions history.Recorder
	tokens  *TokenStore // nil when launch auditing is unavailable
	userSID string
	logger  *slog.Logger
	starter func(path string) error
}

// NewLauncher creates a launcher. tokens may be nil; launches then proceed
// without audit tokens.
func NewLauncher(layout *install.Layout, rules *catalog.Rules, actions history.Recorder, tokens *TokenStore, userSID string, logger *slog.Logger) *Launcher {
	return &Launcher{
		layout:  layout,
		rules:   rules,
		actions: actions,
		tokens:  tokens,
		userSID: userSID,
		logger:  logger,
		starter: start,
	}
}

// Launch starts the entry's installed executable. Expired applications are
// refused; BETA applications that are not registered launch with a warning
// about their remaining days.
func (l *Launcher) Launch(ctx context.Context, entry catalog.Entry) (*Result, error) {
	result := &Result{App: entry.Name}

	// 1. The executable must be on disk
	if !l.layout.Installed(entry) {
		return result, microerror.Maskf(notInstalledError, "%s is not installed", entry.Name)
	}

	now := time.Now()

	// 2. Expired applications never start
	if l.rules.IsExpired(entry, now) {
		return result, microerror.Maskf(expiredError, "%s", catalog.ExpiredNote(entry))
	}

	// 3. Unregistered BETA builds still run, with a countdown warning
	if entry.Environment == catalog.EnvBETA && !entry.Registered() {
		days := l.rules.DaysRemaining(entry, now)
		result.Warning = fmt.Sprintf("Application is not registered at IA Hub and will stop working in %d days.", days)
	}

	// 4. Audit token, when Redis is around
	if l.tokens != nil {
		token, err := l.tokens.Mint(ctx, entry.Name, l.userSID)
		if err != nil {
			l.logger.Warn("failed to mint launch token", "app", entry.Name, "error", err)
		} else {
			result.Token = token.ID
		}
	}

	// 5. Start the process
	path := l.layout.ExecutablePath(entry)
	if err := l.starter(path); err != nil {
		return result, microerror.Maskf(launchFailedError, "failed to start %s: %v", path, err)
	}
	result.Path = path

	l.actions.Record(ctx, history.Launched(entry.Name))

	l.logger.Info("application launched", "app", entry.Name, "path", path, "warning", result.Warning != "")
	return result, nil
}

// start detaches the launched process from the agent.
func start(path string) error {
	cmd := exec.Command(path)
	cmd.Dir = filepath.Dir(path)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
