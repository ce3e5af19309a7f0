package worker

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
	"github.com/mewada-madhusudan/cuddly-disco/internal/install"
	"github.com/mewada-madhusudan/cuddly-disco/internal/store"
)

// fakeRegistry is an in-memory AppStoreInterface for executor tests.
type fakeRegistry struct {
	mu          sync.Mutex
	apps        map[string]*store.InstalledApp
	transitions []string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{apps: make(map[string]*store.InstalledApp)}
}

func (f *fakeRegistry) GetAll() ([]*store.InstalledApp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var apps []*store.InstalledApp
	for _, app := range f.apps {
		apps = append(apps, app)
	}
	return apps, nil
}

func (f *fakeRegistry) GetByName(name string) (*store.InstalledApp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apps[name], nil
}

func (f *fakeRegistry) GetInstalledNames() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for name := range f.apps {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeRegistry) Install(name, version, installPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apps[name] = &store.InstalledApp{
		Name:        name,
		Version:     version,
		InstallPath: installPath,
		Status:      store.StatusInstalling,
	}
	f.transitions = append(f.transitions, name+":"+store.StatusInstalling)
	return nil
}

func (f *fakeRegistry) UpdateStatus(name, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if app, ok := f.apps[name]; ok {
		app.Status = status
	}
	f.transitions = append(f.transitions, name+":"+status)
	return nil
}

func (f *fakeRegistry) SetVersion(name, version string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if app, ok := f.apps[name]; ok {
		app.Version = version
	}
	return nil
}

func (f *fakeRegistry) Uninstall(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.apps, name)
	return nil
}

func (f *fakeRegistry) IsInstalled(name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.apps[name]
	return ok, nil
}

func (f *fakeRegistry) SetOnChange(fn func()) {}

func (f *fakeRegistry) status(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if app, ok := f.apps[name]; ok {
		return app.Status
	}
	return ""
}

// fakeRecorder captures recorded actions.
type fakeRecorder struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeRecorder) Record(ctx context.Context, action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeRecorder) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.actions...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSource(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	return path
}

func testEntry(name, source, version string) catalog.Entry {
	return catalog.Entry{Name: name, ExePath: source, Version: version}
}

func TestExecutorInstall(t *testing.T) {
	layout := install.NewLayout(t.TempDir())
	registry := newFakeRegistry()
	recorder := &fakeRecorder{}
	executor := NewExecutor(layout, registry, recorder, discardLogger())

	var lastPercent int
	executor.SetOnProgress(func(app string, percent int) {
		assert.Equal(t, "Budget Tracker", app)
		lastPercent = percent
	})

	source := writeSource(t, "budget.exe", 4096)
	entry := testEntry("Budget Tracker", source, "2.1")

	result, err := executor.Install(context.Background(), entry)
	require.NoError(t, err)

	assert.Equal(t, "Budget Tracker", result.App)
	assert.Equal(t, "install", result.Action)
	assert.Equal(t, layout.ExecutablePath(entry), result.Path)
	assert.FileExists(t, result.Path)
	assert.Equal(t, 100, lastPercent)

	assert.Equal(t, store.StatusInstalled, registry.status("Budget Tracker"))
	assert.Equal(t, "2.1", layout.InstalledVersion("Budget Tracker"))
	assert.Contains(t, recorder.recorded(), "Installing Budget Tracker")
}

func TestExecutorInstallMissingSource(t *testing.T) {
	layout := install.NewLayout(t.TempDir())
	registry := newFakeRegistry()
	executor := NewExecutor(layout, registry, &fakeRecorder{}, discardLogger())

	entry := testEntry("Ghost", filepath.Join(t.TempDir(), "gone.exe"), "1.0")

	_, err := executor.Install(context.Background(), entry)
	require.Error(t, err)
	assert.True(t, install.IsSourceMissing(err))

	// Preflight failed, so the registry was never touched
	app, err := registry.GetByName("Ghost")
	require.NoError(t, err)
	assert.Nil(t, app)
}

func TestExecutorInstallCopyFailureMarksFailed(t *testing.T) {
	layout := install.NewLayout(t.TempDir())
	registry := newFakeRegistry()
	executor := NewExecutor(layout, registry, &fakeRecorder{}, discardLogger())

	source := writeSource(t, "tool.exe", 1024)
	entry := testEntry("Blocked", source, "1.0")

	// A directory at the destination path makes the copy fail mid-sequence
	require.NoError(t, os.MkdirAll(layout.ExecutablePath(entry), 0755))

	_, err := executor.Install(context.Background(), entry)
	require.Error(t, err)
	assert.True(t, install.IsIOFailure(err))
	assert.Equal(t, store.StatusFailed, registry.status("Blocked"))
}

func TestExecutorUninstall(t *testing.T) {
	layout := install.NewLayout(t.TempDir())
	registry := newFakeRegistry()
	recorder := &fakeRecorder{}
	executor := NewExecutor(layout, registry, recorder, discardLogger())

	source := writeSource(t, "budget.exe", 512)
	entry := testEntry("Budget Tracker", source, "1.0")

	_, err := executor.Install(context.Background(), entry)
	require.NoError(t, err)

	result, err := executor.Uninstall(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, "uninstall", result.Action)

	assert.NoDirExists(t, layout.Dir("Budget Tracker"))
	app, err := registry.GetByName("Budget Tracker")
	require.NoError(t, err)
	assert.Nil(t, app)
	assert.Contains(t, recorder.recorded(), "Uninstalled Budget Tracker")
}

func TestExecutorUninstallNotInstalled(t *testing.T) {
	layout := install.NewLayout(t.TempDir())
	executor := NewExecutor(layout, newFakeRegistry(), &fakeRecorder{}, discardLogger())

	_, err := executor.Uninstall(context.Background(), testEntry("Nothing", "", ""))
	require.Error(t, err)
	assert.True(t, IsNotInstalled(err))
}

func TestExecutorUpdate(t *testing.T) {
	layout := install.NewLayout(t.TempDir())
	registry := newFakeRegistry()
	recorder := &fakeRecorder{}
	executor := NewExecutor(layout, registry, recorder, discardLogger())

	oldSource := writeSource(t, "tool.exe", 100)
	_, err := executor.Install(context.Background(), testEntry("RiskView", oldSource, "1.0"))
	require.NoError(t, err)
	require.Equal(t, "1.0", layout.InstalledVersion("RiskView"))

	newSource := filepath.Join(t.TempDir(), "tool.exe")
	require.NoError(t, os.WriteFile(newSource, []byte("version two payload"), 0644))

	entry := testEntry("RiskView", newSource, "2.0")
	result, err := executor.Update(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, "update", result.Action)

	assert.Equal(t, "2.0", layout.InstalledVersion("RiskView"))
	assert.Equal(t, store.StatusInstalled, registry.status("RiskView"))
	assert.Contains(t, recorder.recorded(), "Updated RiskView")

	data, err := os.ReadFile(layout.ExecutablePath(entry))
	require.NoError(t, err)
	assert.Equal(t, "version two payload", string(data))
}

func TestExecutorUpdateNeverInstalled(t *testing.T) {
	layout := install.NewLayout(t.TempDir())
	registry := newFakeRegistry()
	executor := NewExecutor(layout, registry, &fakeRecorder{}, discardLogger())

	source := writeSource(t, "fresh.exe", 256)
	result, err := executor.Update(context.Background(), testEntry("Fresh", source, "3.5"))
	require.NoError(t, err)

	assert.FileExists(t, result.Path)
	assert.Equal(t, store.StatusInstalled, registry.status("Fresh"))
}
