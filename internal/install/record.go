package install

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/giantswarm/microerror"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
)

// markerFileName is the version marker written into an install directory
// after a successful install.
const markerFileName = "version.txt"

// Layout maps catalog entries to their on-disk installation: one directory
// per application under the install root, the executable named after the
// application, and a version marker beside it. The filesystem is the source
// of truth for whether an application is installed.
type Layout struct {
	root string
}

// NewLayout creates a Layout rooted at the given directory.
func NewLayout(root string) *Layout {
	return &Layout{root: root}
}

// Root returns the install root directory.
func (l *Layout) Root() string {
	return l.root
}

// Dir returns the install directory of the named application.
func (l *Layout) Dir(name string) string {
	return filepath.Join(l.root, name)
}

// EnsureDir creates the install directory of the named application if needed
// and returns its path.
func (l *Layout) EnsureDir(name string) (string, error) {
	dir := l.Dir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", microerror.Maskf(ioFailureError, "creating install directory: %v", err)
	}
	return dir, nil
}

// ExecutablePath returns where the entry's executable lives once installed.
// The file is named after the application, keeping the source's extension.
func (l *Layout) ExecutablePath(e catalog.Entry) string {
	return filepath.Join(l.Dir(e.Name), e.Name+filepath.Ext(e.ExePath))
}

// Installed reports whether the entry's executable is present on disk.
func (l *Layout) Installed(e catalog.Entry) bool {
	_, err := os.Stat(l.ExecutablePath(e))
	return err == nil
}

// MarkerPath returns the version marker path of the named application.
func (l *Layout) MarkerPath(name string) string {
	return filepath.Join(l.Dir(name), markerFileName)
}

// InstalledVersion reads the version marker of the named application. It
// returns "" when the marker is missing or does not hold a version number;
// an installed application without a readable marker counts as out of date.
func (l *Layout) InstalledVersion(name string) string {
	data, err := os.ReadFile(l.MarkerPath(name))
	if err != nil {
		return ""
	}

	version := strings.TrimSpace(string(data))
	if _, err := strconv.ParseFloat(version, 64); err != nil {
		return ""
	}
	return version
}

// WriteVersion writes the version marker for the named application.
func (l *Layout) WriteVersion(name, version string) error {
	if err := os.MkdirAll(l.Dir(name), 0755); err != nil {
		return microerror.Maskf(ioFailureError, "creating install directory: %v", err)
	}
	if err := os.WriteFile(l.MarkerPath(name), []byte(version), 0644); err != nil {
		return microerror.Maskf(ioFailureError, "writing version marker: %v", err)
	}
	return nil
}

// Remove deletes the named application's install directory.
func (l *Layout) Remove(name string) error {
	if err := os.RemoveAll(l.Dir(name)); err != nil {
		return microerror.Maskf(ioFailureError, "removing install directory: %v", err)
	}
	return nil
}
