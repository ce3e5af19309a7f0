package store

// AppStoreInterface defines the interface for the install registry.
// This interface enables mocking for testing.
type AppStoreInterface interface {
	// GetAll returns all installed apps of the user
	GetAll() ([]*InstalledApp, error)

	// GetByName returns an installed app by name, or nil when not installed
	GetByName(name string) (*InstalledApp, error)

	// GetInstalledNames returns just the names of installed apps
	GetInstalledNames() ([]string, error)

	// Install records a new app installation (or re-install)
	Install(name, version, installPath string) error

	// UpdateStatus updates the status of an installed app
	UpdateStatus(name, status string) error

	// SetVersion updates the recorded version of an installed app
	SetVersion(name, version string) error

	// Uninstall removes an app from the registry
	Uninstall(name string) error

	// IsInstalled checks if an app is recorded in the registry
	IsInstalled(name string) (bool, error)

	// SetOnChange sets a callback that fires when app state changes
	SetOnChange(fn func())
}

// SyncLogInterface defines the interface for recording sync outcomes.
type SyncLogInterface interface {
	// Record stores one sync outcome
	Record(source string, entryCount int, reason string) error

	// Latest returns the most recent sync outcome, or nil when none
	Latest() (*SyncRecord, error)

	// Recent returns up to limit sync outcomes, newest first
	Recent(limit int) ([]*SyncRecord, error)
}

// Compile-time assertions that the stores implement their interfaces
var (
	_ AppStoreInterface = (*AppStore)(nil)
	_ SyncLogInterface  = (*SyncLogStore)(nil)
)
