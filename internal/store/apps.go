package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Installation status values.
const (
	StatusInstalling = "installing"
	StatusInstalled  = "installed"
	StatusUpdating   = "updating"
	StatusRemoving   = "removing"
	StatusFailed     = "failed"
)

// InstalledApp is the registry row of one application installed for a user.
// The registry mirrors what is on disk so the API can answer without
// touching the filesystem; the install directory stays the source of truth.
type InstalledApp struct {
	ID          int       `json:"id"`
	UserSID     string    `json:"user_sid"`
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	InstallPath string    `json:"install_path"`
	Status      string    `json:"status"`
	InstalledAt time.Time `json:"installed_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AppStore manages the install registry of a single user
type AppStore struct {
	db       *sql.DB
	userSID  string
	onChange func() // Called when app state changes
}

// NewAppStore creates an app store scoped to the given user
func NewAppStore(db *sql.DB, userSID string) *AppStore {
	return &AppStore{db: db, userSID: userSID}
}

// SetOnChange sets a callback that fires when app state changes
func (s *AppStore) SetOnChange(fn func()) {
	s.onChange = fn
}

// notify calls the onChange callback if set
func (s *AppStore) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// GetAll returns all installed apps of the user
func (s *AppStore) GetAll() ([]*InstalledApp, error) {
	rows, err := s.db.Query(`
		SELECT id, user_sid, name, version, install_path, status, installed_at, updated_at
		FROM installed_apps
		WHERE user_sid = $1
		ORDER BY name
	`, s.userSID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installed apps: %w", err)
	}
	defer rows.Close()

	apps := []*InstalledApp{}
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan app: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, nil
}

// GetByName returns an installed app by name, or nil when not installed
func (s *AppStore) GetByName(name string) (*InstalledApp, error) {
	row := s.db.QueryRow(`
		SELECT id, user_sid, name, version, install_path, status, installed_at, updated_at
		FROM installed_apps
		WHERE user_sid = $1 AND name = $2
	`, s.userSID, name)

	app, err := scanApp(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app: %w", err)
	}

	return app, nil
}

// GetInstalledNames returns just the names of installed apps
func (s *AppStore) GetInstalledNames() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT name FROM installed_apps WHERE user_sid = $1 ORDER BY name
	`, s.userSID)
	if err != nil {
		return nil, fmt.Errorf("failed to query app names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}

	return names, nil
}

// Install records a new app installation (or re-install) in installing state
func (s *AppStore) Install(name, version, installPath string) error {
	_, err := s.db.Exec(`
		INSERT INTO installed_apps (user_sid, name, version, install_path, status)
		VALUES ($1, $2, $3, $4, 'installing')
		ON CONFLICT (user_sid, name) DO UPDATE SET
			version = excluded.version,
			install_path = excluded.install_path,
			status = 'installing',
			updated_at = CURRENT_TIMESTAMP
	`, s.userSID, name, version, installPath)
	if err != nil {
		return fmt.Errorf("failed to insert app: %w", err)
	}

	s.notify()
	return nil
}

// UpdateStatus updates the status of an installed app
func (s *AppStore) UpdateStatus(name, status string) error {
	result, err := s.db.Exec(`
		UPDATE installed_apps SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE user_sid = $2 AND name = $3
	`, status, s.userSID, name)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("app not found: %s", name)
	}

	s.notify()
	return nil
}

// SetVersion updates the recorded version of an installed app
func (s *AppStore) SetVersion(name, version string) error {
	result, err := s.db.Exec(`
		UPDATE installed_apps SET version = $1, updated_at = CURRENT_TIMESTAMP
		WHERE user_sid = $2 AND name = $3
	`, version, s.userSID, name)
	if err != nil {
		return fmt.Errorf("failed to update version: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("app not found: %s", name)
	}

	s.notify()
	return nil
}

// Uninstall removes an app from the registry
func (s *AppStore) Uninstall(name string) error {
	result, err := s.db.Exec(`
		DELETE FROM installed_apps WHERE user_sid = $1 AND name = $2
	`, s.userSID, name)
	if err != nil {
		return fmt.Errorf("failed to delete app: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("app not found: %s", name)
	}

	s.notify()
	return nil
}

// IsInstalled checks if an app is recorded in the registry
func (s *AppStore) IsInstalled(name string) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM installed_apps WHERE user_sid = $1 AND name = $2
	`, s.userSID, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check if installed: %w", err)
	}
	return count > 0, nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanning
type rowScanner interface {
	Scan(dest ...any) error
}

func scanApp(sc rowScanner) (*InstalledApp, error) {
	var app InstalledApp
	err := sc.Scan(
		&app.ID,
		&app.UserSID,
		&app.Name,
		&app.Version,
		&app.InstallPath,
		&app.Status,
		&app.InstalledAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}
