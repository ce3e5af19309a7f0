package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Manager handles generation and persistence of agent secrets.
// Secrets are generated on first run and stored in a JSON file.
type Manager struct {
	path    string
	secrets *Secrets
	mu      sync.RWMutex
}

// Secrets contains all persisted secrets for the agent.
type Secrets struct {
	// Signing secret for one-time launch tokens
	LaunchTokenSecret string `json:"launchTokenSecret"`

	// Bearer token for the remote list service. Not generated; set by the
	// operator via SetListServiceToken or provided through the environment.
	ListServiceToken string `json:"listServiceToken,omitempty"`
}

// NewManager creates a new secrets manager that uses the given file path.
func NewManager(path string) *Manager {
	return &Manager{
		path: path,
	}
}

// Load reads secrets from file or generates new ones if the file doesn't exist.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return m.generateAndSave()
		}
		return fmt.Errorf("reading secrets file: %w", err)
	}

	var secrets Secrets
	if err := json.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parsing secrets file: %w", err)
	}

	// Migrate: fill in any missing generated secrets
	updated := false
	if secrets.LaunchTokenSecret == "" {
		secrets.LaunchTokenSecret = generateSecret(48)
		updated = true
	}

	m.secrets = &secrets

	if updated {
		return m.saveLocked()
	}

	return nil
}

// generateAndSave generates all secrets and saves to file.
func (m *Manager) generateAndSave() error {
	m.secrets = &Secrets{
		LaunchTokenSecret: generateSecret(48),
	}

	return m.saveLocked()
}

// saveLocked saves secrets to file. Caller must hold the lock.
func (m *Manager) saveLocked() error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating secrets directory: %w", err)
	}

	data, err := json.MarshalIndent(m.secrets, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling secrets: %w", err)
	}

	// Owner read/write only
	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("writing secrets file: %w", err)
	}

	return nil
}

// GetLaunchTokenSecret returns the launch token signing secret.
func (m *Manager) GetLaunchTokenSecret() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.secrets == nil {
		return ""
	}
	return m.secrets.LaunchTokenSecret
}

// GetListServiceToken returns the stored list service token, if any.
func (m *Manager) GetListServiceToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.secrets == nil {
		return ""
	}
	return m.secrets.ListServiceToken
}

// SetListServiceToken stores the list service token and saves to file.
func (m *Manager) SetListServiceToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.secrets == nil {
		return fmt.Errorf("secrets not loaded")
	}

	m.secrets.ListServiceToken = token

	return m.saveLocked()
}

// Path returns the file path where secrets are stored.
func (m *Manager) Path() string {
	return m.path
}

// generateSecret generates a cryptographically random secret of the given length.
// The result is base64 URL-encoded for safe use in configs.
func generateSecret(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		// This should never happen with crypto/rand
		panic(fmt.Sprintf("failed to generate random bytes: %v", err))
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length]
}
