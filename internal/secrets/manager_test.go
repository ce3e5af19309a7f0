package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestManager_GeneratesOnFirstLoad(t *testing.T) {
	tmpDir := t.TempDir()
	secretsPath := filepath.Join(tmpDir, "secrets.json")

	m := NewManager(secretsPath)
	if err := m.Load(); err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	// Verify secrets were generated
	if m.GetLaunchTokenSecret() == "" {
		t.Error("launchTokenSecret not generated")
	}
	if len(m.GetLaunchTokenSecret()) < 48 {
		t.Errorf("launchTokenSecret too short: %d", len(m.GetLaunchTokenSecret()))
	}

	// The list service token is operator-provided, never generated
	if m.GetListServiceToken() != "" {
		t.Errorf("listServiceToken should be empty, got %q", m.GetListServiceToken())
	}

	// Verify file was created
	if _, err := os.Stat(secretsPath); os.IsNotExist(err) {
		t.Error("secrets file not created")
	}
}

func TestManager_PersistsSecrets(t *testing.T) {
	tmpDir := t.TempDir()
	secretsPath := filepath.Join(tmpDir, "secrets.json")

	// Generate secrets
	m1 := NewManager(secretsPath)
	if err := m1.Load(); err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	origSecret := m1.GetLaunchTokenSecret()

	// Load again with a new manager
	m2 := NewManager(secretsPath)
	if err := m2.Load(); err != nil {
		t.Fatalf("failed to load second time: %v", err)
	}

	// Verify secrets are the same
	if m2.GetLaunchTokenSecret() != origSecret {
		t.Error("launchTokenSecret changed on reload")
	}
}

func TestManager_SetListServiceToken(t *testing.T) {
	tmpDir := t.TempDir()
	secretsPath := filepath.Join(tmpDir, "secrets.json")

	m := NewManager(secretsPath)
	if err := m.Load(); err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if err := m.SetListServiceToken("token-123"); err != nil {
		t.Fatalf("failed to set token: %v", err)
	}

	if got := m.GetListServiceToken(); got != "token-123" {
		t.Errorf("expected 'token-123', got '%s'", got)
	}

	// Verify persistence
	m2 := NewManager(secretsPath)
	if err := m2.Load(); err != nil {
		t.Fatalf("failed to load second time: %v", err)
	}
	if got := m2.GetListServiceToken(); got != "token-123" {
		t.Errorf("after reload: expected 'token-123', got '%s'", got)
	}
}

func TestManager_SetTokenBeforeLoad(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "secrets.json"))

	if err := m.SetListServiceToken("token"); err == nil {
		t.Error("expected error when setting token before Load")
	}
}

func TestManager_MigratesPartialSecrets(t *testing.T) {
	tmpDir := t.TempDir()
	secretsPath := filepath.Join(tmpDir, "secrets.json")

	// Write a partial secrets file (simulating old version)
	partialSecrets := `{
		"listServiceToken": "existing-token"
	}`
	if err := os.WriteFile(secretsPath, []byte(partialSecrets), 0600); err != nil {
		t.Fatalf("failed to write partial secrets: %v", err)
	}

	m := NewManager(secretsPath)
	if err := m.Load(); err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	// Existing secret should be preserved
	if m.GetListServiceToken() != "existing-token" {
		t.Errorf("expected 'existing-token', got '%s'", m.GetListServiceToken())
	}

	// Missing generated secrets should be filled in
	if m.GetLaunchTokenSecret() == "" {
		t.Error("launchTokenSecret not migrated")
	}
}

func TestManager_FilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	secretsPath := filepath.Join(tmpDir, "secrets.json")

	m := NewManager(secretsPath)
	if err := m.Load(); err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	info, err := os.Stat(secretsPath)
	if err != nil {
		t.Fatalf("failed to stat secrets file: %v", err)
	}

	// File should be owner read/write only (0600)
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("expected permissions 0600, got %o", perm)
	}
}
