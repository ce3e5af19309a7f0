package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SnapshotStore persists the last successfully fetched catalog to a local
// YAML file. The file is overwritten whole on every save; it is only ever
// read when the remote catalog cannot be reached.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a snapshot store backed by the given file path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

type snapshotFile struct {
	SavedAt time.Time `yaml:"savedAt"`
	Entries []Entry   `yaml:"entries"`
}

// Save overwrites the snapshot with the given entries.
func (s *SnapshotStore) Save(entries []Entry) error {
	data, err := yaml.Marshal(snapshotFile{
		SavedAt: time.Now().UTC(),
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

// Load reads the snapshot entries. It returns an error when no snapshot has
// been saved yet or the file cannot be parsed.
func (s *SnapshotStore) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var file snapshotFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	return file.Entries, nil
}

// SavedAt returns when the snapshot was last written, or the zero time when
// no snapshot exists.
func (s *SnapshotStore) SavedAt() time.Time {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return time.Time{}
	}
	var file snapshotFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return time.Time{}
	}
	return file.SavedAt
}

// Path returns the snapshot file path.
func (s *SnapshotStore) Path() string {
	return s.path
}
