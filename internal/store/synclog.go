package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SyncRecord is one recorded catalog sync outcome.
type SyncRecord struct {
	ID         int       `json:"id"`
	UserSID    string    `json:"user_sid"`
	Source     string    `json:"source"`
	EntryCount int       `json:"entry_count"`
	Reason     string    `json:"reason,omitempty"`
	SyncedAt   time.Time `json:"synced_at"`
}

// SyncLogStore records catalog sync outcomes for a single user
type SyncLogStore struct {
	db      *sql.DB
	userSID string
}

// NewSyncLogStore creates a sync log store scoped to the given user
func NewSyncLogStore(db *sql.DB, userSID string) *SyncLogStore {
	return &SyncLogStore{db: db, userSID: userSID}
}

// Record stores one sync outcome
func (s *SyncLogStore) Record(source string, entryCount int, reason string) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_history (user_sid, source, entry_count, reason)
		VALUES ($1, $2, $3, $4)
	`, s.userSID, source, entryCount, reason)
	if err != nil {
		return fmt.Errorf("failed to record sync: %w", err)
	}
	return nil
}

// Latest returns the most recent sync outcome, or nil when none is recorded
func (s *SyncLogStore) Latest() (*SyncRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, user_sid, source, entry_count, reason, synced_at
		FROM sync_history
		WHERE user_sid = $1
		ORDER BY synced_at DESC, id DESC
		LIMIT 1
	`, s.userSID)

	record, err := scanSyncRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sync: %w", err)
	}

	return record, nil
}

// Recent returns up to limit sync outcomes, newest first
func (s *SyncLogStore) Recent(limit int) ([]*SyncRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, user_sid, source, entry_count, reason, synced_at
		FROM sync_history
		WHERE user_sid = $1
		ORDER BY synced_at DESC, id DESC
		LIMIT $2
	`, s.userSID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync history: %w", err)
	}
	defer rows.Close()

	records := []*SyncRecord{}
	for rows.Next() {
		record, err := scanSyncRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync record: %w", err)
		}
		records = append(records, record)
	}

	return records, nil
}

func scanSyncRecord(sc rowScanner) (*SyncRecord, error) {
	var record SyncRecord
	err := sc.Scan(
		&record.ID,
		&record.UserSID,
		&record.Source,
		&record.EntryCount,
		&record.Reason,
		&record.SyncedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
