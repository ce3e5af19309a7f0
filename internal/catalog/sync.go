package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mewada-madhusudan/cuddly-disco/internal/listsvc"
	"github.com/mewada-madhusudan/cuddly-disco/internal/resilience"
)

// Source identifies where a sync result came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceSnapshot Source = "snapshot"
	SourceEmpty    Source = "empty"
)

// Result is the outcome of a catalog sync. Entries is never nil; Reason is a
// human-readable explanation carried alongside the data whenever the result
// is degraded, so callers can show it without inspecting errors.
type Result struct {
	Entries  []Entry   `json:"entries"`
	Source   Source    `json:"source"`
	Reason   string    `json:"reason,omitempty"`
	SyncedAt time.Time `json:"syncedAt"`
}

// Syncer fetches the catalog for one user, keeping the local snapshot current
// and falling back to it when the list service is unreachable.
type Syncer struct {
	service  listsvc.Service
	snapshot *SnapshotStore
	list     string
	userSID  string
	logger   *slog.Logger
}

// NewSyncer creates a Syncer for the given user id.
func NewSyncer(service listsvc.Service, snapshot *SnapshotStore, list, userSID string, logger *slog.Logger) *Syncer {
	return &Syncer{
		service:  service,
		snapshot: snapshot,
		list:     list,
		userSID:  userSID,
		logger:   logger,
	}
}

// Sync fetches the entries visible to the user. It is total: every failure
// mode degrades to a result instead of an error.
//
// On a successful fetch the visible subset is saved as the new snapshot and
// returned with SourceRemote. When the fetch fails the last snapshot is
// returned with SourceSnapshot and a reason. When both fail the result is
// empty with SourceEmpty; Columns() still describes its shape.
func (s *Syncer) Sync(ctx context.Context) Result {
	fetched, err := resilience.Fetch(ctx, s.logger, "catalog",
		s.fetchRemote,
		func(ctx context.Context) ([]Entry, error) { return s.snapshot.Load() },
	)

	now := time.Now()

	if err != nil {
		s.logger.Error("catalog unavailable and no local backup", "error", err)
		return Result{
			Entries:  []Entry{},
			Source:   SourceEmpty,
			Reason:   "No local backup available. Please check your connection.",
			SyncedAt: now,
		}
	}

	if fetched.Fallback {
		s.logger.Warn("serving catalog from local backup", "entries", len(fetched.Value), "error", fetched.PrimaryErr)
		return Result{
			Entries:  fetched.Value,
			Source:   SourceSnapshot,
			Reason:   fmt.Sprintf("Loaded from local backup due to connection error: %v", fetched.PrimaryErr),
			SyncedAt: now,
		}
	}

	reason := ""
	if saveErr := s.snapshot.Save(fetched.Value); saveErr != nil {
		// A stale snapshot only matters on the next offline start, so a
		// failed save degrades the reason, not the result.
		s.logger.Error("failed to save catalog snapshot", "error", saveErr)
		reason = fmt.Sprintf("Catalog refreshed, but saving the local backup failed: %v", saveErr)
	}

	s.logger.Info("catalog synced", "entries", len(fetched.Value), "user", s.userSID)
	return Result{
		Entries:  fetched.Value,
		Source:   SourceRemote,
		Reason:   reason,
		SyncedAt: now,
	}
}

// fetchRemote pulls all catalog rows with bounded retries and reduces them to
// the subset visible to the user.
func (s *Syncer) fetchRemote(ctx context.Context) ([]Entry, error) {
	var rows []listsvc.Row
	op := func() error {
		var err error
		rows, err = s.service.Items(ctx, s.list, nil)
		return err
	}
	if err := resilience.Retry(ctx, s.logger, "catalog fetch", op); err != nil {
		return nil, err
	}

	entries := ParseEntries(s.logger, rows)
	return VisibleTo(entries, s.userSID), nil
}
