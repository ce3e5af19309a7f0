package worker

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
	"github.com/mewada-madhusudan/cuddly-disco/internal/store"
)

// CatalogSyncer produces the user's current catalog view.
// This interface enables mocking for testing.
type CatalogSyncer interface {
	Sync(ctx context.Context) catalog.Result
}

// Refresher runs catalog syncs and caches the latest result for the API.
type Refresher struct {
	syncer    CatalogSyncer
	syncLog   store.SyncLogInterface
	logger    *slog.Logger
	mu        sync.RWMutex
	latest    catalog.Result
	onRefresh func(catalog.Result)
}

// NewRefresher creates a refresher. syncLog may be nil when sync outcomes
// should not be persisted.
func NewRefresher(syncer CatalogSyncer, syncLog store.SyncLogInterface, logger *slog.Logger) *Refresher {
	return &Refresher{
		syncer:  syncer,
		syncLog: syncLog,
		logger:  logger,
	}
}

// SetOnRefresh registers a callback invoked after every completed sync.
func (r *Refresher) SetOnRefresh(fn func(catalog.Result)) {
	r.mu.Lock()
	r.onRefresh = fn
	r.mu.Unlock()
}

// Refresh performs one sync, persists the outcome, and publishes it.
func (r *Refresher) Refresh(ctx context.Context) catalog.Result {
	result := r.syncer.Sync(ctx)

	r.mu.Lock()
	r.latest = result
	fn := r.onRefresh
	r.mu.Unlock()

	if r.syncLog != nil {
		if err := r.syncLog.Record(string(result.Source), len(result.Entries), result.Reason); err != nil {
			r.logger.Warn("failed to record sync outcome", "error", err)
		}
	}

	if fn != nil {
		fn(result)
	}
	return result
}

// Latest returns the most recent sync result. A zero SyncedAt means no sync
// has run yet.
func (r *Refresher) Latest() catalog.Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Entry looks up an entry by name in the latest sync result.
func (r *Refresher) Entry(name string) (catalog.Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.latest.Entries {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return catalog.Entry{}, false
}
