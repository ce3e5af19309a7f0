package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
	"github.com/mewada-madhusudan/cuddly-disco/internal/store"
)

type fakeSyncer struct {
	mu     sync.Mutex
	calls  int
	result catalog.Result
}

func (f *fakeSyncer) Sync(ctx context.Context) catalog.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result
}

func (f *fakeSyncer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSyncLog struct {
	mu      sync.Mutex
	records []store.SyncRecord
}

func (f *fakeSyncLog) Record(source string, entryCount int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, store.SyncRecord{Source: source, EntryCount: entryCount, Reason: reason})
	return nil
}

func (f *fakeSyncLog) Latest() (*store.SyncRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) == 0 {
		return nil, nil
	}
	last := f.records[len(f.records)-1]
	return &last, nil
}

func (f *fakeSyncLog) Recent(limit int) ([]*store.SyncRecord, error) {
	return nil, nil
}

func syncResult(source catalog.Source, names ...string) catalog.Result {
	var entries []catalog.Entry
	for _, name := range names {
		entries = append(entries, catalog.Entry{Name: name})
	}
	return catalog.Result{
		Entries:  entries,
		Source:   source,
		SyncedAt: time.Now(),
	}
}

func TestRefresherRefresh(t *testing.T) {
	syncer := &fakeSyncer{result: syncResult(catalog.SourceRemote, "Budget Tracker", "RiskView")}
	syncLog := &fakeSyncLog{}
	refresher := NewRefresher(syncer, syncLog, discardLogger())

	var published catalog.Result
	refresher.SetOnRefresh(func(result catalog.Result) { published = result })

	result := refresher.Refresh(context.Background())

	assert.Len(t, result.Entries, 2)
	assert.Equal(t, catalog.SourceRemote, result.Source)
	assert.Equal(t, result, refresher.Latest())
	assert.Equal(t, result, published)

	record, err := syncLog.Latest()
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "remote", record.Source)
	assert.Equal(t, 2, record.EntryCount)
}

func TestRefresherLatestBeforeFirstSync(t *testing.T) {
	refresher := NewRefresher(&fakeSyncer{}, nil, discardLogger())

	latest := refresher.Latest()
	assert.True(t, latest.SyncedAt.IsZero())
	assert.Empty(t, latest.Entries)
}

func TestRefresherEntryLookup(t *testing.T) {
	syncer := &fakeSyncer{result: syncResult(catalog.SourceSnapshot, "Budget Tracker")}
	refresher := NewRefresher(syncer, nil, discardLogger())
	refresher.Refresh(context.Background())

	entry, ok := refresher.Entry("budget tracker")
	require.True(t, ok)
	assert.Equal(t, "Budget Tracker", entry.Name)

	_, ok = refresher.Entry("Unknown")
	assert.False(t, ok)
}
