package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
)

// mockExecutor is a minimal executor for testing the queue.
type mockExecutor struct {
	installCalls   atomic.Int32
	updateCalls    atomic.Int32
	uninstallCalls atomic.Int32
	delay          time.Duration
	mu             sync.Mutex
	executed       []string
	failures       map[string]error
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{failures: make(map[string]error)}
}

func (m *mockExecutor) run(action string, entry catalog.Entry) (*Result, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	m.executed = append(m.executed, action+":"+entry.Name)
	err := m.failures[entry.Name]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &Result{App: entry.Name, Action: action}, nil
}

func (m *mockExecutor) Install(ctx context.Context, entry catalog.Entry) (*Result, error) {
	m.installCalls.Add(1)
	return m.run("install", entry)
}

func (m *mockExecutor) Update(ctx context.Context, entry catalog.Entry) (*Result, error) {
	m.updateCalls.Add(1)
	return m.run("update", entry)
}

func (m *mockExecutor) Uninstall(ctx context.Context, entry catalog.Entry) (*Result, error) {
	m.uninstallCalls.Add(1)
	return m.run("uninstall", entry)
}

func (m *mockExecutor) executionOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.executed...)
}

func startQueue(t *testing.T, mock *mockExecutor, batchWait time.Duration) *OperationQueue {
	t.Helper()
	queue := NewOperationQueue(mock, QueueConfig{BatchWait: batchWait}, discardLogger())
	queue.Start()
	t.Cleanup(queue.Stop)
	return queue
}

func TestOperationQueue_SingleInstall(t *testing.T) {
	mock := newMockExecutor()
	queue := startQueue(t, mock, 10*time.Millisecond)

	result, err := queue.EnqueueInstall(context.Background(), catalog.Entry{Name: "Budget Tracker"})
	require.NoError(t, err)

	assert.Equal(t, "Budget Tracker", result.App)
	assert.Equal(t, "install", result.Action)
	assert.Equal(t, int32(1), mock.installCalls.Load())
}

func TestOperationQueue_BatchesIndependentApps(t *testing.T) {
	mock := newMockExecutor()
	queue := startQueue(t, mock, 50*time.Millisecond)

	var wg sync.WaitGroup
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := queue.EnqueueInstall(context.Background(), catalog.Entry{Name: name})
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	assert.Equal(t, int32(3), mock.installCalls.Load())
}

func TestOperationQueue_DeduplicatesSameApp(t *testing.T) {
	mock := newMockExecutor()
	queue := startQueue(t, mock, 100*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := queue.EnqueueInstall(context.Background(), catalog.Entry{Name: "Budget Tracker"})
			assert.NoError(t, err)
			assert.Equal(t, "Budget Tracker", result.App)
		}()
	}
	wg.Wait()

	// Three concurrent requests for the same app run once
	assert.Equal(t, int32(1), mock.installCalls.Load())
}

func TestOperationQueue_LastOperationWins(t *testing.T) {
	mock := newMockExecutor()
	queue := startQueue(t, mock, 150*time.Millisecond)

	var wg sync.WaitGroup
	results := make([]*Result, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		result, err := queue.EnqueueInstall(context.Background(), catalog.Entry{Name: "Budget Tracker"})
		assert.NoError(t, err)
		results[0] = result
	}()

	time.Sleep(30 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		result, err := queue.EnqueueUninstall(context.Background(), catalog.Entry{Name: "Budget Tracker"})
		assert.NoError(t, err)
		results[1] = result
	}()
	wg.Wait()

	// The uninstall arrived last, so only it ran; both callers see its result
	assert.Equal(t, int32(0), mock.installCalls.Load())
	assert.Equal(t, int32(1), mock.uninstallCalls.Load())
	require.NotNil(t, results[0])
	require.NotNil(t, results[1])
	assert.Equal(t, "uninstall", results[0].Action)
	assert.Equal(t, "uninstall", results[1].Action)
}

func TestOperationQueue_UninstallsRunFirst(t *testing.T) {
	mock := newMockExecutor()
	queue := startQueue(t, mock, 100*time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := queue.EnqueueInstall(context.Background(), catalog.Entry{Name: "Alpha"})
		assert.NoError(t, err)
	}()
	time.Sleep(20 * time.Millisecond)
	go func() {
		defer wg.Done()
		_, err := queue.EnqueueUninstall(context.Background(), catalog.Entry{Name: "Beta"})
		assert.NoError(t, err)
	}()
	wg.Wait()

	assert.Equal(t, []string{"uninstall:Beta", "install:Alpha"}, mock.executionOrder())
}

func TestOperationQueue_PropagatesExecutorError(t *testing.T) {
	mock := newMockExecutor()
	mock.failures["Broken"] = errors.New("transfer failed")
	queue := startQueue(t, mock, 10*time.Millisecond)

	_, err := queue.EnqueueInstall(context.Background(), catalog.Entry{Name: "Broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transfer failed")
}

func TestOperationQueue_UpdateRoutesToExecutor(t *testing.T) {
	mock := newMockExecutor()
	queue := startQueue(t, mock, 10*time.Millisecond)

	result, err := queue.EnqueueUpdate(context.Background(), catalog.Entry{Name: "RiskView"})
	require.NoError(t, err)

	assert.Equal(t, "update", result.Action)
	assert.Equal(t, int32(1), mock.updateCalls.Load())
	assert.Equal(t, int32(0), mock.installCalls.Load())
}
