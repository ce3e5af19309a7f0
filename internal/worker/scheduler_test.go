package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
)

type countingRefresher struct {
	refreshes atomic.Int32
}

func (c *countingRefresher) Refresh(ctx context.Context) catalog.Result {
	c.refreshes.Add(1)
	return catalog.Result{}
}

func TestSchedulerRefreshesOnInterval(t *testing.T) {
	counter := &countingRefresher{}
	scheduler := NewRefreshScheduler(counter, 20*time.Millisecond, discardLogger())

	scheduler.Start(context.Background())
	time.Sleep(110 * time.Millisecond)
	scheduler.Stop()

	assert.GreaterOrEqual(t, counter.refreshes.Load(), int32(3))
}

func TestSchedulerManualTrigger(t *testing.T) {
	counter := &countingRefresher{}
	scheduler := NewRefreshScheduler(counter, time.Hour, discardLogger())

	scheduler.Start(context.Background())
	defer scheduler.Stop()

	scheduler.Trigger()

	assert.Eventually(t, func() bool {
		return counter.refreshes.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	counter := &countingRefresher{}
	scheduler := NewRefreshScheduler(counter, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}

func TestSchedulerTriggerNeverBlocks(t *testing.T) {
	scheduler := NewRefreshScheduler(&countingRefresher{}, time.Hour, discardLogger())

	// Not started; repeated triggers must not block
	for i := 0; i < 5; i++ {
		scheduler.Trigger()
	}
}
