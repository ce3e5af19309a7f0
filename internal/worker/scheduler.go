package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
)

// refreshRunner is the part of Refresher the scheduler drives.
type refreshRunner interface {
	Refresh(ctx context.Context) catalog.Result
}

// RefreshScheduler re-runs the catalog sync on an interval. A manual trigger
// resets the interval so a user-initiated refresh is not immediately followed
// by a scheduled one.
type RefreshScheduler struct {
	interval  time.Duration
	refresher refreshRunner
	logger    *slog.Logger
	triggerCh chan struct{}
	stopCh    chan struct{}
	stoppedCh chan struct{}
	stopOnce  sync.Once
}

// NewRefreshScheduler creates a scheduler driving the given refresher.
func NewRefreshScheduler(refresher refreshRunner, interval time.Duration, logger *slog.Logger) *RefreshScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &RefreshScheduler{
		interval:  interval,
		refresher: refresher,
		logger:    logger,
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start begins the scheduling goroutine. Stop must only be called after Start.
func (s *RefreshScheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *RefreshScheduler) loop(ctx context.Context) {
	defer close(s.stoppedCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.logger.Debug("scheduled catalog refresh")
			s.refresher.Refresh(ctx)
		case <-s.triggerCh:
			s.logger.Debug("manual catalog refresh")
			s.refresher.Refresh(ctx)
			ticker.Reset(s.interval)
		}
	}
}

// Trigger requests an immediate refresh. It never blocks; a trigger while one
// is already pending is a no-op.
func (s *RefreshScheduler) Trigger() {
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

// Stop halts the scheduling goroutine and waits for it to exit.
func (s *RefreshScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.stoppedCh
}
