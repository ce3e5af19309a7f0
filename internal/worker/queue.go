package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
)

// OperationQueue serializes install/update/uninstall operations so two
// transfers never fight over the same install directory. Concurrent requests
// are batched and duplicate requests for the same application are coalesced.
type OperationQueue struct {
	batchWait time.Duration
	requestCh chan QueuedOperation
	stopCh    chan struct{}
	stoppedCh chan struct{}
	executor  OperationExecutor
	logger    *slog.Logger
}

// QueuedOperation represents a single request waiting in the queue.
type QueuedOperation struct {
	Type     OperationType
	Entry    catalog.Entry
	ResultCh chan OperationResult
	Ctx      context.Context
}

// OperationType distinguishes the queued operations.
type OperationType int

const (
	OpInstall OperationType = iota
	OpUpdate
	OpUninstall
)

func (t OperationType) String() string {
	switch t {
	case OpInstall:
		return "install"
	case OpUpdate:
		return "update"
	case OpUninstall:
		return "uninstall"
	default:
		return "unknown"
	}
}

// OperationResult contains the result of a queued operation.
type OperationResult struct {
	Result *Result
	Err    error
}

// QueueConfig configures the operation queue.
type QueueConfig struct {
	BatchWait time.Duration // How long to collect requests before processing (default: 1s)
}

// DefaultQueueConfig returns sensible defaults for the queue.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		BatchWait: time.Second,
	}
}

// NewOperationQueue creates a new operation queue.
func NewOperationQueue(executor OperationExecutor, cfg QueueConfig, logger *slog.Logger) *OperationQueue {
	if cfg.BatchWait == 0 {
		cfg.BatchWait = DefaultQueueConfig().BatchWait
	}

	return &OperationQueue{
		batchWait: cfg.BatchWait,
		requestCh: make(chan QueuedOperation, 100), // Buffer to avoid blocking callers
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
		executor:  executor,
		logger:    logger,
	}
}

// Start begins the queue worker goroutine.
func (q *OperationQueue) Start() {
	go q.worker()
}

// Stop signals the worker to stop and waits for it to finish.
func (q *OperationQueue) Stop() {
	close(q.stopCh)
	<-q.stoppedCh
}

// EnqueueInstall adds an install request to the queue and waits for the result.
func (q *OperationQueue) EnqueueInstall(ctx context.Context, entry catalog.Entry) (*Result, error) {
	return q.enqueue(ctx, OpInstall, entry)
}

// EnqueueUpdate adds an update request to the queue and waits for the result.
func (q *OperationQueue) EnqueueUpdate(ctx context.Context, entry catalog.Entry) (*Result, error) {
	return q.enqueue(ctx, OpUpdate, entry)
}

// EnqueueUninstall adds an uninstall request to the queue and waits for the result.
func (q *OperationQueue) EnqueueUninstall(ctx context.Context, entry catalog.Entry) (*Result, error) {
	return q.enqueue(ctx, OpUninstall, entry)
}

func (q *OperationQueue) enqueue(ctx context.Context, opType OperationType, entry catalog.Entry) (*Result, error) {
	resultCh := make(chan OperationResult, 1)

	op := QueuedOperation{
		Type:     opType,
		Entry:    entry,
		ResultCh: resultCh,
		Ctx:      ctx,
	}

	q.logger.Info("enqueueing request", "type", opType, "app", entry.Name)

	select {
	case q.requestCh <- op:
		q.logger.Debug("request queued", "type", opType, "app", entry.Name)
	case <-ctx.Done():
		q.logger.Warn("request cancelled before queuing", "type", opType, "app", entry.Name, "error", ctx.Err())
		return nil, ctx.Err()
	case <-q.stopCh:
		q.logger.Warn("request rejected, queue stopping", "type", opType, "app", entry.Name)
		return nil, context.Canceled
	}

	select {
	case result := <-resultCh:
		if result.Err != nil {
			q.logger.Error("operation completed with error", "type", opType, "app", entry.Name, "error", result.Err)
		} else {
			q.logger.Info("operation completed", "type", opType, "app", entry.Name)
		}
		return result.Result, result.Err
	case <-ctx.Done():
		q.logger.Warn("request cancelled while waiting", "type", opType, "app", entry.Name, "error", ctx.Err())
		return nil, ctx.Err()
	}
}

// worker is the main loop that processes batched operations.
func (q *OperationQueue) worker() {
	defer close(q.stoppedCh)

	for {
		select {
		case <-q.stopCh:
			// Drain any remaining requests and cancel them
			q.drainPending()
			return
		case op := <-q.requestCh:
			// Got first request of a batch - collect more
			batch := q.collectBatch(op)
			if len(batch) > 0 {
				q.executeBatch(batch)
			}
		}
	}
}

// collectBatch waits for the batch window and collects all pending operations.
func (q *OperationQueue) collectBatch(first QueuedOperation) []QueuedOperation {
	batch := []QueuedOperation{first}

	timer := time.NewTimer(q.batchWait)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			q.logger.Debug("batch collection complete", "collected", len(batch))
			return q.deduplicateBatch(batch)
		case op := <-q.requestCh:
			q.logger.Debug("adding to batch", "app", op.Entry.Name, "type", op.Type, "batchSize", len(batch)+1)
			batch = append(batch, op)
		case <-q.stopCh:
			q.logger.Warn("batch collection interrupted by shutdown", "collected", len(batch))
			// Shutting down - cancel all collected operations
			for _, op := range batch {
				op.ResultCh <- OperationResult{Err: context.Canceled}
			}
			return nil
		}
	}
}

// deduplicateBatch coalesces operations targeting the same application.
// The last operation wins; every original caller is notified with the outcome
// of the operation that actually ran.
func (q *OperationQueue) deduplicateBatch(batch []QueuedOperation) []QueuedOperation {
	type appState struct {
		lastOp    OperationType
		entry     catalog.Entry
		resultChs []chan OperationResult
		ctx       context.Context
	}

	apps := make(map[string]*appState)

	for _, op := range batch {
		state, exists := apps[op.Entry.Name]
		if !exists {
			state = &appState{ctx: op.Ctx}
			apps[op.Entry.Name] = state
		}

		state.resultChs = append(state.resultChs, op.ResultCh)
		state.lastOp = op.Type
		state.entry = op.Entry
	}

	// Build deduplicated batch
	var result []QueuedOperation
	for _, state := range apps {
		// Create a wrapper to notify all original result channels
		wrapperCh := make(chan OperationResult, 1)
		go func(resultChs []chan OperationResult, wrapperCh chan OperationResult) {
			result := <-wrapperCh
			for _, ch := range resultChs {
				ch <- result
			}
		}(state.resultChs, wrapperCh)

		result = append(result, QueuedOperation{
			Type:     state.lastOp,
			Entry:    state.entry,
			ResultCh: wrapperCh,
			Ctx:      state.ctx,
		})
	}

	if len(batch) != len(result) {
		q.logger.Info("deduplicated batch operations",
			"original", len(batch),
			"deduplicated", len(result))
	}

	return result
}

// executeBatch processes all operations in the batch sequentially.
func (q *OperationQueue) executeBatch(batch []QueuedOperation) {
	// Separate uninstalls so they run first (in case an app is being reinstalled)
	var uninstalls, installs []QueuedOperation
	for _, op := range batch {
		if op.Type == OpUninstall {
			uninstalls = append(uninstalls, op)
		} else {
			installs = append(installs, op)
		}
	}

	q.logger.Info("executing batch",
		"totalOperations", len(batch),
		"installs", len(installs),
		"uninstalls", len(uninstalls))

	for _, op := range uninstalls {
		q.execute(op)
	}
	for _, op := range installs {
		q.execute(op)
	}

	q.logger.Info("batch execution complete", "totalOperations", len(batch))
}

// execute runs a single operation and delivers its result.
func (q *OperationQueue) execute(op QueuedOperation) {
	var result *Result
	var err error

	switch op.Type {
	case OpInstall:
		result, err = q.executor.Install(op.Ctx, op.Entry)
	case OpUpdate:
		result, err = q.executor.Update(op.Ctx, op.Entry)
	case OpUninstall:
		result, err = q.executor.Uninstall(op.Ctx, op.Entry)
	}

	op.ResultCh <- OperationResult{Result: result, Err: err}
}

// drainPending cancels all pending operations during shutdown.
func (q *OperationQueue) drainPending() {
	for {
		select {
		case op := <-q.requestCh:
			op.ResultCh <- OperationResult{Err: context.Canceled}
		default:
			return
		}
	}
}
