package api

import (
	"log/slog"
	"sync"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
	"github.com/mewada-madhusudan/cuddly-disco/internal/store"
)

// Event types carried on the SSE stream.
const (
	EventApps     = "apps"
	EventCatalog  = "catalog"
	EventProgress = "progress"
)

// Event is one SSE payload. Type says which of the optional fields is set,
// so a single stream carries registry changes, catalog refreshes and
// transfer progress.
type Event struct {
	Type     string                `json:"type"`
	Apps     []*store.InstalledApp `json:"apps,omitempty"`
	Catalog  *catalog.Result       `json:"catalog,omitempty"`
	Progress *ProgressEvent        `json:"progress,omitempty"`
}

// ProgressEvent reports transfer progress of one running operation.
type ProgressEvent struct {
	App     string `json:"app"`
	Percent int    `json:"percent"`
}

// EventHub manages SSE subscribers for agent state updates
type EventHub struct {
	subscribers map[chan Event]struct{}
	mu          sync.RWMutex
	appStore    store.AppStoreInterface
	logger      *slog.Logger
}

// NewEventHub creates a new event hub
func NewEventHub(appStore store.AppStoreInterface, logger *slog.Logger) *EventHub {
	return &EventHub{
		subscribers: make(map[chan Event]struct{}),
		appStore:    appStore,
		logger:      logger,
	}
}

// Subscribe creates a new subscription channel for events
func (h *EventHub) Subscribe() chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)
	h.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription channel
func (h *EventHub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subscribers, ch)
	close(ch)
}

// BroadcastApps sends the current install registry to all subscribers
func (h *EventHub) BroadcastApps() {
	apps, err := h.appStore.GetAll()
	if err != nil {
		h.logger.Warn("failed to load apps for broadcast", "error", err)
		return
	}

	h.publish(Event{Type: EventApps, Apps: apps})
}

// BroadcastCatalog sends a finished catalog sync to all subscribers
func (h *EventHub) BroadcastCatalog(result catalog.Result) {
	h.publish(Event{Type: EventCatalog, Catalog: &result})
}

// BroadcastProgress sends one progress tick to all subscribers. It is called
// from the transfer loop and must never block.
func (h *EventHub) BroadcastProgress(app string, percent int) {
	h.publish(Event{Type: EventProgress, Progress: &ProgressEvent{App: app, Percent: percent}})
}

func (h *EventHub) publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			// Channel full, skip this subscriber
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (h *EventHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
