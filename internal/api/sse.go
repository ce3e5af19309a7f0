package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mewada-madhusudan/cuddly-disco/internal/system"
)

// handleSystemStatusStream streams system stats via SSE
func (s *Server) handleSystemStatusStream(w http.ResponseWriter, r *http.Request) {
	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Make sure the response writer supports flushing
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Matches the collector cadence; ticking faster only re-sends the cache
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	ctx := r.Context()

	s.logger.Info("SSE client connected for system stats")

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			s.logger.Info("SSE client disconnected")
			return

		case <-ticker.C:
			stats, err := system.GetStats()
			if err != nil {
				s.logger.Error("failed to get system stats for SSE", "error", err)
				continue
			}

			data, err := json.Marshal(stats)
			if err != nil {
				s.logger.Error("failed to marshal stats for SSE", "error", err)
				continue
			}

			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// handleEvents streams catalog refreshes, registry changes and transfer
// progress via SSE
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	s.logger.Info("SSE client connected for agent events")

	// Subscribe before sending the initial snapshot so nothing is missed
	// in between
	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	// Initial snapshot: current registry and last catalog sync
	apps, err := s.appStore.GetAll()
	if err != nil {
		s.logger.Error("failed to get apps for SSE", "error", err)
	} else {
		s.writeEvent(w, flusher, Event{Type: EventApps, Apps: apps})
	}
	if latest := s.refresher.Latest(); !latest.SyncedAt.IsZero() {
		s.writeEvent(w, flusher, Event{Type: EventCatalog, Catalog: &latest})
	}

	// Stream updates
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("SSE client disconnected from agent events")
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			s.writeEvent(w, flusher, ev)
		}
	}
}

func (s *Server) writeEvent(w http.ResponseWriter, flusher http.Flusher, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("failed to marshal event for SSE", "error", err)
		return
	}

	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
