package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mewada-madhusudan/cuddly-disco/internal/admin"
	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
	"github.com/mewada-madhusudan/cuddly-disco/internal/install"
	"github.com/mewada-madhusudan/cuddly-disco/internal/launcher"
	"github.com/mewada-madhusudan/cuddly-disco/internal/store"
	"github.com/mewada-madhusudan/cuddly-disco/internal/system"
	"github.com/mewada-madhusudan/cuddly-disco/internal/worker"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Catalog endpoints
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", s.handleCatalog)
			r.Post("/refresh", s.handleRefreshCatalog)
			r.Get("/events", s.handleEvents)
		})

		// App lifecycle endpoints (use the operation queue)
		r.Route("/apps", func(r chi.Router) {
			r.Get("/installed", s.handleListInstalledApps)
			r.Post("/{name}/install", s.handleInstall)
			r.Post("/{name}/update", s.handleUpdate)
			r.Post("/{name}/uninstall", s.handleUninstall)
			r.Post("/{name}/launch", s.handleLaunch)
		})

		// Identity endpoints
		r.Get("/user", s.handleUser)

		// Admin endpoints; everything below /admin except the status probe
		// requires catalog management rights
		r.Route("/admin", func(r chi.Router) {
			r.Get("/status", s.handleAdminStatus)

			r.Group(func(r chi.Router) {
				r.Use(s.adminMiddleware)
				r.Get("/fields", s.handleAdminFields)
				r.Get("/solutions", s.handleListSolutions)
				r.Post("/solutions", s.handleAddSolution)
				r.Put("/solutions/{id}", s.handleUpdateSolution)
				r.Get("/solutions/{id}/access", s.handleAccessList)
				r.Post("/solutions/{id}/access", s.handleGrantAccess)
				r.Delete("/solutions/{id}/access/{sid}", s.handleRevokeAccess)
			})
		})

		// System endpoints
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
			r.Get("/status/stream", s.handleSystemStatusStream)
			r.Get("/storage", s.handleStorage)
		})

		// Sync audit trail
		r.Get("/sync/history", s.handleSyncHistory)
	})
}

// handleHealth reports liveness. Database connectivity is included so a
// front-end can tell a dead agent from a degraded one.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := s.db.Ping(); err != nil {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": status,
	})
}

// CatalogTile is one catalog entry decorated with everything a front-end
// needs to render it: computed lifecycle state, button label, installed
// version and the note shown for expired entries.
type CatalogTile struct {
	catalog.Entry
	State            string `json:"state"`
	Label            string `json:"label"`
	Note             string `json:"note,omitempty"`
	Installed        bool   `json:"installed"`
	InstalledVersion string `json:"installedVersion,omitempty"`
}

// handleCatalog returns the catalog entries visible to the user, sorted and
// decorated with their tile state. The first request triggers a sync if none
// has run yet.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	result := s.refresher.Latest()
	if result.SyncedAt.IsZero() {
		result = s.refresher.Refresh(r.Context())
	}

	// Copy before sorting; the slice is shared with other readers.
	entries := make([]catalog.Entry, len(result.Entries))
	copy(entries, result.Entries)

	if q := r.URL.Query().Get("q"); q != "" {
		entries = catalog.FilterByName(entries, q)
	}

	now := time.Now()
	s.rules.Sort(entries, now)

	tiles := make([]CatalogTile, 0, len(entries))
	for _, e := range entries {
		installed := s.layout.Installed(e)
		version := ""
		if installed {
			version = s.layout.InstalledVersion(e.Name)
		}

		state := s.rules.StateFor(e, now, installed, version)
		tile := CatalogTile{
			Entry:            e,
			State:            state.String(),
			Label:            catalog.ButtonLabel(e, state),
			Installed:        installed,
			InstalledVersion: version,
		}
		if state == catalog.StateExpired {
			tile.Note = catalog.ExpiredNote(e)
		}
		tiles = append(tiles, tile)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries":  tiles,
		"source":   result.Source,
		"reason":   result.Reason,
		"syncedAt": result.SyncedAt,
	})
}

// handleRefreshCatalog runs a catalog sync now and reports where the data
// came from
func (s *Server) handleRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	result := s.refresher.Refresh(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "catalog refreshed",
		"source":   result.Source,
		"entries":  len(result.Entries),
		"reason":   result.Reason,
		"syncedAt": result.SyncedAt,
	})
}

// handleListInstalledApps returns the install registry contents
// Uses the same data source as SSE for consistency
func (s *Server) handleListInstalledApps(w http.ResponseWriter, r *http.Request) {
	apps, err := s.appStore.GetAll()
	if err != nil {
		s.logger.Error("failed to get apps", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get apps")
		return
	}

	respondJSON(w, http.StatusOK, apps)
}

// appName reads the app name path parameter. Names usually contain spaces,
// so clients send them percent-escaped and the router may hand back the raw
// segment.
func appName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

// handleInstall installs an app through the operation queue
func (s *Server) handleInstall(w http.ResponseWriter, r *http.Request) {
	name := appName(r)

	entry, ok := s.refresher.Entry(name)
	if !ok {
		respondError(w, http.StatusNotFound, "app not found in catalog")
		return
	}
	if s.rules.IsExpired(entry, time.Now()) {
		respondError(w, http.StatusForbidden, catalog.ExpiredNote(entry))
		return
	}

	result, err := s.queue.EnqueueInstall(r.Context(), entry)
	if err != nil {
		s.logger.Error("install failed", "app", name, "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleUpdate reinstalls an app at the catalog's current version
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	name := appName(r)

	entry, ok := s.refresher.Entry(name)
	if !ok {
		respondError(w, http.StatusNotFound, "app not found in catalog")
		return
	}
	if s.rules.IsExpired(entry, time.Now()) {
		respondError(w, http.StatusForbidden, catalog.ExpiredNote(entry))
		return
	}

	result, err := s.queue.EnqueueUpdate(r.Context(), entry)
	if err != nil {
		s.logger.Error("update failed", "app", name, "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleUninstall removes an app. The operation is destructive, so the body
// must carry an explicit confirmation.
func (s *Server) handleUninstall(w http.ResponseWriter, r *http.Request) {
	name := appName(r)

	var req struct {
		Confirm bool `json:"confirm"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if !req.Confirm {
		respondError(w, http.StatusBadRequest, "uninstall requires confirmation")
		return
	}

	entry, ok := s.refresher.Entry(name)
	if !ok {
		// Removing something the catalog no longer lists is still valid;
		// the registry decides whether it exists.
		entry = catalog.Entry{Name: name}
	}

	result, err := s.queue.EnqueueUninstall(r.Context(), entry)
	if err != nil {
		s.logger.Error("uninstall failed", "app", name, "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleLaunch starts an installed app
func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	name := appName(r)

	entry, ok := s.refresher.Entry(name)
	if !ok {
		respondError(w, http.StatusNotFound, "app not found in catalog")
		return
	}

	result, err := s.launcher.Launch(r.Context(), entry)
	if err != nil {
		s.logger.Error("launch refused", "app", name, "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleUser returns the current user's profile. Resolution never fails; an
// unreachable directory degrades to a placeholder profile.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.identity.Profile(r.Context()))
}

// handleSystemStatus returns system metrics
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := system.GetStats()
	if err != nil {
		s.logger.Error("failed to get system stats", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get system stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// handleStorage returns install directory storage usage
func (s *Server) handleStorage(w http.ResponseWriter, r *http.Request) {
	storage, err := system.GetStorageStats(s.installRoot)
	if err != nil {
		s.logger.Error("failed to get storage stats", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get storage stats")
		return
	}

	respondJSON(w, http.StatusOK, storage)
}

// handleSyncHistory returns recent catalog sync outcomes, newest first
func (s *Server) handleSyncHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.syncLog.Recent(limit)
	if err != nil {
		s.logger.Error("failed to get sync history", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get sync history")
		return
	}
	if records == nil {
		records = []*store.SyncRecord{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"history": records,
	})
}

// Helper functions for JSON responses

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps domain error kinds to HTTP status codes so clients can tell
// refusals from faults.
func statusFor(err error) int {
	switch {
	case admin.IsValidation(err):
		return http.StatusBadRequest
	case worker.IsNotInstalled(err), launcher.IsNotInstalled(err), admin.IsSolutionNotFound(err):
		return http.StatusNotFound
	case admin.IsNotAuthorized(err), launcher.IsExpired(err):
		return http.StatusForbidden
	case install.IsSourceMissing(err):
		return http.StatusBadGateway
	case install.IsInsufficientSpace(err):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}
