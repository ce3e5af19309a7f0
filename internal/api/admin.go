package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mewada-madhusudan/cuddly-disco/internal/admin"
	"github.com/mewada-madhusudan/cuddly-disco/internal/identity"
)

type contextKey string

const adminContextKey contextKey = "adminStatus"

// adminCacheTTL bounds how long a resolved admin status is reused before the
// admins list is consulted again.
const adminCacheTTL = time.Minute

// adminStatus returns the cached admin status of the current user,
// refreshing it when stale.
func (s *Server) adminStatus(ctx context.Context) identity.AdminStatus {
	s.adminMu.Lock()
	defer s.adminMu.Unlock()

	if !s.adminFetched.IsZero() && time.Since(s.adminFetched) < adminCacheTTL {
		return s.adminCached
	}

	s.adminCached = s.identity.AdminStatus(ctx)
	s.adminFetched = time.Now()
	return s.adminCached
}

// adminMiddleware rejects requests from users without catalog management
// rights and stores the resolved status in the request context so handlers
// can read the managed LOBs without another lookup.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := s.adminStatus(r.Context())
		if !status.IsAdmin {
			respondError(w, http.StatusForbidden, "not a catalog administrator")
			return
		}

		ctx := context.WithValue(r.Context(), adminContextKey, status)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminFromContext retrieves the admin status stored by adminMiddleware
func adminFromContext(ctx context.Context) identity.AdminStatus {
	status, ok := ctx.Value(adminContextKey).(identity.AdminStatus)
	if !ok {
		return identity.AdminStatus{ManagedLOBs: []string{}}
	}
	return status
}

// handleAdminStatus reports whether the current user manages any LOBs
func (s *Server) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.adminStatus(r.Context()))
}

// handleAdminFields returns the catalog form definition so clients can
// render add and edit forms without hardcoding the field set
func (s *Server) handleAdminFields(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"fields":       admin.Fields,
		"lobs":         admin.LOBs,
		"environments": admin.Environments,
	})
}

// handleListSolutions returns the catalog rows in the caller's managed LOBs
func (s *Server) handleListSolutions(w http.ResponseWriter, r *http.Request) {
	status := adminFromContext(r.Context())

	solutions, err := s.admin.Solutions(r.Context(), status.ManagedLOBs)
	if err != nil {
		s.logger.Error("failed to list solutions", "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"solutions": solutions,
	})
}

// handleAddSolution validates and adds one catalog row
func (s *Server) handleAddSolution(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := adminFromContext(r.Context())

	id, err := s.admin.AddSolution(r.Context(), fields, status.ManagedLOBs)
	if err != nil {
		s.logger.Error("failed to add solution", "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"status": "created",
		"id":     id,
	})
}

// handleUpdateSolution validates and applies a partial update to one row
func (s *Server) handleUpdateSolution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := adminFromContext(r.Context())

	if err := s.admin.UpdateSolution(r.Context(), id, fields, status.ManagedLOBs); err != nil {
		s.logger.Error("failed to update solution", "id", id, "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "updated",
		"id":     id,
	})
}

// handleAccessList returns the user ids granted access to one solution
func (s *Server) handleAccessList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sids, err := s.admin.AccessList(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to read access list", "id", id, "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":     id,
		"access": sids,
	})
}

// handleGrantAccess adds user ids to a solution's access list
func (s *Server) handleGrantAccess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		SIDs []string `json:"sids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.SIDs) == 0 {
		respondError(w, http.StatusBadRequest, "sids is required")
		return
	}

	status := adminFromContext(r.Context())

	if err := s.admin.Grant(r.Context(), id, req.SIDs, status.ManagedLOBs); err != nil {
		s.logger.Error("failed to grant access", "id", id, "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "granted",
		"id":     id,
	})
}

// handleRevokeAccess removes one user id from a solution's access list
func (s *Server) handleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sid := chi.URLParam(r, "sid")

	status := adminFromContext(r.Context())

	if err := s.admin.Revoke(r.Context(), id, []string{sid}, status.ManagedLOBs); err != nil {
		s.logger.Error("failed to revoke access", "id", id, "sid", sid, "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "revoked",
		"id":     id,
	})
}
