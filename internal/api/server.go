package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mewada-madhusudan/cuddly-disco/internal/admin"
	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
	"github.com/mewada-madhusudan/cuddly-disco/internal/identity"
	"github.com/mewada-madhusudan/cuddly-disco/internal/install"
	"github.com/mewada-madhusudan/cuddly-disco/internal/launcher"
	"github.com/mewada-madhusudan/cuddly-disco/internal/store"
	"github.com/mewada-madhusudan/cuddly-disco/internal/worker"
)

// Server represents the HTTP server
type Server struct {
	router      *chi.Mux
	db          *sql.DB
	refresher   *worker.Refresher
	queue       *worker.OperationQueue
	launcher    *launcher.Launcher
	identity    *identity.Service
	admin       *admin.Service
	appStore    store.AppStoreInterface
	syncLog     store.SyncLogInterface
	layout      *install.Layout
	rules       *catalog.Rules
	hub         *EventHub
	installRoot string
	port        int
	userSID     string
	logger      *slog.Logger

	httpServer *http.Server

	// Admin status of the current user, cached so every admin request does
	// not hit the admins list.
	adminMu      sync.Mutex
	adminCached  identity.AdminStatus
	adminFetched time.Time
}

// ServerConfig holds the assembled subsystems the server exposes.
type ServerConfig struct {
	Port    int
	UserSID string

	Refresher *worker.Refresher
	Queue     *worker.OperationQueue
	Executor  *worker.Executor // progress source; may be nil in tests
	Launcher  *launcher.Launcher
	Identity  *identity.Service
	Admin     *admin.Service
	AppStore  store.AppStoreInterface
	SyncLog   store.SyncLogInterface
	Layout    *install.Layout
	Rules     *catalog.Rules

	// InstallRoot is reported by the storage endpoint.
	InstallRoot string
}

// NewServer creates a new HTTP server instance
func NewServer(db *sql.DB, cfg ServerConfig, logger *slog.Logger) *Server {
	hub := NewEventHub(cfg.AppStore, logger)

	// Wire up automatic broadcasts: registry changes, catalog refreshes and
	// transfer progress all reach SSE subscribers as they happen.
	cfg.AppStore.SetOnChange(hub.BroadcastApps)
	cfg.Refresher.SetOnRefresh(hub.BroadcastCatalog)
	if cfg.Executor != nil {
		cfg.Executor.SetOnProgress(hub.BroadcastProgress)
	}

	s := &Server{
		router:      chi.NewRouter(),
		db:          db,
		refresher:   cfg.Refresher,
		queue:       cfg.Queue,
		launcher:    cfg.Launcher,
		identity:    cfg.Identity,
		admin:       cfg.Admin,
		appStore:    cfg.AppStore,
		syncLog:     cfg.SyncLog,
		layout:      cfg.Layout,
		rules:       cfg.Rules,
		hub:         hub,
		installRoot: cfg.InstallRoot,
		port:        cfg.Port,
		userSID:     cfg.UserSID,
		logger:      logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack
func (s *Server) setupMiddleware() {
	// Request logging
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// Install transfers and SSE streams hold requests open well past a
	// typical request lifetime, so the cutoff is generous.
	s.router.Use(middleware.Timeout(10 * time.Minute))

	// CORS configuration
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// Start starts the HTTP server. The agent serves the local user only, so it
// binds to the loopback interface.
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	s.logger.Info("starting HTTP server", "addr", addr)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
