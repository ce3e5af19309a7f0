package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mewada-madhusudan/cuddly-disco/internal/admin"
	"github.com/mewada-madhusudan/cuddly-disco/internal/api"
	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
	"github.com/mewada-madhusudan/cuddly-disco/internal/config"
	"github.com/mewada-madhusudan/cuddly-disco/internal/db"
	"github.com/mewada-madhusudan/cuddly-disco/internal/history"
	"github.com/mewada-madhusudan/cuddly-disco/internal/identity"
	"github.com/mewada-madhusudan/cuddly-disco/internal/install"
	"github.com/mewada-madhusudan/cuddly-disco/internal/launcher"
	"github.com/mewada-madhusudan/cuddly-disco/internal/listsvc"
	"github.com/mewada-madhusudan/cuddly-disco/internal/store"
	"github.com/mewada-madhusudan/cuddly-disco/internal/system"
	"github.com/mewada-madhusudan/cuddly-disco/internal/worker"
)

func main() {
	// Check for subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "init-secrets":
			os.Exit(runInitSecrets(os.Args[2:]))
		case "set-token":
			os.Exit(runSetToken(os.Args[2:]))
		}
	}

	// Default: run the agent
	runServer()
}

func runServer() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting pslv agent")

	// Load configuration
	cfg := config.LoadWithLogger(logger)
	logger.Info("loaded configuration",
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
		"install_root", cfg.InstallRoot,
		"catalog_list", cfg.CatalogList,
		"user_sid", cfg.UserSID,
	)

	if cfg.UserSID == "" {
		logger.Error("cannot determine user SID, set PSLV_USER_SID")
		os.Exit(1)
	}
	if cfg.ListServiceURL == "" {
		logger.Warn("no list service configured, catalog syncs will rely on the local snapshot")
	}

	// Initialize database
	database, err := db.InitDB(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("database initialized successfully")

	// Per-user stores
	appStore := store.NewAppStore(database, cfg.UserSID)
	syncLog := store.NewSyncLogStore(database, cfg.UserSID)

	// Catalog sync pipeline: remote list service with a local snapshot
	// fallback, refreshed on a schedule
	lists := listsvc.NewClient(cfg.ListServiceURL, cfg.ListServiceToken)
	snapshot := catalog.NewSnapshotStore(cfg.SnapshotPath())
	syncer := catalog.NewSyncer(lists, snapshot, cfg.CatalogList, cfg.UserSID, logger)
	refresher := worker.NewRefresher(syncer, syncLog, logger)
	scheduler := worker.NewRefreshScheduler(refresher, cfg.RefreshInterval, logger)

	// Install pipeline
	layout := install.NewLayout(cfg.InstallRoot)
	actions := history.NewLogger(lists, cfg.HistoryList, cfg.UserSID, logger)
	executor := worker.NewExecutor(layout, appStore, actions, logger)
	if err := executor.RecoverRegistry(); err != nil {
		logger.Warn("registry recovery incomplete", "error", err)
	}
	queue := worker.NewOperationQueue(executor, worker.DefaultQueueConfig(), logger)

	// Launch tokens are best effort; without Redis launches proceed unaudited
	var tokens *launcher.TokenStore
	if cfg.RedisAddr != "" {
		tokens, err = launcher.NewTokenStore(cfg.RedisAddr, cfg.Secrets.GetLaunchTokenSecret())
		if err != nil {
			logger.Warn("launch token store unavailable", "error", err)
			tokens = nil
		}
	}

	rules := catalog.NewRules(logger)
	launch := launcher.NewLauncher(layout, rules, actions, tokens, cfg.UserSID, logger)

	// Identity and administration
	users := identity.NewService(identity.Config{
		Lists:          lists,
		Phonebook:      identity.NewPhonebookClient(cfg.PhonebookURL),
		UserbaseList:   cfg.UserbaseList,
		CostCenterList: cfg.CostCenterList,
		AdminsList:     cfg.AdminsList,
		UserSID:        cfg.UserSID,
		Logger:         logger,
	})
	admins := admin.NewService(lists, cfg.CatalogList, logger)

	// Create HTTP server
	server := api.NewServer(database, api.ServerConfig{
		Port:        cfg.Port,
		UserSID:     cfg.UserSID,
		Refresher:   refresher,
		Queue:       queue,
		Executor:    executor,
		Launcher:    launch,
		Identity:    users,
		Admin:       admins,
		AppStore:    appStore,
		SyncLog:     syncLog,
		Layout:      layout,
		Rules:       rules,
		InstallRoot: cfg.InstallRoot,
	}, logger)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background workers
	system.StartStatsCollector(ctx)
	queue.Start()
	defer queue.Stop()
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
