// Package app initializes and orchestrates the main components of the RAG
// Index Manager: configuration, the Lifecycle Coordinator, its Git provider
// and RAG backend collaborators, the best-effort audit log, and the HTTP
// server that receives GitHub webhooks.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sevigo/rag-index-manager/internal/audit"
	"github.com/sevigo/rag-index-manager/internal/config"
	"github.com/sevigo/rag-index-manager/internal/core"
	"github.com/sevigo/rag-index-manager/internal/githubprovider"
	"github.com/sevigo/rag-index-manager/internal/jobs"
	"github.com/sevigo/rag-index-manager/internal/localprovider"
	"github.com/sevigo/rag-index-manager/internal/ragclient"
	"github.com/sevigo/rag-index-manager/internal/ragindex"
	"github.com/sevigo/rag-index-manager/internal/server"
)

// App holds the main application components.
type App struct {
	Manager *ragindex.Manager
	Cfg     *config.Config

	logger     *slog.Logger
	server     *server.Server
	dispatcher core.JobDispatcher
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, func(), error) {
	logger.Info("initializing rag index manager",
		"rag_backend", cfg.RagIndex.RagBackendBaseURL,
		"max_workers", cfg.Server.MaxWorkers,
		"enabled_base_branches", cfg.RagIndex.EnabledBaseBranches,
	)

	backend := ragclient.New(cfg.RagIndex.RagBackendBaseURL, newBackendHTTPClient())

	resolver := newProviderResolver(cfg, logger)

	managerCfg := ragindex.ManagerConfig{
		EnabledBaseBranches: cfg.RagIndex.EnabledBaseBranches,
		IgnoreDirectories:   cfg.RagIndex.IgnoreDirectories,
		AllowedLanguages:    cfg.RagIndex.AllowedLanguages,
		BatchSize:           cfg.RagIndex.BatchSize,
		QueryTokenBuffer:    cfg.RagIndex.QueryTokenBuffer,
	}
	manager := ragindex.NewManager(logger.With("component", "ragindex"), backend, resolver, managerCfg)

	recorder, auditCleanup, err := newRecorder(cfg.Database, logger)
	if err != nil {
		logger.Warn("audit log unavailable, continuing without lifecycle history", "error", err)
		auditCleanup = func() {}
	} else {
		manager.WithRecorder(recorder)
	}

	lifecycleJob := jobs.NewLifecycleJob(manager, logger.With("component", "jobs"))
	dispatcher := jobs.NewDispatcher(lifecycleJob, cfg.Server.MaxWorkers, logger.With("component", "dispatcher"))
	httpServer := server.NewServer(ctx, cfg, dispatcher, logger.With("component", "server"))

	logger.Info("rag index manager initialized successfully")
	return &App{
			Manager:    manager,
			Cfg:        cfg,
			logger:     logger,
			server:     httpServer,
			dispatcher: dispatcher,
		}, func() {
			auditCleanup()
		}, nil
}

// newProviderResolver builds a ragindex.ProviderResolver that authenticates
// as the PR's GitHub App installation. A zero AppID falls back to a local,
// go-git-backed provider for CLI/offline use.
func newProviderResolver(cfg *config.Config, logger *slog.Logger) ragindex.ProviderResolver {
	return func(ctx context.Context, pr core.PRRef) (core.GitProvider, error) {
		if cfg.GitHub.AppID == 0 || pr.InstallationID == 0 {
			return localprovider.New(cfg.RagIndex.CloneRoot, cfg.RagIndex.GitCloneBaseURL, cfg.GitHub.Token, logger.With("component", "localprovider")), nil
		}
		provider, _, err := githubprovider.CreateInstallationClient(ctx, cfg.GitHub.AppID, pr.InstallationID, cfg.GitHub.PrivateKeyPath, logger.With("component", "githubprovider"))
		if err != nil {
			return nil, fmt.Errorf("resolve github provider: %w", err)
		}
		return provider, nil
	}
}

// newRecorder connects to the audit database and wraps it as a
// ragindex.Recorder. Its absence must never prevent the manager from
// operating, so callers treat a non-nil error as "run without history."
func newRecorder(dbCfg config.DBConfig, logger *slog.Logger) (*audit.LoggingRecorder, func(), error) {
	auditCfg := &audit.DBConfig{
		Host:            dbCfg.Host,
		Port:            dbCfg.Port,
		Database:        dbCfg.Database,
		Username:        dbCfg.Username,
		Password:        dbCfg.Password,
		SSLMode:         dbCfg.SSLMode,
		MaxOpenConns:    dbCfg.MaxOpenConns,
		MaxIdleConns:    dbCfg.MaxIdleConns,
		ConnMaxLifetime: dbCfg.ConnMaxLifetime,
		ConnMaxIdleTime: dbCfg.ConnMaxIdleTime,
	}
	db, cleanup, err := audit.NewDatabase(auditCfg)
	if err != nil {
		return nil, func() {}, err
	}
	store := audit.NewStore(db)
	return audit.NewLoggingRecorder(store, logger.With("component", "audit")), cleanup, nil
}

// newBackendHTTPClient gives the RAG backend client generous timeouts: index
// seeding batches and query generation can both run long.
func newBackendHTTPClient() *http.Client {
	return &http.Client{Timeout: 2 * time.Minute}
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.logger.Info("starting rag index manager",
		"server_port", a.Cfg.Server.Port,
		"max_workers", a.Cfg.Server.MaxWorkers)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	var shutdownErr error
	a.logger.Info("shutting down rag index manager services")

	a.dispatcher.Stop()

	if a.server != nil {
		if err := a.server.Stop(); err != nil {
			a.logger.Error("error during HTTP server shutdown", "error", err)
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}

	if shutdownErr != nil {
		a.logger.Error("rag index manager stopped with errors", "error", shutdownErr)
	} else {
		a.logger.Info("rag index manager stopped successfully")
	}
	return shutdownErr
}
