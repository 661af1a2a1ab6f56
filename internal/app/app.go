// Package app assembles the service: configuration, logging, the
// storage backend, the token codec and the HTTP router, plus the
// server lifecycle with graceful shutdown.
package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/devconnect/internal/auth"
	"github.com/patric-chuzhbe/devconnect/internal/config"
	"github.com/patric-chuzhbe/devconnect/internal/db/jsondb"
	"github.com/patric-chuzhbe/devconnect/internal/db/memorystorage"
	"github.com/patric-chuzhbe/devconnect/internal/db/postgresdb"
	"github.com/patric-chuzhbe/devconnect/internal/db/storage"
	"github.com/patric-chuzhbe/devconnect/internal/github"
	"github.com/patric-chuzhbe/devconnect/internal/ipchecker"
	"github.com/patric-chuzhbe/devconnect/internal/logger"
	"github.com/patric-chuzhbe/devconnect/internal/router"
	"github.com/patric-chuzhbe/devconnect/internal/service"
)

const shutdownTimeout = 10 * time.Second

// App holds everything needed to serve requests: the resolved
// configuration, the selected storage backend and the wired handler.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New resolves the configuration, initializes logging, selects the
// storage backend and wires the token codec, the GitHub client and the
// router into a ready-to-run App.
func New() (*App, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, err
	}

	db, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	tokenSigningSecretKey, err := base64.URLEncoding.DecodeString(cfg.JWTSigningSecretKey)
	if err != nil {
		return nil, fmt.Errorf("decoding the token signing secret: %w", err)
	}

	ipChecker, err := ipchecker.New(cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	authGate := auth.New(tokenSigningSecretKey, cfg.JWTTimeToLive)
	githubClient := github.New(cfg.GithubAPIBaseURL, cfg.GithubToken, cfg.GithubRequestTimeout)

	return &App{
		cfg:         cfg,
		db:          db,
		httpHandler: router.New(service.New(db, authGate), githubClient, authGate, ipChecker),
	}, nil
}

// Run serves HTTP until the process receives an interrupt or the
// listener fails, then shuts the server down and flushes the storage.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- server.ListenAndServe()
	}()

	logger.Log.Infow("server running", "addr", a.cfg.RunAddr)

	select {
	case err := <-listenErr:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
	}

	logger.Log.Infoln("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	return a.db.Close()
}

// Close finalizes resources not tied to the server lifecycle.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

// newStorage picks the backend by configuration: Postgres when a DSN
// is set, the file-backed store when a file name is set, otherwise the
// in-memory store.
func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch {
	case cfg.DatabaseDSN != "":
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case cfg.DBFileName != "":
		return jsondb.New(cfg.DBFileName)

	default:
		return memorystorage.New()
	}
}
