package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/config"
	"github.com/MrSnakeDoc/arvai/internal/httpserver"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/deps"
	"github.com/MrSnakeDoc/arvai/internal/logger"
	"github.com/MrSnakeDoc/arvai/internal/storage"
	"github.com/MrSnakeDoc/arvai/internal/utils"
	"github.com/MrSnakeDoc/arvai/internal/version"
)

// App is the kernel process: SQLite storage behind the HTTP API.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	db     *sql.DB
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	loggerClient := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	// Open the database early - fail fast if the path is unusable
	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	loggerClient.Infof("Opening database at %s", cfg.Database.Path)
	db, err := storage.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		utils.Close(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	loggerClient.Info("database initialized successfully")

	apiKeys := storage.NewAPIKeyRepo(db)
	if active, _, err := apiKeys.Count(context.Background()); err == nil && active == 0 {
		loggerClient.Warn("no active API key yet, create one with `arvai keys create` from an allowed address",
			logger.String("endpoint", "POST /api/keys"))
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		AppName:       cfg.App.Name,
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.Server.AllowedHosts,
		AllowedCIDRS:  cfg.Server.AllowedCIDRS,
		TrustProxy:    cfg.Server.TrustProxy,
		CORSOrigins:   cfg.Server.CORSOrigins,
		KeyRateLimit:  cfg.Server.KeyRateLimit,
		KeyRateWindow: cfg.Server.KeyRateWindow,
		DB:            db,
		Bookmarks:     storage.NewBookmarkRepo(db),
		APIKeys:       apiKeys,
	}

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: httpserver.New(cfg, loggerClient, d),
		db:     db,
	}, nil
}

func (a *App) Run() error {
	defer func() { _ = a.logger.Sync() }()

	a.logger.Infof("🚀 Starting %s v%s on %s", a.cfg.App.Name, version.Version, a.cfg.ListenAddr())
	a.logger.Infof("%s %s", a.cfg.App.Name, version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		utils.CloseLogged(a.db, a.logger, "database")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	utils.CloseLogged(a.db, a.logger, "database")

	a.logger.Infof("✅ %s stopped cleanly", a.cfg.App.Name)
	return nil
}
