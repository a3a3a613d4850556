// Package app initializes and holds long-lived services for one command
// invocation: configuration, logger, archive store, and page fetcher.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/twir-walkthroughs/internal/config"
	collyfetcher "github.com/JakeFAU/twir-walkthroughs/internal/fetcher/colly"
	"github.com/JakeFAU/twir-walkthroughs/internal/id/uuid"
	"github.com/JakeFAU/twir-walkthroughs/internal/logging"
	"github.com/JakeFAU/twir-walkthroughs/internal/ratelimit"
	"github.com/JakeFAU/twir-walkthroughs/internal/storage"
	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

// App holds the services shared by every subcommand.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	store   *storage.Provider
	fetcher walkthrough.Fetcher
	runID   string
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// GetLogger returns the run-scoped logger. Every entry carries run_id.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetStore returns the configured archive store.
func (a *App) GetStore() walkthrough.ArchiveStore {
	return a.store
}

// GetFetcher returns the page fetcher.
func (a *App) GetFetcher() walkthrough.Fetcher {
	return a.fetcher
}

// RunID identifies this invocation in logs.
func (a *App) RunID() string {
	return a.runID
}

// NewApp loads configuration from cfgPath (empty searches the default
// locations) and builds every service. It fails fast when any service cannot
// be initialized.
func NewApp(ctx context.Context, cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	base, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	runID := uuid.New().RunID()
	logger := base.With(zap.String("run_id", runID))

	store, err := storage.New(ctx, cfg.StorageSettings())
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("init archive store: %w", err)
	}
	logger.Info("Using archive store", zap.String("store", store.Description))

	limiter := ratelimit.New(ratelimit.Config{
		RPS:   cfg.HTTP.RequestsPerSecond,
		Burst: cfg.HTTP.Burst,
	})
	fetcher := ratelimit.Fetcher(collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
	}, logger), limiter)

	return &App{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		fetcher: fetcher,
		runID:   runID,
	}, nil
}

// Close releases the archive store and flushes the logger.
func (a *App) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Error closing archive store", zap.Error(err))
	}
	_ = a.logger.Sync()
}
