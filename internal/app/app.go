// Package app wires the solarvoyage components together and manages their
// lifecycle.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/solarvoyage/internal/controllers/restserver"
	"github.com/chrissnell/solarvoyage/internal/database"
	"github.com/chrissnell/solarvoyage/internal/estimator"
	"github.com/chrissnell/solarvoyage/internal/log"
	"github.com/chrissnell/solarvoyage/pkg/cloudcover"
	"github.com/chrissnell/solarvoyage/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Cloud-cover source with optional persistent day cache
	var dayCache *cloudcover.DayCache
	if a.cfg.CloudCover.CachePath != "" {
		var err error
		dayCache, err = cloudcover.OpenDayCache(a.cfg.CloudCover.CachePath)
		if err != nil {
			return err
		}
		defer dayCache.Close()
		log.Infof("cloud cover day cache: %s", a.cfg.CloudCover.CachePath)
	}
	clouds := cloudcover.NewClient(a.cfg.CloudCover.APIEndpoint, a.cfg.CloudCover.RequestsPerMinute, dayCache)

	est := estimator.New(nil, clouds)

	// Optional run-history storage
	var db *database.Client
	if a.cfg.Storage.TimescaleDB != nil {
		db = database.NewClient(a.cfg.Storage.TimescaleDB.ConnectionString, a.logger)
		if err := db.Connect(); err != nil {
			return err
		}
		if err := db.CreateTables(); err != nil {
			return err
		}
	} else {
		log.Info("no run-history storage configured, estimates will not be persisted")
	}

	rest, err := restserver.NewController(ctx, &wg, a.cfg.HTTP, est, db, a.logger)
	if err != nil {
		return err
	}
	if err := rest.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
