package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"soloschedule/internal/config"
	"soloschedule/internal/database"
	"soloschedule/internal/domain"
	"soloschedule/internal/events"
	"soloschedule/internal/logging"
	"soloschedule/internal/metrics"
	"soloschedule/internal/repository"
	"soloschedule/internal/service"

	"github.com/rs/zerolog"
)

// app holds everything one command invocation needs.
type app struct {
	cfg     *config.Config
	logger  *zerolog.Logger
	closers []io.Closer

	db        *database.DB
	scheduler *service.Scheduler
	bookings  *service.BookingService
	blockouts *service.BlockoutService
	schedule  *service.ScheduleService
	catalog   *service.CatalogService
	earnings  *service.EarningsService
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "configs/config.yaml"
}

func (a *app) init(ctx context.Context, path string) error {
	cfg, err := config.Load(configPath(path))
	if err != nil {
		return err
	}
	a.cfg = cfg

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	logger := baseLogger.With().Str("component", "cli").Logger()
	a.logger = &logger

	metrics.Register()

	kv, err := a.initStorage(ctx)
	if err != nil {
		return err
	}
	store := repository.NewStore(kv, a.logger)

	eventBus := events.NewEventBus(a.logger)
	events.LogEvents(eventBus, a.logger)

	a.scheduler = service.NewScheduler(store, cfg.Scheduling.Location(), a.logger)
	a.bookings = service.NewBookingService(store, a.scheduler, eventBus, a.logger)
	a.blockouts = service.NewBlockoutService(store, a.scheduler, eventBus, a.logger)
	a.schedule = service.NewScheduleService(store, eventBus, a.logger)
	a.catalog = service.NewCatalogService(store, a.logger)
	a.earnings = service.NewEarningsService(store, cfg.Exports.Path, a.logger)

	if cfg.Scheduling.SeedDefaultSchedule {
		if _, err := a.schedule.Weekly(ctx); err != nil {
			a.logger.Error().Err(err).Msg("Failed to seed default schedule")
			return err
		}
	}
	return nil
}

// initStorage opens the key-value backend selected by storage.driver.
func (a *app) initStorage(ctx context.Context) (domain.KeyValueStore, error) {
	switch a.cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := database.NewDB(a.cfg.Storage.SQLite.Path, a.logger)
		if err != nil {
			a.logger.Error().Err(err).Msg("Failed to open database")
			return nil, err
		}
		a.db = db
		a.closers = append(a.closers, db)
		return db, nil

	case config.DriverRedis:
		client := repository.NewRedisClient(a.cfg.Storage.Redis)
		a.closers = append(a.closers, closerFunc(func() error { return repository.Close(client) }))
		primary := repository.NewRedisStore(client, a.cfg.Storage.Redis.KeyPrefix)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := repository.Ping(pingCtx, client); err != nil {
			if !a.cfg.Storage.Failover {
				a.logger.Error().Err(err).Msg("Redis unavailable")
				return nil, err
			}
			a.logger.Warn().Err(err).Msg("Redis unavailable, starting on the memory fallback")
		}
		if a.cfg.Storage.Failover {
			return repository.NewFailoverStore(primary, repository.NewMemoryStore(), a.logger), nil
		}
		return primary, nil

	case config.DriverMemory:
		a.logger.Warn().Msg("Memory storage selected, data is lost on exit")
		return repository.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", a.cfg.Storage.Driver)
}

// backup snapshots the sqlite store before a write when backups are enabled.
func (a *app) backup(ctx context.Context) error {
	if a.db == nil || !a.cfg.Backup.Enabled {
		return nil
	}
	path, err := database.NewBackupService(a.db, a.cfg.Backup, a.logger).Run(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("Backup failed")
		return err
	}
	a.logger.Debug().Str("path", path).Msg("Backup written")
	return nil
}

func (a *app) close() {
	if a.cfg != nil && a.cfg.Monitoring.TextfilePath != "" {
		if err := metrics.WriteTextfile(a.cfg.Monitoring.TextfilePath); err != nil && a.logger != nil {
			a.logger.Warn().Err(err).Msg("Failed to write metrics textfile")
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
	a.closers = nil
}
