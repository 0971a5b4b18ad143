package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"pricetracker/internal/api"
	"pricetracker/internal/config"
	"pricetracker/internal/infrastructure/scheduler"
	"pricetracker/internal/infrastructure/scraper"
	"pricetracker/internal/infrastructure/storage"
	"pricetracker/internal/infrastructure/telegram"
	"pricetracker/internal/logging"
	"pricetracker/internal/ports"
	"pricetracker/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	tracker *usecase.Tracker
	watcher *usecase.Watcher
	runner  *usecase.Runner
	store   *storage.RedisStore
	db      *sql.DB
}

// New builds a runnable application instance: Redis state store, optional
// Postgres alert log, optional Telegram channel, the scraper registry, and
// the use cases on top.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.NewRedisStore(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("state store: %w", err)
	}

	var db *sql.DB
	if cfg.Database.DSN != "" {
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("open alert log: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			// Alert deduplication degrades to per-process memory of nothing;
			// the daemon still runs.
			baseLogger.Warn("alert log unreachable, deduplication disabled", "error", err)
			db.Close()
			db = nil
		}
	}
	alertLog := storage.NewPostgresAlertLog(db)

	var notifier ports.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	} else {
		baseLogger.Info("telegram not configured, alerts logged only")
	}

	registry := scraper.NewRegistry()
	registry.Register(scraper.NewAmazonScraper(&http.Client{Timeout: cfg.Scraper.Timeout()}))

	client := api.NewClient(cfg.API.BaseURL, nil)

	tracker := usecase.NewTracker(usecase.TrackerDeps{
		Client:   client,
		Store:    store,
		Scrapers: registry,
		AlertLog: alertLog,
		Logger:   logging.Component(baseLogger, "tracker"),
	})

	watcher := usecase.NewWatcher(usecase.WatcherDeps{
		Client:   client,
		Store:    store,
		AlertLog: alertLog,
		Notifier: notifier,
		Logger:   logging.Component(baseLogger, "watcher"),
	})

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	runner := usecase.NewRunner(driver, watcher, logging.Component(baseLogger, "runner"))

	return &Application{
		cfg:     cfg,
		logger:  baseLogger,
		tracker: tracker,
		watcher: watcher,
		runner:  runner,
		store:   store,
		db:      db,
	}, nil
}

// Tracker exposes the user-facing operations for CLI commands.
func (a *Application) Tracker() *usecase.Tracker {
	return a.tracker
}

// Run starts the recurring sweep and blocks until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching prices", "cron", a.cfg.Scheduler.CronExpression, "timezone", a.cfg.Scheduler.Timezone)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.runner.Stop(stopCtx)
}

// RunOnce performs a single sweep and returns.
func (a *Application) RunOnce(ctx context.Context) error {
	now := time.Now().In(a.cfg.Scheduler.Location())
	fired, err := a.watcher.Sweep(ctx, now)
	if err != nil {
		return err
	}
	for _, p := range fired {
		a.logger.Info("alert fired", "title", p.Title, "price", p.CurrentPrice, "threshold", p.Threshold)
	}
	return nil
}

// Close releases the storage connections.
func (a *Application) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close alert log", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close state store", "error", err)
		}
	}
}
