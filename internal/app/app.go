package app

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"FreeGameHub/internal/config"
	"FreeGameHub/internal/infrastructure/epicstore"
	"FreeGameHub/internal/infrastructure/forum"
	"FreeGameHub/internal/infrastructure/gamerpower"
	"FreeGameHub/internal/infrastructure/scheduler"
	"FreeGameHub/internal/infrastructure/storage"
	"FreeGameHub/internal/infrastructure/telegram"
	"FreeGameHub/internal/logging"
	"FreeGameHub/internal/ports"
	"FreeGameHub/internal/server"
	"FreeGameHub/internal/stats"
	"FreeGameHub/internal/usecase"
)

// Application wires configs to components and owns the process lifecycle.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *storage.FileStore
	updater   *usecase.Updater
	server    *server.Server
	scheduler ports.Scheduler
}

// New builds the full dependency graph.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store := storage.NewFileStore(cfg.Cache.FilePath, baseLogger.With("component", "store"))

	sources := []ports.ListingSource{
		gamerpower.New(nil, cfg.Sources.GamerPowerURL, baseLogger.With("component", "source.gamerpower")),
		forum.New(nil, cfg.Sources.RedditURL, baseLogger.With("component", "source.reddit")),
		epicstore.New(nil, cfg.Sources.EpicURL, baseLogger.With("component", "source.epic")),
	}

	notifier := telegram.New(
		cfg.Telegram.BotToken,
		cfg.Telegram.ChatID,
		cfg.App.PublicURL,
		cfg.VIPKeywords,
		baseLogger.With("component", "telegram"),
	)

	st := stats.New()
	aggregator := usecase.NewAggregator(sources, baseLogger.With("component", "aggregator"))
	updater := usecase.NewUpdater(usecase.UpdaterDeps{
		Aggregator: aggregator,
		Store:      store,
		Notifier:   notifier,
		Stats:      st,
		Logger:     baseLogger.With("component", "updater"),
	})

	srv := server.New(
		server.Config{Port: cfg.Server.Port},
		updater, store, notifier, st,
		baseLogger.With("component", "server"),
	)

	interval := time.Duration(cfg.App.UpdateIntervalHours) * time.Hour

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		updater:   updater,
		server:    srv,
		scheduler: scheduler.NewIntervalScheduler(interval),
	}
}

// Run loads the persisted snapshot, starts the scheduler, and serves HTTP
// until an interrupt arrives.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.store.Load(); err != nil {
		return err
	}
	snap := a.store.Snapshot()
	a.logger.Info("snapshot loaded", "listings", len(snap.Listings))

	if !a.cfg.Telegram.Enabled() {
		a.logger.Warn("telegram credentials absent, alerts disabled")
	}

	err := a.scheduler.Start(ctx, func(t time.Time) {
		if cycleErr := a.updater.RunCycle(ctx); cycleErr != nil {
			a.logger.Error("scheduled cycle failed", "error", cycleErr)
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.scheduler.Stop(context.Background()) }()

	return a.server.Start(ctx)
}
