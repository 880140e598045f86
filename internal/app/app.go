package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/notexe/localhealth/internal/config"
	"github.com/notexe/localhealth/internal/logger"
	"github.com/notexe/localhealth/internal/notify"
	"github.com/notexe/localhealth/internal/reminder"
	"github.com/notexe/localhealth/internal/scheduler"
	"github.com/notexe/localhealth/internal/storage"
	"github.com/notexe/localhealth/internal/ui"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const permissionTimeout = 30 * time.Second

// App wires the reminder service to its storage, surfaces and background jobs.
type App struct {
	Service   *reminder.Service
	Surface   reminder.Surface
	Scheduler *scheduler.Scheduler
	Digest    *scheduler.Digest

	store storage.Store
	cfg   *config.Config
	log   logrus.FieldLogger
}

// New builds the application. Terminal alerts are written to alerts; pass
// nil to disable them.
func New(cfg *config.Config, log logrus.FieldLogger, alerts io.Writer, formatter *ui.Formatter) (*App, error) {
	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	surface, err := buildSurface(cfg, alerts, formatter)
	if err != nil {
		store.Close()
		return nil, err
	}

	svc := reminder.NewService(store,
		reminder.WithSurface(surface),
		reminder.WithLogger(log),
		reminder.WithSnapshotKey(cfg.Storage.Key),
		reminder.WithTolerance(cfg.Scheduler.ToleranceMinutes),
		reminder.WithRetention(cfg.RetentionPeriod()),
	)

	a := &App{
		Service:   svc,
		Surface:   surface,
		Scheduler: scheduler.New(svc, cfg.Interval(), log),
		store:     store,
		cfg:       cfg,
		log:       logger.Component(log, "app"),
	}

	if cfg.Digest.Enabled {
		a.Digest, err = scheduler.NewDigest(svc, surface, cfg.Digest.Schedule, time.Local, log)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	return a, nil
}

func buildSurface(cfg *config.Config, alerts io.Writer, formatter *ui.Formatter) (reminder.Surface, error) {
	var surfaces notify.Multi

	if cfg.Notifications.Terminal && alerts != nil {
		surfaces = append(surfaces, notify.NewTerminal(alerts, formatter, cfg.Notifications.TerminalGranted))
	}

	if cfg.TelegramEnabled() {
		chatID, err := cfg.TelegramChatID()
		if err != nil {
			return nil, err
		}
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, chatID)
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, tg)
	}

	return surfaces, nil
}

// Start loads persisted reminders and, if configured, asks the surfaces for
// permission. A failed load leaves the service empty but usable.
func (a *App) Start(ctx context.Context) {
	if err := a.Service.Load(ctx); err != nil {
		a.log.WithError(err).Warn("starting without persisted reminders")
	}

	if a.cfg.Notifications.RequestOnStart {
		pctx, cancel := context.WithTimeout(ctx, permissionTimeout)
		defer cancel()

		if _, err := a.Service.RequestPermission(pctx); err != nil {
			a.log.WithError(err).Warn("notification permission request failed")
		}
	}
}

// RunBackground runs the due-check scheduler and the digest until ctx is done.
func (a *App) RunBackground(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Scheduler.Run(ctx)
	})

	if a.Digest != nil {
		g.Go(func() error {
			a.Digest.Run(ctx)
			return nil
		})
	}

	return g.Wait()
}

// Close releases timers and storage.
func (a *App) Close() error {
	a.Service.Close()
	return a.store.Close()
}
