// Package bot implements lifecycle management and component orchestration
// for the download and weather Telegram bots.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/nsmelov/tgbots/internal/config"
	"github.com/nsmelov/tgbots/internal/database"
)

// App runs both Telegram bot listeners and the task scheduler, and handles
// their graceful shutdown.
type App struct {
	logger      *slog.Logger
	cfg         *config.Config
	db          *sqlx.DB
	store       database.Store
	downloadBot *tgbot.Bot
	weatherBot  *tgbot.Bot
	scheduler   *Scheduler
}

// NewApp creates the application orchestrator with all required dependencies.
func NewApp(
	logger *slog.Logger,
	cfg *config.Config,
	db *sqlx.DB,
	store database.Store,
	downloadBot *tgbot.Bot,
	weatherBot *tgbot.Bot,
	scheduler *Scheduler,
) *App {
	return &App{
		logger:      logger.With("component", "orchestrator"),
		cfg:         cfg,
		db:          db,
		store:       store,
		downloadBot: downloadBot,
		weatherBot:  weatherBot,
		scheduler:   scheduler,
	}
}

// Run starts both bot listeners and the scheduler, blocking until the
// context is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(a.runListener(gCtx, "download", a.downloadBot))
	g.Go(a.runListener(gCtx, "weather", a.weatherBot))

	g.Go(func() error {
		a.logger.Info("Starting scheduler...")
		if err := a.scheduler.Start(); err != nil {
			a.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		a.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := a.scheduler.Stop(); err != nil {
			a.logger.Error("Error stopping scheduler", "error", err)
		}

		return nil
	})

	a.logger.Info("Orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("Orchestrator stopped due to error", "error", err)
		return err
	}

	a.logger.Info("Orchestrator stopped gracefully.")
	return nil
}

func (a *App) runListener(gCtx context.Context, name string, b *tgbot.Bot) func() error {
	return func() error {
		a.logger.Info("Starting Telegram bot listener...", "bot", name)

		b.Start(gCtx)
		a.logger.Info("Telegram bot listener stopped.", "bot", name)

		if gCtx.Err() == nil {
			a.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.", "bot", name)
			return fmt.Errorf("%s bot listener stopped unexpectedly", name)
		}
		return nil
	}
}
