// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/nsmelov/tgbots/internal/bot"
	"github.com/nsmelov/tgbots/internal/bot/handlers"
	"github.com/nsmelov/tgbots/internal/bot/tasks"
	"github.com/nsmelov/tgbots/internal/config"
	"github.com/nsmelov/tgbots/internal/database"
	"github.com/nsmelov/tgbots/internal/extractor"
	"github.com/nsmelov/tgbots/internal/gemini"
	"github.com/nsmelov/tgbots/internal/logger"
	"github.com/nsmelov/tgbots/internal/telegram"
	"github.com/nsmelov/tgbots/internal/weather"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all application components (config, logger, db, clients,
// both bots, scheduler), handles graceful shutdown, and returns an exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var narrative gemini.Client
	if cfg.Gemini.APIKey != "" {
		narrative, err = gemini.NewClient(ctx, cfg.Gemini, log)
		if err != nil {
			log.Error("Failed to initialize Gemini client", "error", err)
			return 1
		}
	} else {
		log.Warn("Gemini API key not configured, weather replies will use the standard report")
	}

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Store:     store,
		Extractor: extractor.NewClient(cfg.Downloader, log),
		Weather:   weather.NewClient(cfg.Weather, log),
		Narrative: narrative,
	}

	downloadOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log.With("bot", "download"))),
		tgbot.WithDefaultHandler(handlers.NewLinkHandler(hDeps)),
	}
	downloadBot, err := telegram.NewTelegramBot(cfg.Downloader.Token, log, downloadOpts...)
	if err != nil {
		log.Error("Failed to create download bot", "error", err)
		return 1
	}
	if err := telegram.RegisterHandlers(downloadBot, log, handlers.RegisterDownloadHandlers(hDeps)); err != nil {
		log.Error("Failed to register download bot handlers", "error", err)
		return 1
	}

	weatherOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log.With("bot", "weather"))),
		tgbot.WithDefaultHandler(handlers.NewWeatherHandler(hDeps)),
	}
	weatherBot, err := telegram.NewTelegramBot(cfg.Weather.Token, log, weatherOpts...)
	if err != nil {
		log.Error("Failed to create weather bot", "error", err)
		return 1
	}
	if err := telegram.RegisterHandlers(weatherBot, log, handlers.RegisterWeatherHandlers(hDeps)); err != nil {
		log.Error("Failed to register weather bot handlers", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewApp(log, cfg, db, store, downloadBot, weatherBot, sched)

	log.Info("Starting bots...")
	runErr := app.Run(ctx)
	log.Info("Run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
