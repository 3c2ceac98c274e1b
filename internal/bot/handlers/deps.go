package handlers

import (
	"context"
	"log/slog"

	"github.com/nsmelov/tgbots/internal/config"
	"github.com/nsmelov/tgbots/internal/database"
	"github.com/nsmelov/tgbots/internal/extractor"
	"github.com/nsmelov/tgbots/internal/gemini"
	"github.com/nsmelov/tgbots/internal/weather"
)

// WeatherClient is the weather provider operation the handlers need.
type WeatherClient interface {
	Current(ctx context.Context, city string) (*weather.Report, error)
}

// HandlerDeps provides dependencies for the Telegram handlers of both
// bots. Narrative is nil when narrative generation is disabled.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     database.Store
	Extractor extractor.Client
	Weather   WeatherClient
	Narrative gemini.Client
}
