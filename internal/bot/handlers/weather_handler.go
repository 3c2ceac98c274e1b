package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/nsmelov/tgbots/internal/weather"
)

// NewWeatherHandler returns the weather bot's default handler: every
// non-command text message is treated as a city name.
func NewWeatherHandler(deps HandlerDeps) bot.HandlerFunc {
	return weatherHandler{deps}.Handle
}

type weatherHandler struct {
	deps HandlerDeps
}

func (h weatherHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "weather")

	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	chatID := update.Message.Chat.ID
	city := strings.TrimSpace(update.Message.Text)
	msgs := h.deps.Config.Messages

	// Unregistered commands fall through to the default handler; they
	// are not city names.
	if strings.HasPrefix(city, "/") {
		log.InfoContext(ctx, "Ignoring command message", "chat_id", chatID, "text", city)
		return
	}

	log.InfoContext(ctx, "Handling weather query", "chat_id", chatID, "city", city)

	status, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf(msgs.SearchingWeather, city),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send status message", "error", err, "chat_id", chatID)
		return
	}

	report, err := h.deps.Weather.Current(ctx, city)
	if err != nil {
		if errors.Is(err, weather.ErrCityNotFound) {
			log.InfoContext(ctx, "City not found", "city", city)
			editText(ctx, b, log, chatID, status.ID, fmt.Sprintf(msgs.CityNotFound, city))
			return
		}
		log.ErrorContext(ctx, "Weather query failed", "error", err, "city", city)
		editText(ctx, b, log, chatID, status.ID, fmt.Sprintf(msgs.WeatherFailed, err))
		return
	}

	editText(ctx, b, log, chatID, status.ID, h.buildReply(ctx, report))
}

// buildReply produces the final reply text: the narrative forecast when
// the narrative client is configured and succeeds, otherwise the
// deterministic summary. Narrative failures are logged and swallowed.
func (h weatherHandler) buildReply(ctx context.Context, report *weather.Report) string {
	log := h.deps.Logger.With("handler", "weather")

	if h.deps.Narrative != nil {
		text, err := h.deps.Narrative.Forecast(ctx, report.RawJSON)
		if err == nil {
			return fmt.Sprintf("%s 🌦\n\n%s", report.CityName, text)
		}
		log.WarnContext(ctx, "Narrative generation failed, using standard report", "error", err, "city", report.CityName)
	}

	return fallbackSummary(report)
}

// fallbackSummary renders the deterministic report used when narrative
// generation is unavailable.
func fallbackSummary(report *weather.Report) string {
	return fmt.Sprintf("%s (standard report) 🌦\n\nNow: %.1f°C (feels like %.1f°C)\nSky: %s",
		report.CityName, report.TempC, report.FeelsLikeC, capitalize(report.Description))
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
