// Package handlers contains the Telegram handlers for both bots, along
// with their registration logic.
package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/nsmelov/tgbots/internal/menu"
)

// RegisteredHandler represents a handler with everything needed to
// register it with a bot instance.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterDownloadHandlers returns the explicit handlers of the
// download bot. The free-text link handler is installed separately as
// the bot's default handler.
func RegisterDownloadHandlers(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps, deps.Config.Messages.DownloadWelcome),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}

	download := NewDownloadHandler(deps)
	handlers["callback:video"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     string(menu.KindVideo) + ":",
		Handler:     download,
		MatchType:   tgbot.MatchTypePrefix,
	}
	handlers["callback:audio"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     string(menu.KindAudio) + ":",
		Handler:     download,
		MatchType:   tgbot.MatchTypePrefix,
	}

	return handlers
}

// RegisterWeatherHandlers returns the explicit handlers of the weather
// bot. The free-text city handler is installed separately as the bot's
// default handler.
func RegisterWeatherHandlers(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps, deps.Config.Messages.WeatherWelcome),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}

	return handlers
}
