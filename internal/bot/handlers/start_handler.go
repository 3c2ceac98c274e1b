package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command. The welcome
// text is per-bot and may contain one %s verb for the user's first name.
func NewStartHandler(deps HandlerDeps, welcome string) bot.HandlerFunc {
	return startHandler{deps: deps, welcome: welcome}.Handle
}

type startHandler struct {
	deps    HandlerDeps
	welcome string
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /start command", "chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)

	firstName := update.Message.From.FirstName
	if firstName == "" {
		firstName = "there"
	}
	text := fmt.Sprintf(h.welcome, firstName)

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: update.Message.Chat.ID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send welcome message", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
