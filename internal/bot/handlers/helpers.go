package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// editText replaces the text of a previously sent status message. Both
// bots send exactly one status message per request and edit it in place
// instead of posting follow-ups.
func editText(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, messageID int, text string) {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to edit status message", "error", err, "chat_id", chatID, "message_id", messageID)
	}
}

// editMenu replaces the status message with the format menu.
func editMenu(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, messageID int, text string, markup models.ReplyMarkup) {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to attach format menu", "error", err, "chat_id", chatID, "message_id", messageID)
	}
}
