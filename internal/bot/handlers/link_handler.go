package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/nsmelov/tgbots/internal/menu"
)

// NewLinkHandler returns the download bot's default handler: it treats
// every non-command text message as a media URL, stores it as the
// user's pending session, and offers the format menu.
func NewLinkHandler(deps HandlerDeps) bot.HandlerFunc {
	return linkHandler{deps}.Handle
}

type linkHandler struct {
	deps HandlerDeps
}

func (h linkHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "link")

	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	url := strings.TrimSpace(update.Message.Text)
	msgs := h.deps.Config.Messages

	// Unregistered commands fall through to the default handler; they
	// must not replace the user's pending URL.
	if strings.HasPrefix(url, "/") {
		log.InfoContext(ctx, "Ignoring command message", "chat_id", chatID, "user_id", userID, "text", url)
		return
	}

	log.InfoContext(ctx, "Handling link submission", "chat_id", chatID, "user_id", userID, "url", url)

	if err := h.deps.Store.SaveSession(ctx, userID, url); err != nil {
		log.ErrorContext(ctx, "Failed to save session", "error", err, "user_id", userID, "url", url)
		_, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: fmt.Sprintf(msgs.LinkFailed, err)})
		if sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error reply", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	status, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: msgs.SearchingFormats})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send status message", "error", err, "chat_id", chatID)
		return
	}

	info, err := h.deps.Extractor.Inspect(ctx, url)
	if err != nil {
		log.ErrorContext(ctx, "Extraction info query failed", "error", err, "url", url)
		editText(ctx, b, log, chatID, status.ID, withHint(fmt.Sprintf(msgs.LinkFailed, err), msgs.PlatformHint))
		return
	}

	entries, err := menu.Build(info.Variants, menu.UploadLimit, info.Title)
	if err != nil {
		var noFormats *menu.NoFormatsError
		if errors.As(err, &noFormats) {
			log.InfoContext(ctx, "No downloadable formats under the limit", "url", url, "title", info.Title)
			editText(ctx, b, log, chatID, status.ID, withHint(msgs.NoFormats, msgs.PlatformHint))
			return
		}
		log.ErrorContext(ctx, "Menu building failed", "error", err, "url", url)
		editText(ctx, b, log, chatID, status.ID, withHint(fmt.Sprintf(msgs.LinkFailed, err), msgs.PlatformHint))
		return
	}

	rows := make([][]models.InlineKeyboardButton, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: entry.Label, CallbackData: entry.Choice.Token()},
		})
	}

	log.InfoContext(ctx, "Offering format menu", "url", url, "title", info.Title, "entry_count", len(entries))
	editMenu(ctx, b, log, chatID, status.ID,
		fmt.Sprintf(msgs.ChooseFormat, info.Title),
		&models.InlineKeyboardMarkup{InlineKeyboard: rows})
}

// withHint appends the platform hint, when configured, to an error
// message shown to the user.
func withHint(text, hint string) string {
	if hint == "" {
		return text
	}
	return text + "\n\n" + hint
}
