package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/nsmelov/tgbots/internal/extractor"
	"github.com/nsmelov/tgbots/internal/menu"
)

// NewDownloadHandler returns the handler for format-menu button
// presses. It resolves the user's pending URL, downloads the chosen
// variant, sends it as an attachment, and always removes the local
// artifact afterwards.
func NewDownloadHandler(deps HandlerDeps) bot.HandlerFunc {
	return downloadHandler{deps}.Handle
}

type downloadHandler struct {
	deps HandlerDeps
}

// prepareDownload validates a button press against session state and
// decodes the callback token. It returns either a download request or
// the user-facing message explaining why no download will start. The
// extraction backend is never contacted here.
func (h downloadHandler) prepareDownload(ctx context.Context, userID int64, token string) (*extractor.Request, string) {
	log := h.deps.Logger.With("handler", "download")
	msgs := h.deps.Config.Messages

	session, err := h.deps.Store.GetSession(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load session", "error", err, "user_id", userID)
		return nil, msgs.MissingSession
	}
	if session == nil {
		log.InfoContext(ctx, "Button press without a stored URL", "user_id", userID)
		return nil, msgs.MissingSession
	}

	choice, err := menu.ParseToken(token)
	if err != nil {
		log.ErrorContext(ctx, "Failed to parse callback token", "error", err, "user_id", userID, "token", token)
		return nil, fmt.Sprintf(msgs.DownloadFailed, err)
	}

	return &extractor.Request{
		URL:        session.URL,
		Choice:     choice,
		OutputBase: extractor.NewOutputBase(userID),
	}, ""
}

func (h downloadHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "download")

	query := update.CallbackQuery
	if query == nil {
		return
	}

	// Stop the button's loading spinner regardless of the outcome.
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: query.ID})
	if err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err, "query_id", query.ID)
	}

	if query.Message.Message == nil {
		log.WarnContext(ctx, "Callback query without an accessible message", "query_id", query.ID)
		return
	}
	chatID := query.Message.Message.Chat.ID
	messageID := query.Message.Message.ID
	userID := query.From.ID
	msgs := h.deps.Config.Messages

	req, failMsg := h.prepareDownload(ctx, userID, query.Data)
	if req == nil {
		editText(ctx, b, log, chatID, messageID, failMsg)
		return
	}

	log.InfoContext(ctx, "Starting download", "user_id", userID, "url", req.URL, "format_id", req.Choice.FormatID, "kind", req.Choice.Kind)
	editText(ctx, b, log, chatID, messageID, msgs.Downloading)

	result, err := h.deps.Extractor.Download(ctx, *req)
	if err != nil {
		log.ErrorContext(ctx, "Download failed", "error", err, "url", req.URL, "format_id", req.Choice.FormatID)
		h.deps.Extractor.Cleanup(req.OutputBase)
		editText(ctx, b, log, chatID, messageID, fmt.Sprintf(msgs.DownloadFailed, err))
		return
	}

	// No artifact survives this handler, whether sending works or not.
	defer h.deps.Extractor.Cleanup(req.OutputBase)

	editText(ctx, b, log, chatID, messageID, msgs.Uploading)

	if err := h.sendMedia(ctx, b, chatID, result); err != nil {
		log.ErrorContext(ctx, "Failed to send media attachment", "error", err, "path", result.Path)
		editText(ctx, b, log, chatID, messageID, fmt.Sprintf(msgs.DownloadFailed, err))
		return
	}

	log.InfoContext(ctx, "Download delivered", "user_id", userID, "url", req.URL, "path", result.Path)
	editText(ctx, b, log, chatID, messageID, msgs.DownloadDone)
}

// sendMedia attaches the downloaded file to an outgoing message using
// the attachment kind matching the choice.
func (h downloadHandler) sendMedia(ctx context.Context, b *bot.Bot, chatID int64, result *extractor.Result) error {
	file, err := os.Open(result.Path)
	if err != nil {
		return fmt.Errorf("failed to open downloaded file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.deps.Logger.Warn("Failed to close media file", "error", closeErr, "path", result.Path)
		}
	}()

	upload := &models.InputFileUpload{Filename: filepath.Base(result.Path), Data: file}

	if result.Kind == menu.KindVideo {
		_, err = b.SendVideo(ctx, &bot.SendVideoParams{
			ChatID:            chatID,
			Video:             upload,
			SupportsStreaming: true,
		})
	} else {
		_, err = b.SendAudio(ctx, &bot.SendAudioParams{
			ChatID: chatID,
			Audio:  upload,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to send attachment: %w", err)
	}
	return nil
}
