package telegram

import (
	"context"
	"fmt"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/transcodehub/transcodebot/internal/models"
)

// PromptOperation implements transport.Transport.
func (b *Bot) PromptOperation(_ context.Context, userID int64, videoName string) error {
	msg := tgbotapi.NewMessage(userID, fmt.Sprintf("Got %q. What should I do with it?", videoName))
	msg.ReplyMarkup = operationKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) PromptParameters(_ context.Context, userID int64, op models.Operation) error {
	switch op {
	case models.OperationBurnSubtitles:
		msg := tgbotapi.NewMessage(userID, "Now send the subtitle file (.srt, .ass, .ssa, .vtt or .sub).")
		msg.ReplyMarkup = cancelKeyboard()
		_, err := b.api.Send(msg)
		return err
	case models.OperationChangeResolution:
		msg := tgbotapi.NewMessage(userID, "Pick the target resolution:")
		msg.ReplyMarkup = resolutionKeyboard()
		_, err := b.api.Send(msg)
		return err
	default:
		return models.ErrInvalidOperation
	}
}

func (b *Bot) NotifyQueued(_ context.Context, userID int64) {
	sent, err := b.api.Send(tgbotapi.NewMessage(userID, "Your job is queued. I will keep this message updated."))
	if err != nil {
		b.logger.Errorf("user %d: queued notice failed: %v", userID, err)
		return
	}
	b.mu.Lock()
	b.progressMsgs[userID] = sent.MessageID
	b.mu.Unlock()
}

// NotifyProgress edits the queued notice in place rather than flooding
// the chat with one message per update.
func (b *Bot) NotifyProgress(_ context.Context, userID int64, percent int, speed, eta string) {
	b.mu.Lock()
	msgID, ok := b.progressMsgs[userID]
	b.mu.Unlock()

	text := fmt.Sprintf("%s %d%%\nspeed %s, about %s left", progressBar(percent), percent, speed, eta)
	if !ok {
		b.send(userID, text)
		return
	}
	edit := tgbotapi.NewEditMessageText(userID, msgID, text)
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Debugf("user %d: progress edit failed: %v", userID, err)
	}
}

// DeliverResult uploads the finished file, honoring the user's
// preferred upload type.
func (b *Bot) DeliverResult(ctx context.Context, userID int64, outputPath, fileName string, elapsed time.Duration) error {
	b.clearProgress(userID)

	prefs, err := b.settings.Get(ctx, userID)
	if err != nil {
		b.logger.Warnf("user %d: settings load failed, uploading as video: %v", userID, err)
		prefs = models.DefaultSettings(userID)
	}

	f, err := os.Open(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// FileReader controls the name the user sees; the on-disk artifact
	// name is an opaque internal path.
	file := tgbotapi.FileReader{Name: fileName, Reader: f}
	caption := ""
	if prefs.NotifyDone {
		caption = fmt.Sprintf("Done in %s.", formatElapsed(elapsed))
	}

	var send tgbotapi.Chattable
	if prefs.UploadType == models.UploadTypeDocument {
		doc := tgbotapi.NewDocument(userID, file)
		doc.Caption = caption
		send = doc
	} else {
		vid := tgbotapi.NewVideo(userID, file)
		vid.Caption = caption
		vid.SupportsStreaming = true
		send = vid
	}

	if _, err := b.api.Send(send); err != nil {
		return err
	}
	b.logger.Infof("user %d: delivered %q", userID, fileName)
	return nil
}

func (b *Bot) ReportError(_ context.Context, userID int64, err error) {
	b.clearProgress(userID)
	b.send(userID, userErrorText(err))
}

func (b *Bot) NotifyReset(_ context.Context, userID int64, reason string) {
	b.clearProgress(userID)
	b.send(userID, fmt.Sprintf("Your session was reset (%s). Send a new video whenever you are ready.", reason))
}

func (b *Bot) clearProgress(userID int64) {
	b.mu.Lock()
	delete(b.progressMsgs, userID)
	b.mu.Unlock()
}

// userErrorText maps pipeline errors to user-safe wording. Internal
// detail never reaches the chat.
func userErrorText(err error) string {
	if ve, ok := models.AsValidation(err); ok {
		return "That did not work: " + ve.Detail
	}
	switch {
	case err == nil:
		return "Done."
	case isErr(err, models.ErrBusy):
		return "I am still working on your previous request. Use /cancel to abort it first."
	case isErr(err, models.ErrOverloaded):
		return "All workers are busy right now. Please try again in a minute."
	case isErr(err, models.ErrTimedOut):
		return "Sorry, processing took too long and was stopped."
	case isErr(err, models.ErrTranscodeFailed):
		return "Sorry, processing this file failed."
	default:
		return "Something went wrong on my side. Please try again."
	}
}
